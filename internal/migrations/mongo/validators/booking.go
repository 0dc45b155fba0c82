package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"kind",
			"patient_name",
			"patient_mobile",
			"reference_id",
			"scheduled_date",
			"scheduled_time",
			"status",
			"created_by",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_id": bson.M{
				"bsonType": "string",
				"pattern":  "^(APT|LAB)-[A-Z0-9]+$",
			},

			"kind": bson.M{
				"enum": []string{"appointment", "test"},
			},

			"patient_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"patient_mobile": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{10}$",
			},

			"patient_email": bson.M{
				"bsonType": "string",
			},

			"reference_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"scheduled_date": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},

			"scheduled_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "sample_collected", "completed", "cancelled"},
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"created_by": bson.M{
				"enum": []string{"patient", "receptionist", "admin", "system"},
			},

			"updated_by": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

package main

import (
	"medibook/internal/bookings/events"
	"medibook/internal/bookings/handler"
	"medibook/internal/bookings/jobs"
	"medibook/internal/bookings/repository"
	"medibook/internal/bookings/service"
	"medibook/internal/bookings/validator"
	"medibook/pkg/app"
	"medibook/pkg/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	publisher := initPublisher(cfg)
	bookingService := initServices(cfg, publisher)

	expiryJob := jobs.NewExpiryJob(bookingService, cfg)
	if err := expiryJob.Start(); err != nil {
		cfg.Log.Fatal("Failed to start pending-expiry job", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run(
		expiryJob.Stop,
		func() {
			if err := publisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event publisher", "error", err)
			}
		},
		cfg.GracefulShutdown,
	)
}

func initPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Warn("No Kafka brokers configured, booking events will be dropped")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	cfg.Log.Info("Event publisher initialized",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaEventsTopic,
	)
	return publisher
}

func initServices(cfg *config.Config, publisher events.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		bookingValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

package validator

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"medibook/pkg/logger"
	"medibook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CatalogValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCatalogValidator(log *logger.Logger) *CatalogValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm_time", validateClock); err != nil {
		log.Fatal("Failed to register 'hhmm_time' validator",
			"error", err,
		)
	}

	log.Info("Catalog validator initialized successfully")

	return &CatalogValidator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

func (v *CatalogValidator) ValidateProvider(p *model.Provider) error {
	if err := v.validate.Struct(p); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return validateWindows(p.Windows)
}

func (v *CatalogValidator) ValidateProviderUpdate(update *model.ProviderUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Windows != nil {
		return validateWindows(*update.Windows)
	}
	return nil
}

func (v *CatalogValidator) ValidateTestItem(item *model.TestItem) error {
	if err := v.validate.Struct(item); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *CatalogValidator) ValidateTestItemUpdate(update *model.TestItemUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// validateWindows enforces the write-time rules the slot resolver does not:
// each window must run forward, and windows on the same day must not
// overlap. Stored windows are the source of truth for availability, so bad
// ones are rejected before they ever reach the resolver.
func validateWindows(windows []model.ScheduleWindow) error {
	for i, w := range windows {
		start := clockToMinutes(w.StartTime)
		end := clockToMinutes(w.EndTime)
		if start >= end {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("Windows[%d]", i),
					Message: fmt.Sprintf("start_time %s must be before end_time %s", w.StartTime, w.EndTime),
				},
			}
		}
	}

	byDay := make(map[string][]int)
	for i, w := range windows {
		byDay[w.Day] = append(byDay[w.Day], i)
	}

	for day, indexes := range byDay {
		sorted := make([]int, len(indexes))
		copy(sorted, indexes)
		sort.Slice(sorted, func(a, b int) bool {
			return clockToMinutes(windows[sorted[a]].StartTime) < clockToMinutes(windows[sorted[b]].StartTime)
		})

		for k := 1; k < len(sorted); k++ {
			prev := windows[sorted[k-1]]
			curr := windows[sorted[k]]
			if clockToMinutes(curr.StartTime) < clockToMinutes(prev.EndTime) {
				return ValidationErrors{
					ValidationError{
						Field:   "Windows",
						Message: fmt.Sprintf("overlapping windows on %s: %s-%s and %s-%s", day, prev.StartTime, prev.EndTime, curr.StartTime, curr.EndTime),
					},
				}
			}
		}
	}

	return nil
}

// clockToMinutes assumes the value already passed the hhmm_time tag.
func clockToMinutes(clock string) int {
	hh, _ := strconv.Atoi(clock[:2])
	mm, _ := strconv.Atoi(clock[3:])
	return hh*60 + mm
}

func (v *CatalogValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "hhmm_time":
			message = fmt.Sprintf("%s must be a zero-padded 24-hour time (HH:MM)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

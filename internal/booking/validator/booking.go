package validator

import (
	"errors"
	"fmt"
	"time"

	"innkeep/pkg/model"

	"github.com/go-playground/validator/v10"
)

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
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
	}
}

// Validate checks the request and returns the parsed stay range. The range
// is half-open: end date is the checkout day and is not occupied.
func (v *BookingValidator) Validate(req *model.BookingRequest) (time.Time, time.Time, error) {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return time.Time{}, time.Time{}, v.translateValidationErrors(validationErrs)
		}
		return time.Time{}, time.Time{}, err
	}

	start, err := time.Parse(model.DateLayout, req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{{Field: "start_date", Message: "must be a valid date in YYYY-MM-DD format"}}
	}
	end, err := time.Parse(model.DateLayout, req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{{Field: "end_date", Message: "must be a valid date in YYYY-MM-DD format"}}
	}

	if err := v.validateBusinessRules(req, start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: fmt.Sprintf("failed on the '%s' rule", err.Tag()),
		})
	}

	return validationErrors
}

func (v *BookingValidator) validateBusinessRules(req *model.BookingRequest, start, end time.Time) error {
	var validationErrors ValidationErrors

	if !start.Before(end) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "end_date",
			Message: "must be after start_date",
		})
	}

	if !req.AutoSelect && req.RoomID == "" {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "room_id",
			Message: "required unless auto_select is set",
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

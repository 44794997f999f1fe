package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by 'json' tag names, the same names backend uses in its errors
	v.RegisterTagNameFunc(useJSONTagNames)

	// Compare money as numbers: allows gt, gte, lte tags on decimals
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	v.RegisterStructValidation(tripDates, models.TripInput{})

	return v
}

// Struct validates payload before it sent to backend
// Returns *apperrors.ValidationError with messages per field
func Struct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validation could not run. Err: %w", err)
	}

	fields := make(map[string]string, len(errs))
	for _, fieldError := range errs {
		fields[fieldError.Field()] = message(fieldError)
	}

	return &apperrors.ValidationError{Fields: fields}
}

// Create user-friendly error messages based on validation tag
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Value is too short (minimum %s)", fe.Param())
	case "max":
		return fmt.Sprintf("Value is too long (maximum %s)", fe.Param())
	case "email":
		return "Enter a valid email address"
	case "eqfield":
		return "Passwords do not match"
	case "nefield":
		return "New value must differ from the old one"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("Invalid format, expected %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "url":
		return "Enter a valid URL"
	case "after_start":
		return "End date must not be before start date"
	default:
		return "Invalid value"
	}
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Trip must not end before it starts
// Format errors are reported by 'datetime' tag, here only order checked
func tripDates(sl validator.StructLevel) {
	trip := sl.Current().Interface().(models.TripInput)

	start, errStart := time.Parse(models.DateLayout, trip.StartDate)
	end, errEnd := time.Parse(models.DateLayout, trip.EndDate)
	if errStart != nil || errEnd != nil {
		return
	}

	if end.Before(start) {
		sl.ReportError(trip.EndDate, "end_date", "EndDate", "after_start", "")
	}
}

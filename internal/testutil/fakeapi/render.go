package fakeapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Return on 'TagName' json tag instead of struct name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		// skip if tag key says it should be ignored
		if name == "-" {
			return ""
		}
		return name
	})

	// Money fields are compared as numbers
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

func renderJSON(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusOK)
}

// Render error the way Django REST framework does: {"detail": "..."}
func renderDetail(w http.ResponseWriter, detail string, code int) {
	jsonWithStatus(w, map[string]string{"detail": detail}, code)
}

// Render field errors: {"field": ["..."]}
func renderFields(w http.ResponseWriter, fields map[string][]string) {
	jsonWithStatus(w, fields, http.StatusBadRequest)
}

// bind decodes JSON request body into type T and validates it using struct tags
// Writes error response on failure
func bind[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var value T

	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		renderFields(w, map[string][]string{"non_field_errors": {fmt.Sprintf("Failed to parse JSON: %s", err)}})
		return value, false
	}

	err := validate.Struct(value)
	if err == nil {
		return value, true
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		renderDetail(w, err.Error(), http.StatusBadRequest)
		return value, false
	}

	fields := make(map[string][]string, len(errs))
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required."
		case "min":
			message = fmt.Sprintf("Ensure this field has at least %s characters.", fieldError.Param())
		case "email":
			message = "Enter a valid email address."
		default:
			message = "Invalid value."
		}
		fields[fieldError.Field()] = append(fields[fieldError.Field()], message)
	}
	renderFields(w, fields)

	return value, false
}

// jsonWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

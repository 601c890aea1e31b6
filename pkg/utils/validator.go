package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError is one rejected field in the shape the client renders.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// ValidationError is returned by Validator.Struct when any field is rejected.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Param+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator() *Validator {
	return NewValidatorWithClock(time.Now)
}

// NewValidatorWithClock lets callers pin the instant the future tag compares against.
func NewValidatorWithClock(now func() time.Time) *Validator {
	v := validator.New()
	vl := &Validator{validate: v, now: now}

	// Report json names so errors line up with the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Custom validations
	v.RegisterValidation("supported_image", validateImageType)
	v.RegisterValidation("event_category", validateEventCategory)
	v.RegisterValidation("event_status", validateEventStatus)
	v.RegisterValidation("future", vl.validateFuture)

	return vl
}

// Struct validates s and converts rule violations into a *ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		param := fieldPath(fe.Namespace())
		out.Fields = append(out.Fields, FieldError{Param: param, Msg: message(param, fe)})
	}
	return out
}

// Var validates a single value against tag.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// fieldPath drops the root struct name: "EventRequest.location.city" -> "location.city".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

var fieldMessages = map[string]string{
	"title":            "Title is required and cannot exceed 100 characters",
	"description":      "Description is required and cannot exceed 1000 characters",
	"category":         "Category must be one of Conference, Workshop, Seminar, Networking, Social, Sports, Cultural, Other",
	"duration":         "Duration must be between 0.5 and 24 hours",
	"location.venue":   "Venue is required and cannot exceed 255 characters",
	"location.address": "Address is required and cannot exceed 255 characters",
	"location.city":    "City is required and cannot exceed 120 characters",
	"capacity":         "Capacity must be between 1 and 10,000",
	"price":            "Price must be 0 or positive",
	"status":           "Status must be one of draft, published, live, completed, cancelled",
	"requirements":     "Requirements cannot exceed 500 characters",
	"email":            "A valid email of at most 255 characters is required",
	"password":         "Password must be at least 6 characters",
	"name":             "Name is required and cannot exceed 100 characters",
	"role":             "Role must be attendee or organizer",
	"website":          "Website must be a valid URL",
}

func message(param string, fe validator.FieldError) string {
	if param == "dateTime" {
		if fe.Tag() == "future" {
			return "Event date must be in the future"
		}
		return "Valid date and time is required"
	}
	if msg, ok := fieldMessages[param]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", param)
	case "max":
		return fmt.Sprintf("%s cannot exceed %s", param, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", param, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", param)
}

// timeType also matches named types defined over time.Time.
var timeType = reflect.TypeOf(time.Time{})

func (v *Validator) validateFuture(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.Type().ConvertibleTo(timeType) {
		return false
	}
	t := field.Convert(timeType).Interface().(time.Time)
	return t.After(v.now())
}

var eventCategories = map[string]bool{
	"Conference": true,
	"Workshop":   true,
	"Seminar":    true,
	"Networking": true,
	"Social":     true,
	"Sports":     true,
	"Cultural":   true,
	"Other":      true,
}

func validateEventCategory(fl validator.FieldLevel) bool {
	return eventCategories[fl.Field().String()]
}

var eventStatuses = map[string]bool{
	"draft":     true,
	"published": true,
	"live":      true,
	"completed": true,
	"cancelled": true,
}

func validateEventStatus(fl validator.FieldLevel) bool {
	return eventStatuses[fl.Field().String()]
}

// validateImageType accepts the MIME types the image store serves.
func validateImageType(fl validator.FieldLevel) bool {
	mimeType := fl.Field().String()
	supportedTypes := map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	return supportedTypes[mimeType]
}

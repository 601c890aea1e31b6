package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/om-chauahan/eventhub/internal/models"
)

type sampleEvent struct {
	Title    string    `json:"title" validate:"required,max=5"`
	Category string    `json:"category" validate:"required,event_category"`
	Status   string    `json:"status" validate:"omitempty,event_status"`
	DateTime time.Time `json:"dateTime" validate:"required,future"`
	Location struct {
		City string `json:"city" validate:"required"`
	} `json:"location"`
}

func TestValidatorStruct(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	v := NewValidatorWithClock(func() time.Time { return now })

	valid := sampleEvent{Title: "Go", Category: "Workshop", Status: "draft", DateTime: now.Add(time.Minute)}
	valid.Location.City = "Porto"
	if err := v.Struct(valid); err != nil {
		t.Fatalf("valid struct: %v", err)
	}

	invalid := sampleEvent{Title: "Too long", Category: "Party", Status: "archived", DateTime: now}
	err := v.Struct(invalid)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}

	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Param] = f.Msg
	}
	for _, param := range []string{"title", "category", "status", "dateTime", "location.city"} {
		if _, ok := got[param]; !ok {
			t.Errorf("missing error for %s in %+v", param, verr.Fields)
		}
	}
	if got["dateTime"] != "Event date must be in the future" {
		t.Errorf("dateTime msg = %q", got["dateTime"])
	}
}

func TestValidatorVarImageType(t *testing.T) {
	v := NewValidator()
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if err := v.Var(ct, "supported_image"); err != nil {
			t.Errorf("%s rejected: %v", ct, err)
		}
	}
	if err := v.Var("application/pdf", "supported_image"); err == nil {
		t.Error("pdf accepted")
	}
}

func TestValidatorLengthsMatchColumns(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	v := NewValidatorWithClock(func() time.Time { return now })

	req := models.EventRequest{
		Title:       "Meetup",
		Description: "Talks",
		Category:    models.CategoryWorkshop,
		DateTime:    models.NewTimestamp(now.Add(time.Hour)),
		Duration:    1,
		Location: models.LocationInput{
			Venue:   strings.Repeat("v", 255),
			Address: strings.Repeat("a", 255),
			City:    strings.Repeat("ü", 120),
		},
		Capacity: 10,
	}
	if err := v.Struct(req); err != nil {
		t.Fatalf("values at column size rejected: %v", err)
	}

	req.Location.City += "x"
	req.Location.Venue += "x"
	err := v.Struct(req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Param] = f.Msg
	}
	if got["location.city"] != "City is required and cannot exceed 120 characters" {
		t.Errorf("city msg = %q", got["location.city"])
	}
	if _, ok := got["location.venue"]; !ok {
		t.Errorf("missing venue error in %+v", verr.Fields)
	}

	email := strings.Repeat("a", 250) + "@example.com"
	err = v.Struct(models.RegisterRequest{Name: "A", Email: email, Password: "secret1"})
	if !errors.As(err, &verr) || verr.Fields[0].Param != "email" {
		t.Errorf("long email err = %v, want email validation error", err)
	}
}

func TestValidatorFutureOnTimestamp(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	v := NewValidatorWithClock(func() time.Time { return now })

	past := models.NewTimestamp(now.Add(-time.Minute))
	err := v.Struct(models.UpdateEventRequest{DateTime: &past})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Msg != "Event date must be in the future" {
		t.Errorf("past timestamp err = %v", err)
	}

	future := models.NewTimestamp(now.Add(time.Minute))
	if err := v.Struct(models.UpdateEventRequest{DateTime: &future}); err != nil {
		t.Errorf("future timestamp rejected: %v", err)
	}
	if err := v.Struct(models.UpdateEventRequest{}); err != nil {
		t.Errorf("absent timestamp rejected: %v", err)
	}
}

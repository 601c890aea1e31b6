package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventCategory string

const (
	CategoryConference EventCategory = "Conference"
	CategoryWorkshop   EventCategory = "Workshop"
	CategorySeminar    EventCategory = "Seminar"
	CategoryNetworking EventCategory = "Networking"
	CategorySocial     EventCategory = "Social"
	CategorySports     EventCategory = "Sports"
	CategoryCultural   EventCategory = "Cultural"
	CategoryOther      EventCategory = "Other"
)

// EventStatus is the stored lifecycle field.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusLive      EventStatus = "live"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// CurrentStatus is the time-derived label served to clients. It is never stored.
type CurrentStatus string

const (
	CurrentStatusUpcoming  CurrentStatus = "upcoming"
	CurrentStatusLive      CurrentStatus = "live"
	CurrentStatusCompleted CurrentStatus = "completed"
	CurrentStatusCancelled CurrentStatus = "cancelled"
)

type AttendeeStatus string

const (
	AttendeeRegistered AttendeeStatus = "registered"
	AttendeeAttended   AttendeeStatus = "attended"
	AttendeeCancelled  AttendeeStatus = "cancelled"
)

type Location struct {
	Venue   string `json:"venue" gorm:"size:255;not null"`
	Address string `json:"address" gorm:"size:255;not null"`
	City    string `json:"city" gorm:"size:120;not null;index"`
}

type Event struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string                      `json:"title" gorm:"size:100;not null"`
	Description  string                      `json:"description" gorm:"size:1000;not null"`
	Category     EventCategory               `json:"category" gorm:"size:32;not null;index"`
	DateTime     time.Time                   `json:"dateTime" gorm:"not null;index"`
	Duration     float64                     `json:"duration" gorm:"not null"`
	Location     Location                    `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	Capacity     int                         `json:"capacity" gorm:"not null"`
	Price        float64                     `json:"price" gorm:"not null;default:0"`
	OrganizerID  uuid.UUID                   `json:"organizerId" gorm:"type:uuid;not null;index"`
	Organizer    *User                       `json:"-" gorm:"foreignKey:OrganizerID"`
	Attendees    []Attendee                  `json:"-" gorm:"foreignKey:EventID"`
	Status       EventStatus                 `json:"status" gorm:"size:16;not null;default:published;index"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	ImageURL     string                      `json:"imageUrl"`
	Requirements string                      `json:"requirements" gorm:"size:500"`

	// Lower-cased copies for case-insensitive filtering. SQLite's LOWER only
	// folds ASCII, so the folding happens here instead of in SQL.
	CityFold        string `json:"-" gorm:"index"`
	TitleFold       string `json:"-"`
	DescriptionFold string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Attendee is one roster entry of an event.
type Attendee struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	EventID      uuid.UUID      `json:"eventId" gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	User         *User          `json:"-" gorm:"foreignKey:UserID"`
	RegisteredAt time.Time      `json:"registeredAt" gorm:"not null"`
	Status       AttendeeStatus `json:"status" gorm:"size:16;not null;default:registered"`
}

func (Attendee) TableName() string {
	return "event_attendees"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Event) BeforeSave(tx *gorm.DB) error {
	e.FoldSearchText()
	return nil
}

// FoldSearchText refreshes the lower-cased filter columns.
func (e *Event) FoldSearchText() {
	e.CityFold = strings.ToLower(e.Location.City)
	e.TitleFold = strings.ToLower(e.Title)
	e.DescriptionFold = strings.ToLower(e.Description)
}

func (a *Attendee) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// EndTime is DateTime plus Duration hours.
func (e *Event) EndTime() time.Time {
	return e.DateTime.Add(time.Duration(e.Duration * float64(time.Hour)))
}

// AvailableSpots may go negative if capacity was lowered below the roster size.
func (e *Event) AvailableSpots() int {
	return e.Capacity - len(e.Attendees)
}

// CurrentStatusAt derives the lifecycle label at instant now. The live window
// is inclusive on both ends.
func (e *Event) CurrentStatusAt(now time.Time) CurrentStatus {
	if e.Status == EventStatusCancelled {
		return CurrentStatusCancelled
	}
	if now.Before(e.DateTime) {
		return CurrentStatusUpcoming
	}
	if !now.After(e.EndTime()) {
		return CurrentStatusLive
	}
	return CurrentStatusCompleted
}

// HasAttendee reports whether userID is on the loaded roster.
func (e *Event) HasAttendee(userID uuid.UUID) bool {
	for _, a := range e.Attendees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

type LocationInput struct {
	Venue   string `json:"venue" validate:"required,max=255"`
	Address string `json:"address" validate:"required,max=255"`
	City    string `json:"city" validate:"required,max=120"`
}

type EventRequest struct {
	Title        string        `json:"title" validate:"required,max=100"`
	Description  string        `json:"description" validate:"required,max=1000"`
	Category     EventCategory `json:"category" validate:"required,event_category"`
	DateTime     Timestamp     `json:"dateTime" validate:"required,future"`
	Duration     float64       `json:"duration" validate:"required,min=0.5,max=24"`
	Location     LocationInput `json:"location"`
	Capacity     int           `json:"capacity" validate:"required,min=1,max=10000"`
	Price        float64       `json:"price" validate:"min=0"`
	Status       EventStatus   `json:"status" validate:"omitempty,event_status"`
	Tags         []string      `json:"tags"`
	ImageURL     string        `json:"imageUrl"`
	Requirements string        `json:"requirements" validate:"max=500"`
}

// Normalize trims user supplied text the way the stored fields expect it.
func (r *EventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Location.Venue = strings.TrimSpace(r.Location.Venue)
	r.Location.Address = strings.TrimSpace(r.Location.Address)
	r.Location.City = strings.TrimSpace(r.Location.City)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Tags = trimTags(r.Tags)
}

// UpdateEventRequest carries only the keys present in the request body.
type UpdateEventRequest struct {
	Title        *string        `json:"title" validate:"omitempty,min=1,max=100"`
	Description  *string        `json:"description" validate:"omitempty,min=1,max=1000"`
	Category     *EventCategory `json:"category" validate:"omitempty,event_category"`
	DateTime     *Timestamp     `json:"dateTime" validate:"omitempty,future"`
	Duration     *float64       `json:"duration" validate:"omitempty,min=0.5,max=24"`
	Location     *LocationInput `json:"location" validate:"omitempty"`
	Capacity     *int           `json:"capacity" validate:"omitempty,min=1,max=10000"`
	Price        *float64       `json:"price" validate:"omitempty,min=0"`
	Status       *EventStatus   `json:"status" validate:"omitempty,event_status"`
	Tags         *[]string      `json:"tags"`
	ImageURL     *string        `json:"imageUrl"`
	Requirements *string        `json:"requirements" validate:"omitempty,max=500"`
}

func (r *UpdateEventRequest) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.Title)
	trim(r.Description)
	trim(r.ImageURL)
	if r.Location != nil {
		r.Location.Venue = strings.TrimSpace(r.Location.Venue)
		r.Location.Address = strings.TrimSpace(r.Location.Address)
		r.Location.City = strings.TrimSpace(r.Location.City)
	}
	if r.Tags != nil {
		tags := trimTags(*r.Tags)
		r.Tags = &tags
	}
}

// Apply copies every present key onto the event. Organizer and roster are
// never touched.
func (r *UpdateEventRequest) Apply(e *Event) {
	if r.Title != nil {
		e.Title = *r.Title
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Category != nil {
		e.Category = *r.Category
	}
	if r.DateTime != nil {
		e.DateTime = r.DateTime.Time()
	}
	if r.Duration != nil {
		e.Duration = *r.Duration
	}
	if r.Location != nil {
		e.Location = Location(*r.Location)
	}
	if r.Capacity != nil {
		e.Capacity = *r.Capacity
	}
	if r.Price != nil {
		e.Price = *r.Price
	}
	if r.Status != nil {
		e.Status = *r.Status
	}
	if r.Tags != nil {
		e.Tags = datatypes.JSONSlice[string](*r.Tags)
	}
	if r.ImageURL != nil {
		e.ImageURL = *r.ImageURL
	}
	if r.Requirements != nil {
		e.Requirements = *r.Requirements
	}
}

type EventFilter struct {
	Category string
	City     string
	Search   string
}

type EventCounts struct {
	Upcoming  int   `json:"upcoming"`
	Live      int   `json:"live"`
	Completed int   `json:"completed"`
	Total     int64 `json:"total"`
}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type AttendeeResponse struct {
	ID           uuid.UUID      `json:"id"`
	User         *UserSummary   `json:"user"`
	RegisteredAt time.Time      `json:"registeredAt"`
	Status       AttendeeStatus `json:"status"`
}

type EventResponse struct {
	ID             uuid.UUID          `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Category       EventCategory      `json:"category"`
	DateTime       time.Time          `json:"dateTime"`
	Duration       float64            `json:"duration"`
	Location       Location           `json:"location"`
	Capacity       int                `json:"capacity"`
	Price          float64            `json:"price"`
	Organizer      *UserSummary       `json:"organizer"`
	Attendees      []AttendeeResponse `json:"attendees"`
	Status         EventStatus        `json:"status"`
	Tags           []string           `json:"tags"`
	ImageURL       string             `json:"imageUrl,omitempty"`
	Requirements   string             `json:"requirements,omitempty"`
	AvailableSpots int                `json:"availableSpots"`
	CurrentStatus  CurrentStatus      `json:"currentStatus"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// NewEventResponse renders e with its derived fields evaluated at now.
// Unresolved organizer or attendee users fall back to an id-only summary.
func NewEventResponse(e *Event, now time.Time) EventResponse {
	resp := EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Category:       e.Category,
		DateTime:       e.DateTime,
		Duration:       e.Duration,
		Location:       e.Location,
		Capacity:       e.Capacity,
		Price:          e.Price,
		Organizer:      summarize(e.Organizer, e.OrganizerID),
		Attendees:      make([]AttendeeResponse, 0, len(e.Attendees)),
		Status:         e.Status,
		Tags:           []string(e.Tags),
		ImageURL:       e.ImageURL,
		Requirements:   e.Requirements,
		AvailableSpots: e.AvailableSpots(),
		CurrentStatus:  e.CurrentStatusAt(now),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	for _, a := range e.Attendees {
		resp.Attendees = append(resp.Attendees, AttendeeResponse{
			ID:           a.ID,
			User:         summarize(a.User, a.UserID),
			RegisteredAt: a.RegisteredAt,
			Status:       a.Status,
		})
	}
	return resp
}

func NewEventResponses(events []Event, now time.Time) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i], now))
	}
	return out
}

func summarize(u *User, id uuid.UUID) *UserSummary {
	if u == nil {
		return &UserSummary{ID: id}
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

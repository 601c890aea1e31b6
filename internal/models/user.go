package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"size:16;not null;default:attendee;index"`
	Phone        string    `json:"phone"`
	Bio          string    `json:"bio" gorm:"size:500"`
	Organization string    `json:"organization"`
	Website      string    `json:"website"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Requester is the authenticated caller of a service operation.
type Requester struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  Role
}

// AsRequester identifies u as the caller of an operation.
func (u *User) AsRequester() Requester {
	return Requester{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type UserStats struct {
	TotalUsers         int64 `json:"totalUsers"`
	Attendees          int64 `json:"attendees"`
	Organizers         int64 `json:"organizers"`
	Admins             int64 `json:"admins"`
	TotalEvents        int64 `json:"totalEvents"`
	PublishedEvents    int64 `json:"publishedEvents"`
	TotalRegistrations int64 `json:"totalRegistrations"`
}

package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/om-chauahan/eventhub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Transaction runs fn with a repository bound to a single database transaction.
func (r *EventRepository) Transaction(ctx context.Context, fn func(tx *EventRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&EventRepository{db: tx})
	})
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

// Save writes the event's own columns. The roster is managed through
// AddAttendee and RemoveAttendee.
func (r *EventRepository) Save(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error
}

// GetByID loads an event with its organizer and roster resolved.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.withDetails(r.db.WithContext(ctx)).First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Find loads the bare event row.
func (r *EventRepository) Find(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetForUpdate loads the bare event row and locks it for the rest of the
// transaction where the dialect supports row locks.
func (r *EventRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListPublished returns one page of published events matching filter,
// earliest first, along with the total number of matches.
func (r *EventRepository) ListPublished(ctx context.Context, filter models.EventFilter, offset, limit int) ([]models.Event, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Scopes(publishedMatching(filter)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err = r.withDetails(r.db.WithContext(ctx)).
		Scopes(publishedMatching(filter)).
		Order("date_time ASC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func publishedMatching(filter models.EventFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("status = ?", models.EventStatusPublished)
		if filter.Category != "" {
			db = db.Where("category = ?", filter.Category)
		}
		if filter.City != "" {
			db = db.Where(`city_fold LIKE ? ESCAPE '\'`, containsPattern(filter.City))
		}
		if filter.Search != "" {
			pattern := containsPattern(filter.Search)
			db = db.Where(`(title_fold LIKE ? ESCAPE '\' OR description_fold LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return db
	}
}

// ListByOrganizer returns every event organized by userID, newest first.
func (r *EventRepository) ListByOrganizer(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("organizer_id = ?", userID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

// ListRegisteredBy returns published events with a roster entry for userID.
func (r *EventRepository) ListRegisteredBy(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("status = ?", models.EventStatusPublished).
		Where("id IN (?)", r.db.Model(&models.Attendee{}).Select("event_id").Where("user_id = ?", userID)).
		Order("date_time ASC").
		Find(&events).Error
	return events, err
}

// ListAttendedBy returns every event, in any status, with a roster entry for userID.
func (r *EventRepository) ListAttendedBy(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&models.Attendee{}).Select("event_id").Where("user_id = ?", userID)).
		Find(&events).Error
	return events, err
}

// ListOrganizedBy returns the bare event rows organized by userID.
func (r *EventRepository) ListOrganizedBy(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).Where("organizer_id = ?", userID).Find(&events).Error
	return events, err
}

func (r *EventRepository) CountAttendees(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Attendee{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

// FindAttendee returns the roster entry of userID, or gorm.ErrRecordNotFound.
func (r *EventRepository) FindAttendee(ctx context.Context, eventID, userID uuid.UUID) (*models.Attendee, error) {
	var attendee models.Attendee
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&attendee).Error
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (r *EventRepository) AddAttendee(ctx context.Context, attendee *models.Attendee) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(attendee).Error
}

func (r *EventRepository) RemoveAttendee(ctx context.Context, attendeeID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Attendee{}, "id = ?", attendeeID).Error
}

// Delete removes the event together with its roster.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Attendee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, "id = ?", id).Error
	})
}

// DeleteByOrganizerRole removes every event, and its roster, whose organizer
// currently holds role. It returns the number of events deleted.
func (r *EventRepository) DeleteByOrganizerRole(ctx context.Context, role models.Role) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owners := tx.Model(&models.User{}).Select("id").Where("role = ?", role)

		var ids []uuid.UUID
		if err := tx.Model(&models.Event{}).Where("organizer_id IN (?)", owners).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("event_id IN ?", ids).Delete(&models.Attendee{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Event{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

func (r *EventRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Organizer").
		Preload("Attendees", func(db *gorm.DB) *gorm.DB {
			return db.Order("registered_at ASC")
		}).
		Preload("Attendees.User")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

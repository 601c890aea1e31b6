package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/om-chauahan/eventhub/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// DeleteCascade removes the user's registrations, the events they organize
// together with those events' rosters, and finally the user.
func (r *UserRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Attendee{}).Error; err != nil {
			return err
		}
		owned := tx.Model(&models.Event{}).Select("id").Where("organizer_id = ?", id)
		if err := tx.Where("event_id IN (?)", owned).Delete(&models.Attendee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organizer_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}

// Stats counts users by role alongside event and registration totals.
func (r *UserRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.UserStats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.User{})},
		{&stats.Attendees, db.Model(&models.User{}).Where("role = ?", models.RoleAttendee)},
		{&stats.Organizers, db.Model(&models.User{}).Where("role = ?", models.RoleOrganizer)},
		{&stats.Admins, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin)},
		{&stats.TotalEvents, db.Model(&models.Event{})},
		{&stats.PublishedEvents, db.Model(&models.Event{}).Where("status = ?", models.EventStatusPublished)},
		{&stats.TotalRegistrations, db.Model(&models.Attendee{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

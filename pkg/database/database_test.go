package database

import (
	"errors"
	"testing"

	"github.com/om-chauahan/eventhub/internal/config"
	"github.com/om-chauahan/eventhub/internal/models"
	"github.com/om-chauahan/eventhub/pkg/bcrypt"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

func TestSeedAdmin(t *testing.T) {
	db := openTestDB(t)

	admin := config.AdminConfig{Name: "Root", Email: " Admin@Example.com ", Password: "secret1"}
	for i := 0; i < 2; i++ {
		if err := SeedAdmin(db, admin, zap.NewNop()); err != nil {
			t.Fatalf("SeedAdmin #%d: %v", i, err)
		}
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	u := users[0]
	if u.Email != "admin@example.com" || u.Role != models.RoleAdmin {
		t.Errorf("admin = %+v", u)
	}
	if err := bcrypt.ComparePassword(u.Password, "secret1"); err != nil {
		t.Errorf("stored password does not match: %v", err)
	}
}

func TestSeedAdminPrehashedPassword(t *testing.T) {
	db := openTestDB(t)

	hash, err := bcrypt.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := SeedAdmin(db, config.AdminConfig{Name: "Root", Email: "admin@example.com", Password: hash}, zap.NewNop()); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	var u models.User
	if err := db.First(&u, "email = ?", "admin@example.com").Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.Password != hash {
		t.Error("pre-hashed password was hashed again")
	}
}

func TestDuplicateEmailTranslated(t *testing.T) {
	db := openTestDB(t)

	first := models.User{Name: "A", Email: "dup@example.com", Password: "x", Role: models.RoleAttendee}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	second := models.User{Name: "B", Email: "dup@example.com", Password: "x", Role: models.RoleAttendee}
	if err := db.Create(&second).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate err = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestRunMigrationsBackfillsSearchFolds(t *testing.T) {
	db := openTestDB(t)

	org := models.User{Name: "Olivia", Email: "olivia@example.com", Password: "x", Role: models.RoleOrganizer}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	ev := models.Event{Title: "Über Go", Description: "Talks", OrganizerID: org.ID, Location: models.Location{City: "München"}}
	if err := db.Create(&ev).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	// simulate a row written before the fold columns existed
	if err := db.Model(&ev).UpdateColumns(map[string]interface{}{"city_fold": "", "title_fold": "", "description_fold": ""}).Error; err != nil {
		t.Fatalf("clear folds: %v", err)
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	var got models.Event
	if err := db.First(&got, "id = ?", ev.ID).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.CityFold != "münchen" || got.TitleFold != "über go" {
		t.Errorf("folds = %q %q", got.CityFold, got.TitleFold)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error")
	}
}

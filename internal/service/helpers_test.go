package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/om-chauahan/eventhub/internal/config"
	"github.com/om-chauahan/eventhub/internal/models"
	"github.com/om-chauahan/eventhub/internal/repository"
	"github.com/om-chauahan/eventhub/pkg/database"
	"github.com/om-chauahan/eventhub/pkg/email"
	jwtPkg "github.com/om-chauahan/eventhub/pkg/jwt"
	"github.com/om-chauahan/eventhub/pkg/qrcode"
	"github.com/om-chauahan/eventhub/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeMailer struct {
	mu            sync.Mutex
	welcomes      []string
	confirmations chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{confirmations: make(chan string, 64)}
}

func (m *fakeMailer) SendWelcomeEmail(addr, name, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, addr)
	return nil
}

func (m *fakeMailer) SendRegistrationConfirmation(addr, name string, reg email.Registration) error {
	m.confirmations <- addr + " " + reg.EventID
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (s *fakeStore) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = contentType + ":" + string(data)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (s *fakeStore) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, "https://cdn.test/") {
		return "", false
	}
	return strings.TrimPrefix(url, "https://cdn.test/"), true
}

type fixture struct {
	db     *gorm.DB
	users  *repository.UserRepository
	repo   *repository.EventRepository
	events *EventService
	auth   *AuthService
	tokens *jwtPkg.Manager
	mailer *fakeMailer
	store  *fakeStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	validator := utils.NewValidatorWithClock(func() time.Time { return testNow })
	mailer := newFakeMailer()
	store := newFakeStore()
	tokens := jwtPkg.NewManager("test-secret", "eventhub-test", time.Hour)

	users := repository.NewUserRepository(db)
	repo := repository.NewEventRepository(db)

	events := NewEventService(repo, validator, mailer, store, qrcode.NewQRService("https://tickets.test"), zap.NewNop())
	events.now = func() time.Time { return testNow }

	return &fixture{
		db:     db,
		users:  users,
		repo:   repo,
		events: events,
		auth:   NewAuthService(users, tokens, validator, mailer, zap.NewNop()),
		tokens: tokens,
		mailer: mailer,
		store:  store,
	}
}

// user inserts an account with the given role and returns it as a requester.
func (f *fixture) user(t *testing.T, name string, role models.Role) models.Requester {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "x",
		Role:     role,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.AsRequester()
}

func validEventRequest() models.EventRequest {
	return models.EventRequest{
		Title:       "Go Meetup",
		Description: "Monthly gathering of Go developers",
		Category:    models.CategoryNetworking,
		DateTime:    models.NewTimestamp(testNow.Add(72 * time.Hour)),
		Duration:    2,
		Location: models.LocationInput{
			Venue:   "Hall A",
			Address: "1 Main St",
			City:    "Berlin",
		},
		Capacity: 50,
		Tags:     []string{"go", "community"},
	}
}

// createEvent creates an event through the service, applying mutate to a valid request first.
func (f *fixture) createEvent(t *testing.T, owner models.Requester, mutate func(*models.EventRequest)) *models.EventResponse {
	t.Helper()
	req := validEventRequest()
	if mutate != nil {
		mutate(&req)
	}
	ev, err := f.events.CreateEvent(context.Background(), req, owner)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

// insertEvent stores an event directly, bypassing validation, for states the
// service refuses to create (past dates, fixed creation times).
func (f *fixture) insertEvent(t *testing.T, e *models.Event) *models.Event {
	t.Helper()
	if e.Title == "" {
		e.Title = "Stored event"
	}
	if e.Description == "" {
		e.Description = "Inserted by test"
	}
	if e.Category == "" {
		e.Category = models.CategoryOther
	}
	if e.Duration == 0 {
		e.Duration = 1
	}
	if e.Capacity == 0 {
		e.Capacity = 10
	}
	if e.Status == "" {
		e.Status = models.EventStatusPublished
	}
	e.Location = models.Location{Venue: "Venue", Address: "Street", City: "Paris"}
	if err := f.repo.Create(context.Background(), e); err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return e
}

func (f *fixture) attendeeCount(t *testing.T, ev *models.EventResponse) int64 {
	t.Helper()
	n, err := f.repo.CountAttendees(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("count attendees: %v", err)
	}
	return n
}

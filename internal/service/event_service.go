package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/om-chauahan/eventhub/internal/metrics"
	"github.com/om-chauahan/eventhub/internal/models"
	"github.com/om-chauahan/eventhub/internal/repository"
	"github.com/om-chauahan/eventhub/pkg/email"
	"github.com/om-chauahan/eventhub/pkg/qrcode"
	"github.com/om-chauahan/eventhub/pkg/storage"
	"github.com/om-chauahan/eventhub/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	MaxImageSize = 5 << 20
)

// Mailer sends the transactional emails. Implemented by *email.EmailService.
type Mailer interface {
	SendWelcomeEmail(email, name, role string) error
	SendRegistrationConfirmation(email, name string, reg email.Registration) error
}

// ImageUpload is a cover image received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// EventPage is one page of a filtered event listing.
type EventPage struct {
	Events     []models.EventResponse
	Pagination models.Pagination
}

type EventService struct {
	eventRepo *repository.EventRepository
	validator *utils.Validator
	mailer    Mailer
	images    storage.ObjectStore
	tickets   *qrcode.QRService
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService wires the event operations. images may be nil, in which
// case cover uploads are rejected.
func NewEventService(
	eventRepo *repository.EventRepository,
	validator *utils.Validator,
	mailer Mailer,
	images storage.ObjectStore,
	tickets *qrcode.QRService,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		validator: validator,
		mailer:    mailer,
		images:    images,
		tickets:   tickets,
		logger:    logger.Named("events"),
		now:       time.Now,
	}
}

func (s *EventService) ListPublished(ctx context.Context, filter models.EventFilter, page, limit int) (*EventPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		return nil, &utils.ValidationError{Fields: []utils.FieldError{
			{Param: "limit", Msg: fmt.Sprintf("limit cannot exceed %d", MaxLimit)},
		}}
	}

	events, total, err := s.eventRepo.ListPublished(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	return &EventPage{
		Events: models.NewEventResponses(events, s.now()),
		Pagination: models.Pagination{
			Page:  page,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
			Total: total,
		},
	}, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return s.respond(event), nil
}

func (s *EventService) ListCreatedBy(ctx context.Context, requester models.Requester) ([]models.EventResponse, error) {
	if !CanCreateEvents(requester) {
		return nil, ErrForbidden
	}
	events, err := s.eventRepo.ListByOrganizer(ctx, requester.ID)
	if err != nil {
		return nil, err
	}
	return models.NewEventResponses(events, s.now()), nil
}

func (s *EventService) ListRegisteredBy(ctx context.Context, requester models.Requester) ([]models.EventResponse, error) {
	events, err := s.eventRepo.ListRegisteredBy(ctx, requester.ID)
	if err != nil {
		return nil, err
	}
	return models.NewEventResponses(events, s.now()), nil
}

// ComputeCounts buckets the requester's events by derived status. Organizers
// count the events they run; everyone else counts the events they attend.
func (s *EventService) ComputeCounts(ctx context.Context, requester models.Requester) (*models.EventCounts, error) {
	var (
		events []models.Event
		err    error
	)
	if requester.Role == models.RoleOrganizer {
		events, err = s.eventRepo.ListOrganizedBy(ctx, requester.ID)
	} else {
		events, err = s.eventRepo.ListAttendedBy(ctx, requester.ID)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	counts := &models.EventCounts{Total: int64(len(events))}
	for i := range events {
		switch events[i].CurrentStatusAt(now) {
		case models.CurrentStatusUpcoming:
			counts.Upcoming++
		case models.CurrentStatusLive:
			counts.Live++
		case models.CurrentStatusCompleted:
			counts.Completed++
		}
	}
	return counts, nil
}

func (s *EventService) CreateEvent(ctx context.Context, req models.EventRequest, requester models.Requester) (*models.EventResponse, error) {
	if !CanCreateEvents(requester) {
		return nil, ErrForbidden
	}

	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.EventStatusPublished
	}

	event := &models.Event{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		DateTime:     req.DateTime.Time(),
		Duration:     req.Duration,
		Location:     models.Location(req.Location),
		Capacity:     req.Capacity,
		Price:        req.Price,
		OrganizerID:  requester.ID,
		Status:       status,
		Tags:         req.Tags,
		ImageURL:     req.ImageURL,
		Requirements: req.Requirements,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	metrics.EventsCreated.Inc()

	s.logger.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.String("organizer_id", requester.ID.String()))

	return s.reload(ctx, event.ID)
}

func (s *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, req models.UpdateEventRequest, requester models.Requester) (*models.EventResponse, error) {
	event, err := s.eventRepo.Find(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	if !CanManageEvent(requester, event) {
		return nil, ErrForbidden
	}

	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	req.Apply(event)
	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return s.reload(ctx, id)
}

func (s *EventService) DeleteEvent(ctx context.Context, id uuid.UUID, requester models.Requester) error {
	event, err := s.eventRepo.Find(ctx, id)
	if err != nil {
		return notFound(err, ErrEventNotFound)
	}
	if !CanManageEvent(requester, event) {
		return ErrForbidden
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.removeImage(ctx, event.ImageURL)
	return nil
}

// Register adds the requester to the event roster. The status, capacity and
// duplicate checks run under a row lock on the event so concurrent
// registrations cannot exceed capacity.
func (s *EventService) Register(ctx context.Context, id uuid.UUID, requester models.Requester) (*models.EventResponse, error) {
	var event *models.Event
	err := s.eventRepo.Transaction(ctx, func(tx *repository.EventRepository) error {
		var err error
		event, err = tx.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrEventNotFound)
		}
		if event.Status != models.EventStatusPublished {
			return ErrEventNotPublished
		}

		count, err := tx.CountAttendees(ctx, id)
		if err != nil {
			return err
		}
		if count >= int64(event.Capacity) {
			return ErrEventFull
		}

		_, err = tx.FindAttendee(ctx, id, requester.ID)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.AddAttendee(ctx, &models.Attendee{
			EventID:      id,
			UserID:       requester.ID,
			RegisteredAt: s.now(),
			Status:       models.AttendeeRegistered,
		})
	})
	metrics.Registrations.WithLabelValues(registrationResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.logger.Info("attendee registered",
		zap.String("event_id", id.String()),
		zap.String("user_id", requester.ID.String()))
	s.confirmRegistration(requester, event)

	return s.reload(ctx, id)
}

// Unregister removes the requester's roster entry. It is allowed in every
// event status.
func (s *EventService) Unregister(ctx context.Context, id uuid.UUID, requester models.Requester) error {
	err := s.eventRepo.Transaction(ctx, func(tx *repository.EventRepository) error {
		if _, err := tx.GetForUpdate(ctx, id); err != nil {
			return notFound(err, ErrEventNotFound)
		}
		attendee, err := tx.FindAttendee(ctx, id, requester.ID)
		if err != nil {
			return notFound(err, ErrNotRegistered)
		}
		return tx.RemoveAttendee(ctx, attendee.ID)
	})
	if err != nil {
		return err
	}
	metrics.Unregistrations.Inc()
	return nil
}

// Ticket renders the requester's roster entry as a QR code PNG.
func (s *EventService) Ticket(ctx context.Context, id uuid.UUID, requester models.Requester) ([]byte, error) {
	if _, err := s.eventRepo.Find(ctx, id); err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	attendee, err := s.eventRepo.FindAttendee(ctx, id, requester.ID)
	if err != nil {
		return nil, notFound(err, ErrNotRegistered)
	}
	return s.tickets.GenerateTicketQRCode(id, attendee.ID, qrcode.DefaultSize)
}

// UploadImage stores a cover image for the event and points imageUrl at it.
// The previous cover is removed when this store issued it.
func (s *EventService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload, requester models.Requester) (*models.EventResponse, error) {
	if s.images == nil {
		return nil, ErrImageStorageDisabled
	}

	event, err := s.eventRepo.Find(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	if !CanManageEvent(requester, event) {
		return nil, ErrForbidden
	}

	if upload.Size <= 0 || upload.Size > MaxImageSize {
		return nil, ErrInvalidImage
	}
	if err := s.validator.Var(upload.ContentType, "supported_image"); err != nil {
		return nil, ErrInvalidImage
	}

	key := fmt.Sprintf("events/%s/%s%s", id, uuid.New(), strings.ToLower(path.Ext(upload.Filename)))
	if err := s.images.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, err
	}

	previous := event.ImageURL
	event.ImageURL = s.images.PublicURL(key)
	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to save image url: %w", err)
	}
	s.removeImage(ctx, previous)

	return s.reload(ctx, id)
}

// CleanupAttendeeOwnedEvents deletes every event whose organizer currently
// holds the attendee role.
func (s *EventService) CleanupAttendeeOwnedEvents(ctx context.Context, requester models.Requester) (int64, error) {
	if !IsAdmin(requester) {
		return 0, ErrForbidden
	}
	deleted, err := s.eventRepo.DeleteByOrganizerRole(ctx, models.RoleAttendee)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up events: %w", err)
	}
	metrics.CleanupDeleted.Add(float64(deleted))

	s.logger.Info("attendee-owned events cleaned up",
		zap.Int64("deleted", deleted),
		zap.String("admin_id", requester.ID.String()))
	return deleted, nil
}

func (s *EventService) reload(ctx context.Context, id uuid.UUID) (*models.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return s.respond(event), nil
}

func (s *EventService) respond(event *models.Event) *models.EventResponse {
	resp := models.NewEventResponse(event, s.now())
	return &resp
}

func (s *EventService) confirmRegistration(requester models.Requester, event *models.Event) {
	if requester.Email == "" {
		return
	}
	reg := email.Registration{
		EventID:  event.ID.String(),
		Title:    event.Title,
		DateTime: event.DateTime,
		Venue:    event.Location.Venue,
		City:     event.Location.City,
	}
	go func() {
		if err := s.mailer.SendRegistrationConfirmation(requester.Email, requester.Name, reg); err != nil {
			s.logger.Warn("registration email failed", zap.Error(err), zap.String("event_id", reg.EventID))
		}
	}()
}

func (s *EventService) removeImage(ctx context.Context, url string) {
	store, ok := s.images.(interface {
		KeyFromURL(string) (string, bool)
	})
	if !ok || url == "" {
		return
	}
	key, ok := store.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete image", zap.Error(err), zap.String("key", key))
	}
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrEventFull):
		return metrics.ResultFull
	case errors.Is(err, ErrAlreadyRegistered):
		return metrics.ResultAlreadyRegistered
	case errors.Is(err, ErrEventNotPublished):
		return metrics.ResultNotPublished
	}
	return metrics.ResultError
}

// notFound maps gorm's missing-row error onto target and passes any other error through.
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

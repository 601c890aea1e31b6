package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/om-chauahan/eventhub/internal/models"
	"github.com/om-chauahan/eventhub/internal/service"
	"go.uber.org/zap"
)

type EventHandler struct {
	eventService *service.EventService
	logger       *zap.Logger
}

func NewEventHandler(eventService *service.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

func (h *EventHandler) GetEvents(c *fiber.Ctx) error {
	filter := models.EventFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Search:   c.Query("search"),
	}

	page, err := h.eventService.ListPublished(c.UserContext(), filter, c.QueryInt("page", service.DefaultPage), c.QueryInt("limit", service.DefaultLimit))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(models.Response{
		Success:    true,
		Data:       page.Events,
		Pagination: &page.Pagination,
	})
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	id, err := eventID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	event, err := h.eventService.GetEvent(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(event, ""))
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	// role before body, so ineligible callers never see validation detail
	if !service.CanCreateEvents(r) {
		return respondError(c, h.logger, service.ErrForbidden)
	}

	var req models.EventRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	event, err := h.eventService.CreateEvent(c.UserContext(), req, r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(event, "Event created successfully"))
}

func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := eventID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req models.UpdateEventRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	event, err := h.eventService.UpdateEvent(c.UserContext(), id, req, r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(event, "Event updated successfully"))
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := eventID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.eventService.DeleteEvent(c.UserContext(), id, r); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Event deleted successfully"))
}

func (h *EventHandler) RegisterForEvent(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := eventID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	event, err := h.eventService.Register(c.UserContext(), id, r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(event, "Successfully registered for event"))
}

func (h *EventHandler) UnregisterFromEvent(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := eventID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.eventService.Unregister(c.UserContext(), id, r); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Successfully unregistered from event"))
}

func (h *EventHandler) GetMyCreatedEvents(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	events, err := h.eventService.ListCreatedBy(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(events, ""))
}

func (h *EventHandler) GetMyRegisteredEvents(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	events, err := h.eventService.ListRegisteredBy(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(events, ""))
}

func (h *EventHandler) GetMyStats(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	counts, err := h.eventService.ComputeCounts(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(counts, ""))
}

func (h *EventHandler) CleanupAttendeeEvents(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	deleted, err := h.eventService.CleanupAttendeeOwnedEvents(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Attendee-owned events cleaned up",
		"deletedCount": deleted,
	})
}

func (h *EventHandler) UploadEventImage(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := eventID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("No image uploaded"))
	}
	src, err := file.Open()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer src.Close()

	event, err := h.eventService.UploadImage(c.UserContext(), id, service.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Size:        file.Size,
		Body:        src,
	}, r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(event, "Image uploaded successfully"))
}

func (h *EventHandler) GetTicket(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := eventID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	png, err := h.eventService.Ticket(c.UserContext(), id, r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

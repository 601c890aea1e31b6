package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/om-chauahan/eventhub/internal/middleware"
	"github.com/om-chauahan/eventhub/internal/models"
	"github.com/om-chauahan/eventhub/internal/service"
	"github.com/om-chauahan/eventhub/pkg/utils"
	"go.uber.org/zap"
)

var errInvalidBody = errors.New("invalid request body")

type errorMapping struct {
	status  int
	message string
}

var errorMappings = map[error]errorMapping{
	service.ErrEventNotFound:        {fiber.StatusNotFound, "Event not found"},
	service.ErrUserNotFound:         {fiber.StatusNotFound, "User not found"},
	service.ErrForbidden:            {fiber.StatusForbidden, "Access denied"},
	service.ErrEventFull:            {fiber.StatusBadRequest, "Event is full"},
	service.ErrAlreadyRegistered:    {fiber.StatusBadRequest, "Already registered for this event"},
	service.ErrEventNotPublished:    {fiber.StatusBadRequest, "Event is not available for registration"},
	service.ErrNotRegistered:        {fiber.StatusBadRequest, "Not registered for this event"},
	service.ErrEmailTaken:           {fiber.StatusBadRequest, "User already exists with this email"},
	service.ErrInvalidCredentials:   {fiber.StatusUnauthorized, "Invalid credentials"},
	service.ErrImageStorageDisabled: {fiber.StatusServiceUnavailable, "Image uploads are not configured"},
	service.ErrInvalidImage:         {fiber.StatusBadRequest, "Image must be a JPEG, PNG, GIF or WebP file up to 5MB"},
	errInvalidBody:                  {fiber.StatusBadRequest, "Invalid request body"},
}

// respondError writes the JSON envelope for err. Unknown errors are logged
// and reported as a generic server error.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse(verr.Fields))
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(models.ErrorResponse(ferr.Message))
	}

	for target, m := range errorMappings {
		if errors.Is(err, target) {
			return c.Status(m.status).JSON(models.ErrorResponse(m.message))
		}
	}

	logger.Error("request failed",
		zap.Error(err),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()))
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Server error"))
}

// parseBody decodes the request body into out. A malformed timestamp is
// reported as a field error on dateTime.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		var perr *time.ParseError
		if errors.As(err, &perr) {
			return &utils.ValidationError{Fields: []utils.FieldError{
				{Param: "dateTime", Msg: "Valid date and time is required"},
			}}
		}
		return errInvalidBody
	}
	return nil
}

// eventID parses the :id route parameter. Malformed ids resolve to no event.
func eventID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, service.ErrEventNotFound
	}
	return id, nil
}

func requester(c *fiber.Ctx) (models.Requester, error) {
	r, ok := middleware.CurrentRequester(c)
	if !ok {
		return models.Requester{}, fiber.ErrUnauthorized
	}
	return r, nil
}

// ErrorHandler renders errors that escape the handlers, such as unknown
// routes, oversized bodies and recovered panics.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, logger, err)
	}
}

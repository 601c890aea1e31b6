package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/om-chauahan/eventhub/internal/models"
	"github.com/om-chauahan/eventhub/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(resp, "User registered successfully"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(resp, "Login successful"))
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	user, err := h.authService.Me(c.UserContext(), r.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(user, ""))
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req models.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), r.ID, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(user, "Profile updated successfully"))
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.authService.DeleteAccount(c.UserContext(), r.ID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Account deleted successfully"))
}

func (h *AuthHandler) AdminStats(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	stats, err := h.authService.AdminStats(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(stats, ""))
}

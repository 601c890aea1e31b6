package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/om-chauahan/eventhub/internal/models"
	"github.com/om-chauahan/eventhub/internal/repository"
	"github.com/om-chauahan/eventhub/pkg/bcrypt"
	jwtPkg "github.com/om-chauahan/eventhub/pkg/jwt"
	"github.com/om-chauahan/eventhub/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	tokens    *jwtPkg.Manager
	validator *utils.Validator
	mailer    Mailer
	logger    *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	tokens *jwtPkg.Manager,
	validator *utils.Validator,
	mailer Mailer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		validator: validator,
		mailer:    mailer,
		logger:    logger.Named("auth"),
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleAttendee
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	go func() {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.Name, string(user.Role)); err != nil {
			s.logger.Warn("welcome email failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		}
	}()

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}
	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatch) {
			s.logger.Error("stored password hash unusable", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

// Authenticate resolves a bearer token to its current user. Tokens of
// deleted users are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", jwtPkg.ErrInvalidToken)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile changes the profile fields present in req. Email and role are
// not editable here.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	for _, f := range []*string{req.Name, req.Phone, req.Bio, req.Organization, req.Website} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	// an empty website clears it
	check := req
	if check.Website != nil && *check.Website == "" {
		check.Website = nil
	}
	if err := s.validator.Struct(check); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Organization != nil {
		user.Organization = *req.Organization
	}
	if req.Website != nil {
		user.Website = *req.Website
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the user, their registrations and the events they organize.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.logger.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) AdminStats(ctx context.Context, requester models.Requester) (*models.UserStats, error) {
	if !IsAdmin(requester) {
		return nil, ErrForbidden
	}
	return s.userRepo.Stats(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

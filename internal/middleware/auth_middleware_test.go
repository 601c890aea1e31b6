package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/om-chauahan/eventhub/internal/models"
	jwtPkg "github.com/om-chauahan/eventhub/pkg/jwt"
	"go.uber.org/zap"
)

type stubAuthenticator struct {
	user *models.User
	err  error
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token != "good" {
		return nil, jwtPkg.ErrInvalidToken
	}
	return s.user, s.err
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Olivia", Email: "olivia@example.com", Role: models.RoleOrganizer}

	tests := []struct {
		name    string
		auth    stubAuthenticator
		header  string
		status  int
		message string
	}{
		{"missing header", stubAuthenticator{user: user}, "", http.StatusUnauthorized, "No token, authorization denied"},
		{"wrong scheme", stubAuthenticator{user: user}, "Basic good", http.StatusUnauthorized, "Invalid authorization header format"},
		{"invalid token", stubAuthenticator{user: user}, "Bearer bad", http.StatusUnauthorized, "Token is not valid"},
		{"lookup failure", stubAuthenticator{err: errors.New("db down")}, "Bearer good", http.StatusInternalServerError, "Server error"},
		{"valid token", stubAuthenticator{user: user}, "Bearer good", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", AuthMiddleware(tt.auth, zap.NewNop()), func(c *fiber.Ctx) error {
				r, ok := CurrentRequester(c)
				if !ok {
					return c.SendStatus(http.StatusTeapot)
				}
				return c.JSON(r)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status != http.StatusOK {
				var body models.Response
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.Success || body.Message != tt.message {
					t.Errorf("body = %+v, want message %q", body, tt.message)
				}
				return
			}

			var r models.Requester
			if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
				t.Fatalf("decode requester: %v", err)
			}
			if r.ID != user.ID || r.Role != models.RoleOrganizer {
				t.Errorf("requester = %+v", r)
			}
		})
	}
}

func TestCurrentRequesterMissing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if _, ok := CurrentRequester(c); ok {
			return c.SendStatus(http.StatusOK)
		}
		return c.SendStatus(http.StatusUnauthorized)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

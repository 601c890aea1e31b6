package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/om-chauahan/eventhub/internal/config"
	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Registration describes a confirmed event registration.
type Registration struct {
	EventID  string
	Title    string
	DateTime time.Time
	Venue    string
	City     string
}

type EmailService struct {
	client      *resend.Client
	from        string
	fromName    string
	frontendURL string
	logger      *zap.Logger
}

// NewEmailService returns a sender backed by Resend. Without an API key every
// send is skipped.
func NewEmailService(cfg config.EmailConfig, logger *zap.Logger) *EmailService {
	s := &EmailService{
		from:        cfg.FromAddress,
		fromName:    cfg.FromName,
		frontendURL: cfg.FrontendURL,
		logger:      logger.Named("email"),
	}
	if cfg.APIKey != "" {
		s.client = resend.NewClient(cfg.APIKey)
	}
	return s
}

func (s *EmailService) Enabled() bool {
	return s.client != nil
}

func (s *EmailService) SendWelcomeEmail(email, name, role string) error {
	html, err := render("welcome.html", map[string]interface{}{
		"Name":        name,
		"Email":       email,
		"Role":        role,
		"FrontendURL": s.frontendURL,
		"Year":        time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(email, "Welcome to EventHub!", html)
}

func (s *EmailService) SendRegistrationConfirmation(email, name string, reg Registration) error {
	html, err := render("registration.html", map[string]interface{}{
		"Name":        name,
		"EventID":     reg.EventID,
		"Title":       reg.Title,
		"When":        reg.DateTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
		"Venue":       reg.Venue,
		"City":        reg.City,
		"FrontendURL": s.frontendURL,
		"Year":        time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(email, "Registration confirmed: "+reg.Title, html)
}

// sender formats the From header. The bare address is used when no display
// name is configured.
func (s *EmailService) sender() string {
	name := strings.TrimSpace(s.fromName)
	if name == "" {
		return s.from
	}
	return (&mail.Address{Name: name, Address: s.from}).String()
}

func (s *EmailService) send(to, subject, html string) error {
	if !s.Enabled() {
		s.logger.Debug("email disabled, skipping", zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	resp, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.sender(),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", subject, to, err)
	}

	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject), zap.String("id", resp.Id))
	return nil
}

func render(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return body.String(), nil
}

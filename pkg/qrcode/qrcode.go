package qrcode

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// QRService renders attendee tickets as QR codes.
type QRService struct {
	baseURL string
}

func NewQRService(baseURL string) *QRService {
	return &QRService{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// TicketURL is the address a ticket QR code encodes.
func (s *QRService) TicketURL(eventID, attendeeID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, eventID, attendeeID)
}

// GenerateTicketQRCode returns a PNG encoding the ticket URL of one roster entry.
func (s *QRService) GenerateTicketQRCode(eventID, attendeeID uuid.UUID, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(s.TicketURL(eventID, attendeeID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}

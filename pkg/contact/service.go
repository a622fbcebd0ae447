package contact

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/jlcstudio/site-backend/pkg/domain"
	"github.com/jlcstudio/site-backend/pkg/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Notifier defines the contact-form notifications
type Notifier interface {
	SendContactInquiry(req models.ContactRequest) error
	SendContactConfirmation(req models.ContactRequest) error
}

// Service handles contact form submissions
type Service struct {
	mail Notifier
}

// NewService creates a new contact service
func NewService(mail Notifier) *Service {
	return &Service{mail: mail}
}

// Submit validates and forwards a contact-form submission. The inquiry
// email to the studio must succeed, since it is the only record of the
// submission. The confirmation back to the customer is best-effort.
func (s *Service) Submit(ctx context.Context, req models.ContactRequest) error {
	if missing := missingFields(req); len(missing) > 0 {
		return &domain.MissingFieldsError{Fields: missing}
	}
	if !emailPattern.MatchString(req.Email) {
		return domain.ErrInvalidEmail
	}

	if err := s.mail.SendContactInquiry(req); err != nil {
		return err
	}

	if err := s.mail.SendContactConfirmation(req); err != nil {
		log.Printf("⚠️  Failed to send contact confirmation to %s: %v", req.Email, err)
	}

	return nil
}

func missingFields(req models.ContactRequest) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"message", req.Message},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

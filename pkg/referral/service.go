package referral

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/jlcstudio/site-backend/pkg/domain"
	"github.com/jlcstudio/site-backend/pkg/models"
)

// maxCodeAttempts bounds collision retries during code issuance. With a
// 32-symbol, 4-character suffix space this is effectively unreachable,
// but exhaustion must be a reported failure rather than a silent loop.
const maxCodeAttempts = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrCodeSpaceExhausted is returned when repeated candidate codes all
// collide with existing records.
var ErrCodeSpaceExhausted = errors.New("could not generate an unused referral code")

// DuplicateEmailError is returned when an email is already registered.
// It carries the code issued on the first signup so the caller can
// surface it instead of issuing a second one.
type DuplicateEmailError struct {
	ExistingCode string
}

func (e *DuplicateEmailError) Error() string {
	return "email already registered"
}

// DirectoryStore defines the referrer record operations the signup flow needs
type DirectoryStore interface {
	Exists(ctx context.Context, code string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*models.Referrer, error)
	Append(ctx context.Context, r models.Referrer) error
}

// Notifier defines the signup notifications. Failures are best-effort:
// the persisted record is the source of truth.
type Notifier interface {
	SendReferrerWelcome(r models.Referrer, shareURL string) error
	SendNewReferrerAlert(r models.Referrer) error
}

// Service orchestrates referrer onboarding: code issuance, record
// persistence, and confirmation emails.
type Service struct {
	dir        DirectoryStore
	mail       Notifier
	gen        *CodeGenerator
	bookingURL string
}

// NewService creates a new referral signup service
func NewService(dir DirectoryStore, mail Notifier, gen *CodeGenerator, bookingURL string) *Service {
	return &Service{
		dir:        dir,
		mail:       mail,
		gen:        gen,
		bookingURL: bookingURL,
	}
}

// Signup registers a new referrer and returns the issued code and share
// URL. Signing up twice with the same email (any case) never issues a
// second code: the duplicate error carries the first attempt's code.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResult, error) {
	if missing := missingFields(req); len(missing) > 0 {
		return nil, &domain.MissingFieldsError{Fields: missing}
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, domain.ErrInvalidEmail
	}

	existing, err := s.dir.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateEmailError{ExistingCode: existing.Code}
	}

	code, err := s.uniqueCode(ctx, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}

	record := models.Referrer{
		Code:           code,
		Name:           strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName),
		Email:          req.Email,
		Phone:          req.Phone,
		PaymentMethod:  req.PaymentMethod,
		PaymentDetails: req.PaymentDetails,
		CreatedAt:      time.Now(),
		Status:         models.ReferrerStatusActive,
	}
	if err := s.dir.Append(ctx, record); err != nil {
		return nil, err
	}

	shareURL := s.ShareURL(code)

	// The record is persisted; notification failures are logged only.
	if err := s.mail.SendReferrerWelcome(record, shareURL); err != nil {
		log.Printf("⚠️  Failed to send referrer welcome email to %s: %v", record.Email, err)
	}
	if err := s.mail.SendNewReferrerAlert(record); err != nil {
		log.Printf("⚠️  Failed to send new referrer alert for %s: %v", record.Code, err)
	}

	return &models.SignupResult{Code: code, ShareURL: shareURL}, nil
}

// ShareURL builds the booking link a referrer shares with customers
func (s *Service) ShareURL(code string) string {
	return fmt.Sprintf("%s?ref=%s", s.bookingURL, code)
}

// uniqueCode generates candidates until one is unused, bounded by
// maxCodeAttempts.
func (s *Service) uniqueCode(ctx context.Context, firstName, lastName string) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.gen.Generate(firstName, lastName)
		if err != nil {
			return "", err
		}

		taken, err := s.dir.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func missingFields(req models.SignupRequest) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"email", req.Email},
		{"paymentMethod", req.PaymentMethod},
		{"paymentDetails", req.PaymentDetails},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

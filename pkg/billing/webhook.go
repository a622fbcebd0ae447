package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/jlcstudio/site-backend/pkg/models"
)

// ErrInvalidSignature is returned when the webhook payload fails
// signature verification. This is the only webhook failure that should
// produce a non-2xx response.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ReferrerLookup resolves referral codes to referrer records
type ReferrerLookup interface {
	Lookup(ctx context.Context, code string) (*models.Referrer, error)
}

// ConversionLedger records attributed conversions. HasEvent is the
// idempotency ground truth: an event ID already in the ledger is never
// recorded twice.
type ConversionLedger interface {
	Append(ctx context.Context, c models.Conversion) error
	HasEvent(ctx context.Context, eventID string) (bool, error)
}

// PayoutNotifier sends the two conversion notifications. Failures are
// best-effort: the ledger row is the source of truth.
type PayoutNotifier interface {
	SendPayoutDue(r models.Referrer, conv models.Conversion) error
	SendReferralReward(r models.Referrer, conv models.Conversion) error
}

// EventDeduper is an optional fast-path duplicate check in front of the
// ledger scan. Seen misses fall through to the ledger, so a cold or
// flushed cache never causes double recording.
type EventDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// WebhookProcessor turns verified Stripe events into conversion records
// and payout notifications.
type WebhookProcessor struct {
	dir    ReferrerLookup
	ledger ConversionLedger
	mail   PayoutNotifier
	dedup  EventDeduper
	secret string
}

// NewWebhookProcessor creates a webhook processor. dedup may be nil.
func NewWebhookProcessor(dir ReferrerLookup, ledger ConversionLedger, mail PayoutNotifier, dedup EventDeduper, webhookSecret string) *WebhookProcessor {
	return &WebhookProcessor{
		dir:    dir,
		ledger: ledger,
		mail:   mail,
		dedup:  dedup,
		secret: webhookSecret,
	}
}

// HandleEvent verifies and processes one webhook delivery. Every outcome
// other than a bad signature returns an acknowledgement for a 200
// response: referral bookkeeping problems are ours, and a retry storm
// from the payment provider fixes none of them.
func (p *WebhookProcessor) HandleEvent(ctx context.Context, payload []byte, signature string) (*models.WebhookAck, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return &models.WebhookAck{Received: true}, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Printf("⚠️  Failed to parse checkout session from event %s: %v", event.ID, err)
		return &models.WebhookAck{Received: true, Error: "malformed session payload"}, nil
	}

	code := session.Metadata["referral_code"]
	if code == "" {
		noReferral := false
		return &models.WebhookAck{Received: true, Referral: &noReferral}, nil
	}

	dup, err := p.isDuplicate(ctx, event.ID)
	if err != nil {
		log.Printf("⚠️  Duplicate check failed for event %s: %v", event.ID, err)
		return &models.WebhookAck{Received: true, Error: "duplicate check failed"}, nil
	}
	if dup {
		log.Printf("ℹ️  Skipping already-processed event %s", event.ID)
		return &models.WebhookAck{Received: true, Duplicate: true}, nil
	}

	referrer, err := p.dir.Lookup(ctx, code)
	if err != nil {
		log.Printf("⚠️  Referrer lookup failed for code %s: %v", code, err)
		return &models.WebhookAck{Received: true, Error: "referrer lookup failed"}, nil
	}
	if referrer == nil {
		log.Printf("⚠️  Unknown referral code on session %s: %s", session.ID, code)
		return &models.WebhookAck{Received: true, Error: "unknown referral code"}, nil
	}

	conv := models.Conversion{
		ReferralCode: code,
		Service:      session.Metadata["service_name"],
		AmountCents:  session.AmountTotal,
		Amount:       models.FormatUSD(session.AmountTotal),
		CreatedAt:    time.Now(),
		PayoutStatus: models.PayoutStatusPending,
		EventID:      event.ID,
	}
	if session.CustomerDetails != nil {
		conv.CustomerName = session.CustomerDetails.Name
		conv.CustomerEmail = session.CustomerDetails.Email
	}

	if err := p.ledger.Append(ctx, conv); err != nil {
		log.Printf("⚠️  Failed to record conversion for event %s: %v", event.ID, err)
		return &models.WebhookAck{Received: true, Error: "failed to record conversion"}, nil
	}

	// Mark only after a successful append so a failed write is retried,
	// not claimed.
	if p.dedup != nil {
		if err := p.dedup.Mark(ctx, event.ID); err != nil {
			log.Printf("⚠️  Failed to mark event %s as processed: %v", event.ID, err)
		}
	}

	notified := true
	if err := p.mail.SendPayoutDue(*referrer, conv); err != nil {
		log.Printf("⚠️  Failed to send payout notification for %s: %v", code, err)
		notified = false
	}
	if err := p.mail.SendReferralReward(*referrer, conv); err != nil {
		log.Printf("⚠️  Failed to send reward email to %s: %v", referrer.Email, err)
	}

	isReferral := true
	return &models.WebhookAck{
		Received:               true,
		Referral:               &isReferral,
		ReferralCode:           code,
		ReferrerName:           referrer.Name,
		PayoutNotificationSent: notified,
	}, nil
}

// isDuplicate consults the fast-path cache first and falls back to the
// ledger scan.
func (p *WebhookProcessor) isDuplicate(ctx context.Context, eventID string) (bool, error) {
	if p.dedup != nil {
		seen, err := p.dedup.Seen(ctx, eventID)
		if err != nil {
			log.Printf("⚠️  Dedup cache check failed for event %s: %v", eventID, err)
		} else if seen {
			return true, nil
		}
	}
	return p.ledger.HasEvent(ctx, eventID)
}

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Referrer status values stored in the Referrers sheet
const (
	ReferrerStatusActive   = "Active"
	ReferrerStatusInactive = "Inactive"
)

// Payout status values stored in the Conversions sheet
const (
	PayoutStatusPending = "Pending"
	PayoutStatusPaid    = "Paid"
)

// Referrer is one row of the Referrers sheet. Records are append-only:
// a referrer is retired by flipping Status, never by rewriting the row.
type Referrer struct {
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	PaymentMethod  string    `json:"payment_method"`
	PaymentDetails string    `json:"payment_details"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
}

// FirstName returns the first token of the referrer's full name,
// used for email greetings.
func (r Referrer) FirstName() string {
	name := strings.TrimSpace(r.Name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

// Conversion is one row of the Conversions sheet: a completed purchase
// attributed to a referral code. PayoutStatus transitions Pending -> Paid
// through a manual process outside this service.
type Conversion struct {
	ReferralCode  string    `json:"referral_code"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Service       string    `json:"service"`
	Amount        string    `json:"amount"`
	AmountCents   int64     `json:"amount_cents"`
	CreatedAt     time.Time `json:"created_at"`
	PayoutStatus  string    `json:"payout_status"`
	EventID       string    `json:"event_id,omitempty"`
}

// FormatUSD renders an amount in cents as a dollar string, e.g. 20000 -> "$200.00".
func FormatUSD(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

// ParseUSD parses a dollar string back into cents. Returns 0 for
// anything it cannot parse; sheet rows are externally editable.
func ParseUSD(amount string) int64 {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(amount), "$"))
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(v*100 + 0.5)
}

// SignupRequest is the referral signup payload
type SignupRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PaymentMethod  string `json:"paymentMethod"`
	PaymentDetails string `json:"paymentDetails"`
}

// SignupResult is returned by the referral signup service
type SignupResult struct {
	Code     string `json:"code"`
	ShareURL string `json:"shareUrl"`
}

// SignupResponse is the referral signup success body
type SignupResponse struct {
	Success  bool   `json:"success"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	ShareURL string `json:"shareUrl"`
}

// CheckoutRequest is the checkout session creation payload
type CheckoutRequest struct {
	ProductID     string `json:"productId" validate:"required"`
	ReferralCode  string `json:"referralCode"`
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email"`
}

// CheckoutResponse is the checkout session creation success body
type CheckoutResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// ContactRequest is the contact form payload
type ContactRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Service   string `json:"service"`
	EventDate string `json:"eventDate"`
	Budget    string `json:"budget"`
	Message   string `json:"message" validate:"required"`
}

// LoginRequest is the admin login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the admin login success body
type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      string `json:"user"`
}

// WebhookAck is the checkout-webhook acknowledgement body. Every path
// except signature failure acknowledges with 200 so the payment provider
// does not retry referral bookkeeping failures.
type WebhookAck struct {
	Received               bool   `json:"received"`
	Referral               *bool  `json:"referral,omitempty"`
	Duplicate              bool   `json:"duplicate,omitempty"`
	ReferralCode           string `json:"referralCode,omitempty"`
	ReferrerName           string `json:"referrerName,omitempty"`
	PayoutNotificationSent bool   `json:"payoutNotificationSent,omitempty"`
	Error                  string `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MissingFieldsResponse is a validation error carrying the required field list
type MissingFieldsResponse struct {
	Error    string   `json:"error"`
	Required []string `json:"required"`
}

// DuplicateEmailResponse surfaces the already-issued code for a known email
type DuplicateEmailResponse struct {
	Error        string `json:"error"`
	ExistingCode string `json:"existingCode"`
	Message      string `json:"message"`
}

// InvalidProductResponse lists the valid product IDs alongside the error
type InvalidProductResponse struct {
	Error         string   `json:"error"`
	ValidProducts []string `json:"validProducts"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

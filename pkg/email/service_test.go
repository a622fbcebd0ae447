package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlcstudio/site-backend/pkg/models"
)

func testReferrer() models.Referrer {
	return models.Referrer{
		Code:           "JLC-SM-A2B3",
		Name:           "Sarah Mitchell",
		Email:          "sarah@example.com",
		Phone:          "555-0142",
		PaymentMethod:  "venmo",
		PaymentDetails: "@sarah-m",
		Status:         models.ReferrerStatusActive,
	}
}

func testConversion() models.Conversion {
	return models.Conversion{
		ReferralCode:  "JLC-SM-A2B3",
		CustomerName:  "Dana Reed",
		CustomerEmail: "dana@example.com",
		Service:       "Wedding Consultation",
		Amount:        "$200.00",
		AmountCents:   20000,
		CreatedAt:     time.Date(2026, 4, 2, 15, 30, 0, 0, time.UTC),
		PayoutStatus:  models.PayoutStatusPending,
	}
}

func TestReferrerWelcomeEmail(t *testing.T) {
	subject, body, plain := referrerWelcomeEmail(testReferrer(), "https://jlcstudio.art/booking?ref=JLC-SM-A2B3", "$50.00")

	assert.Contains(t, subject, "Welcome")
	assert.Contains(t, body, "JLC-SM-A2B3")
	assert.Contains(t, body, "https://jlcstudio.art/booking?ref=JLC-SM-A2B3")
	assert.Contains(t, body, "$50.00")
	// Greets by first name only.
	assert.Contains(t, body, "Hi Sarah,")
	assert.Contains(t, plain, "JLC-SM-A2B3")
	assert.Contains(t, plain, "$50.00")
}

func TestPayoutDueEmail(t *testing.T) {
	subject, body, plain := payoutDueEmail(testReferrer(), testConversion(), "$50.00")

	assert.Contains(t, subject, "$50.00")
	assert.Contains(t, subject, "Sarah Mitchell")
	assert.Contains(t, body, "@sarah-m")
	assert.Contains(t, body, "venmo")
	assert.Contains(t, body, "Dana Reed")
	assert.Contains(t, body, "$200.00")
	assert.Contains(t, plain, "Payout owed: $50.00")
}

func TestReferralRewardEmail(t *testing.T) {
	subject, body, _ := referralRewardEmail(testReferrer(), testConversion(), "$50.00")

	assert.Contains(t, subject, "$50.00")
	assert.Contains(t, body, "Sarah")
	assert.Contains(t, body, "JLC-SM-A2B3")
	assert.Contains(t, body, "venmo")
}

func TestContactInquiryEmail(t *testing.T) {
	t.Run("Success - all fields rendered", func(t *testing.T) {
		req := models.ContactRequest{
			Name:      "Dana Reed",
			Email:     "dana@example.com",
			Phone:     "555-0199",
			Service:   "Wedding Florals",
			EventDate: "2026-09-12",
			Budget:    "$3,000-$5,000",
			Message:   "We're planning a September wedding.",
		}

		subject, body, plain := contactInquiryEmail(req)

		assert.Contains(t, subject, "Dana Reed")
		assert.Contains(t, body, "dana@example.com")
		assert.Contains(t, body, "Wedding Florals")
		assert.Contains(t, body, "2026-09-12")
		assert.Contains(t, plain, "We're planning a September wedding.")
	})

	t.Run("Success - optional fields show placeholder", func(t *testing.T) {
		req := models.ContactRequest{
			Name:    "Dana Reed",
			Email:   "dana@example.com",
			Message: "Hello",
		}

		_, body, plain := contactInquiryEmail(req)

		assert.Contains(t, body, "Not provided")
		assert.Contains(t, plain, "Not provided")
	})

	t.Run("Success - user content is HTML-escaped", func(t *testing.T) {
		req := models.ContactRequest{
			Name:    `Dana <script>alert(1)</script>`,
			Email:   "dana@example.com",
			Message: `<img src=x onerror=alert(1)>`,
		}

		_, body, _ := contactInquiryEmail(req)

		assert.NotContains(t, body, "<script>")
		assert.NotContains(t, body, "<img")
		assert.Contains(t, body, "&lt;script&gt;")
	})
}

func TestPendingPayoutDigestEmail(t *testing.T) {
	pending := []models.Conversion{testConversion(), testConversion()}

	subject, body, plain := pendingPayoutDigestEmail(pending, "$50.00")

	assert.Contains(t, subject, "2")
	assert.Contains(t, body, "JLC-SM-A2B3")
	assert.Contains(t, body, "2026-04-02")
	assert.Contains(t, plain, "Dana Reed")
}

func TestService_ConsoleMode(t *testing.T) {
	// Without an API key every send logs and succeeds.
	svc := NewService("noreply@jlcstudio.art", "JLC Studio", "jlcstudiollc@gmail.com", 5000, "")
	require.False(t, svc.useSendGrid)

	r := testReferrer()
	conv := testConversion()
	contactReq := models.ContactRequest{Name: "Dana", Email: "dana@example.com", Message: "Hi"}

	assert.NoError(t, svc.SendReferrerWelcome(r, "https://jlcstudio.art/booking?ref=JLC-SM-A2B3"))
	assert.NoError(t, svc.SendNewReferrerAlert(r))
	assert.NoError(t, svc.SendPayoutDue(r, conv))
	assert.NoError(t, svc.SendReferralReward(r, conv))
	assert.NoError(t, svc.SendContactInquiry(contactReq))
	assert.NoError(t, svc.SendContactConfirmation(contactReq))
	assert.NoError(t, svc.SendPendingPayoutDigest([]models.Conversion{conv}))
	assert.NoError(t, svc.SendPendingPayoutDigest(nil))
}

func TestService_PayoutAmountFormatting(t *testing.T) {
	svc := NewService("noreply@jlcstudio.art", "JLC Studio", "jlcstudiollc@gmail.com", 7500, "")
	assert.Equal(t, "$75.00", svc.payoutAmount)
}

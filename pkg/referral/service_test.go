package referral

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlcstudio/site-backend/pkg/domain"
	"github.com/jlcstudio/site-backend/pkg/models"
)

// fakeNotifier records sent notifications and can simulate failures
type fakeNotifier struct {
	welcomes []string
	alerts   []string
	fail     bool
}

func (f *fakeNotifier) SendReferrerWelcome(r models.Referrer, shareURL string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.welcomes = append(f.welcomes, r.Email)
	return nil
}

func (f *fakeNotifier) SendNewReferrerAlert(r models.Referrer) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.alerts = append(f.alerts, r.Code)
	return nil
}

// collidingDirectory reports every code as taken
type collidingDirectory struct {
	appends int
}

func (d *collidingDirectory) Exists(ctx context.Context, code string) (bool, error) {
	return true, nil
}

func (d *collidingDirectory) FindByEmail(ctx context.Context, email string) (*models.Referrer, error) {
	return nil, nil
}

func (d *collidingDirectory) Append(ctx context.Context, r models.Referrer) error {
	d.appends++
	return nil
}

func validSignup() models.SignupRequest {
	return models.SignupRequest{
		FirstName:      "Sarah",
		LastName:       "Mitchell",
		Email:          "sarah@example.com",
		Phone:          "555-0142",
		PaymentMethod:  "venmo",
		PaymentDetails: "@sarah-m",
	}
}

func newTestService(t *testing.T, mail Notifier) *Service {
	t.Helper()
	dir := NewDirectory(newTestWorkbook(t))
	return NewService(dir, mail, NewCodeGenerator(DefaultCodePrefix), "https://jlcstudio.art/booking")
}

func TestService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - issues code and share URL", func(t *testing.T) {
		mail := &fakeNotifier{}
		svc := newTestService(t, mail)

		result, err := svc.Signup(ctx, validSignup())
		require.NoError(t, err)

		assert.Regexp(t, `^JLC-SM-[A-Z2-9]{4}$`, result.Code)
		assert.Equal(t, "https://jlcstudio.art/booking?ref="+result.Code, result.ShareURL)
		assert.Equal(t, []string{"sarah@example.com"}, mail.welcomes)
		assert.Equal(t, []string{result.Code}, mail.alerts)
	})

	t.Run("Success - record is persisted", func(t *testing.T) {
		dir := NewDirectory(newTestWorkbook(t))
		svc := NewService(dir, &fakeNotifier{}, NewCodeGenerator(DefaultCodePrefix), "https://jlcstudio.art/booking")

		result, err := svc.Signup(ctx, validSignup())
		require.NoError(t, err)

		r, err := dir.Lookup(ctx, result.Code)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, "Sarah Mitchell", r.Name)
		assert.Equal(t, models.ReferrerStatusActive, r.Status)
		assert.False(t, r.CreatedAt.IsZero())
	})

	t.Run("Success - notification failures do not fail signup", func(t *testing.T) {
		svc := newTestService(t, &fakeNotifier{fail: true})

		result, err := svc.Signup(ctx, validSignup())
		require.NoError(t, err)
		assert.NotEmpty(t, result.Code)
	})

	t.Run("Failure - missing fields listed", func(t *testing.T) {
		svc := newTestService(t, &fakeNotifier{})

		req := validSignup()
		req.LastName = ""
		req.PaymentDetails = "   "

		_, err := svc.Signup(ctx, req)
		var missingErr *domain.MissingFieldsError
		require.ErrorAs(t, err, &missingErr)
		assert.Equal(t, []string{"lastName", "paymentDetails"}, missingErr.Fields)
	})

	t.Run("Failure - phone is optional but email is not", func(t *testing.T) {
		svc := newTestService(t, &fakeNotifier{})

		req := validSignup()
		req.Phone = ""
		result, err := svc.Signup(ctx, req)
		require.NoError(t, err)
		assert.NotEmpty(t, result.Code)

		req = validSignup()
		req.Email = ""
		_, err = svc.Signup(ctx, req)
		var missingErr *domain.MissingFieldsError
		require.ErrorAs(t, err, &missingErr)
		assert.Equal(t, []string{"email"}, missingErr.Fields)
	})

	t.Run("Failure - invalid email", func(t *testing.T) {
		svc := newTestService(t, &fakeNotifier{})

		req := validSignup()
		req.Email = "not-an-email"

		_, err := svc.Signup(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("Failure - duplicate email returns first code", func(t *testing.T) {
		mail := &fakeNotifier{}
		svc := newTestService(t, mail)

		first, err := svc.Signup(ctx, validSignup())
		require.NoError(t, err)

		// Same email with different case must not get a second code.
		req := validSignup()
		req.Email = "SARAH@example.com"

		_, err = svc.Signup(ctx, req)
		var dupErr *DuplicateEmailError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, first.Code, dupErr.ExistingCode)

		// No second welcome either.
		assert.Len(t, mail.welcomes, 1)
	})

	t.Run("Failure - code space exhausted after bounded retries", func(t *testing.T) {
		dir := &collidingDirectory{}
		svc := NewService(dir, &fakeNotifier{}, NewCodeGenerator(DefaultCodePrefix), "https://jlcstudio.art/booking")

		_, err := svc.Signup(ctx, validSignup())
		assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
		assert.Zero(t, dir.appends)
	})
}

func TestService_ShareURL(t *testing.T) {
	svc := NewService(nil, nil, NewCodeGenerator(DefaultCodePrefix), "https://jlcstudio.art/booking")
	assert.Equal(t, "https://jlcstudio.art/booking?ref=JLC-SM-A2B3", svc.ShareURL("JLC-SM-A2B3"))
}

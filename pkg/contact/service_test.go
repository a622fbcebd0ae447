package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlcstudio/site-backend/pkg/domain"
	"github.com/jlcstudio/site-backend/pkg/models"
)

type fakeNotifier struct {
	inquiries        int
	confirmations    int
	failInquiry      bool
	failConfirmation bool
}

func (f *fakeNotifier) SendContactInquiry(req models.ContactRequest) error {
	if f.failInquiry {
		return errors.New("smtp down")
	}
	f.inquiries++
	return nil
}

func (f *fakeNotifier) SendContactConfirmation(req models.ContactRequest) error {
	if f.failConfirmation {
		return errors.New("smtp down")
	}
	f.confirmations++
	return nil
}

func validRequest() models.ContactRequest {
	return models.ContactRequest{
		Name:    "Dana Reed",
		Email:   "dana@example.com",
		Message: "We're planning a September wedding.",
	}
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - both emails sent", func(t *testing.T) {
		mail := &fakeNotifier{}
		svc := NewService(mail)

		require.NoError(t, svc.Submit(ctx, validRequest()))
		assert.Equal(t, 1, mail.inquiries)
		assert.Equal(t, 1, mail.confirmations)
	})

	t.Run("Success - confirmation failure is swallowed", func(t *testing.T) {
		mail := &fakeNotifier{failConfirmation: true}
		svc := NewService(mail)

		require.NoError(t, svc.Submit(ctx, validRequest()))
		assert.Equal(t, 1, mail.inquiries)
	})

	t.Run("Failure - inquiry failure propagates", func(t *testing.T) {
		mail := &fakeNotifier{failInquiry: true}
		svc := NewService(mail)

		err := svc.Submit(ctx, validRequest())
		assert.Error(t, err)
		assert.Zero(t, mail.confirmations)
	})

	t.Run("Failure - missing fields listed", func(t *testing.T) {
		svc := NewService(&fakeNotifier{})

		err := svc.Submit(ctx, models.ContactRequest{Email: "dana@example.com"})
		var missingErr *domain.MissingFieldsError
		require.ErrorAs(t, err, &missingErr)
		assert.Equal(t, []string{"name", "message"}, missingErr.Fields)
	})

	t.Run("Failure - invalid email", func(t *testing.T) {
		mail := &fakeNotifier{}
		svc := NewService(mail)

		req := validRequest()
		req.Email = "dana@@example"

		err := svc.Submit(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.Zero(t, mail.inquiries)
	})
}

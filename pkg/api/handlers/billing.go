package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/jlcstudio/site-backend/pkg/api/errors"
	"github.com/jlcstudio/site-backend/pkg/billing"
	"github.com/jlcstudio/site-backend/pkg/metrics"
	"github.com/jlcstudio/site-backend/pkg/models"
)

// maxWebhookBodyBytes caps the webhook payload read. Stripe events are
// far smaller than this.
const maxWebhookBodyBytes = 1 << 20

// BillingHandler handles checkout and payment webhook operations.
type BillingHandler struct {
	checkout  *billing.CheckoutService
	processor *billing.WebhookProcessor
	metrics   *metrics.Metrics
	validate  *validator.Validate
}

// NewBillingHandler creates a new billing handler. metrics may be nil.
func NewBillingHandler(checkout *billing.CheckoutService, processor *billing.WebhookProcessor, m *metrics.Metrics) *BillingHandler {
	return &BillingHandler{
		checkout:  checkout,
		processor: processor,
		metrics:   m,
		validate:  validator.New(),
	}
}

// CreateCheckout godoc
// @Summary Create a checkout session
// @Description Create a Stripe Checkout session for a bookable service
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Checkout details"
// @Success 200 {object} models.CheckoutResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/checkout [post]
func (h *BillingHandler) CreateCheckout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	sess, err := h.checkout.CreateSession(ctx, req.ProductID, req.ReferralCode, req.CustomerEmail)
	if err != nil {
		var invalidErr *billing.InvalidProductError
		if errors.As(err, &invalidErr) {
			return c.JSON(http.StatusBadRequest, models.InvalidProductResponse{
				Error:         "invalid_product",
				ValidProducts: invalidErr.Valid,
			})
		}
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordCheckoutSession(req.ProductID)
	}

	return c.JSON(http.StatusOK, models.CheckoutResponse{
		Success:   true,
		SessionID: sess.ID,
		URL:       sess.URL,
	})
}

// HandleWebhook godoc
// @Summary Stripe webhook receiver
// @Description Process checkout completion events for referral attribution
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} models.WebhookAck
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/webhook/stripe [post]
func (h *BillingHandler) HandleWebhook(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read request body",
		})
	}
	signature := c.Request().Header.Get("Stripe-Signature")

	ack, err := h.processor.HandleEvent(ctx, payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			if h.metrics != nil {
				h.metrics.RecordWebhookEvent("bad_signature")
			}
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_signature",
				Message: "Webhook signature verification failed",
			})
		}
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordWebhookEvent(ackOutcome(ack))
		if ack.Referral != nil && *ack.Referral {
			h.metrics.RecordReferralConversion()
		}
	}

	return c.JSON(http.StatusOK, ack)
}

func ackOutcome(ack *models.WebhookAck) string {
	switch {
	case ack.Duplicate:
		return "duplicate"
	case ack.Error != "":
		return "error"
	case ack.Referral == nil:
		return "ignored"
	case *ack.Referral:
		return "recorded"
	default:
		return "no_referral"
	}
}

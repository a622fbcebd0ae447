package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jlcstudio/site-backend/pkg/api/errors"
	"github.com/jlcstudio/site-backend/pkg/domain"
	"github.com/jlcstudio/site-backend/pkg/metrics"
	"github.com/jlcstudio/site-backend/pkg/models"
	"github.com/jlcstudio/site-backend/pkg/referral"
)

// ReferralHandler handles referral program operations.
type ReferralHandler struct {
	service *referral.Service
	metrics *metrics.Metrics
}

// NewReferralHandler creates a new referral handler. metrics may be nil.
func NewReferralHandler(service *referral.Service, m *metrics.Metrics) *ReferralHandler {
	return &ReferralHandler{
		service: service,
		metrics: m,
	}
}

// Signup godoc
// @Summary Join the referral program
// @Description Register as a referrer and receive a personal referral code
// @Tags Referrals
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup details"
// @Success 200 {object} models.SignupResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/referrals/signup [post]
func (h *ReferralHandler) Signup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	result, err := h.service.Signup(ctx, req)
	if err != nil {
		var missingErr *domain.MissingFieldsError
		if errors.As(err, &missingErr) {
			return c.JSON(http.StatusBadRequest, models.MissingFieldsResponse{
				Error:    "missing_fields",
				Required: missingErr.Fields,
			})
		}
		if errors.Is(err, domain.ErrInvalidEmail) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_email",
				Message: "Please provide a valid email address",
			})
		}
		var dupErr *referral.DuplicateEmailError
		if errors.As(err, &dupErr) {
			return c.JSON(http.StatusBadRequest, models.DuplicateEmailResponse{
				Error:        "already_registered",
				ExistingCode: dupErr.ExistingCode,
				Message:      "This email is already registered. Your referral code is " + dupErr.ExistingCode,
			})
		}
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordReferralSignup()
	}

	return c.JSON(http.StatusOK, models.SignupResponse{
		Success:  true,
		Code:     result.Code,
		Message:  "Welcome to the referral program!",
		ShareURL: result.ShareURL,
	})
}

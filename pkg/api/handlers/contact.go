package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jlcstudio/site-backend/pkg/api/errors"
	"github.com/jlcstudio/site-backend/pkg/contact"
	"github.com/jlcstudio/site-backend/pkg/domain"
	"github.com/jlcstudio/site-backend/pkg/metrics"
	"github.com/jlcstudio/site-backend/pkg/models"
)

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	service *contact.Service
	metrics *metrics.Metrics
}

// NewContactHandler creates a new contact handler. metrics may be nil.
func NewContactHandler(service *contact.Service, m *metrics.Metrics) *ContactHandler {
	return &ContactHandler{
		service: service,
		metrics: m,
	}
}

// Submit godoc
// @Summary Submit a contact inquiry
// @Description Send an inquiry to the studio and receive a confirmation email
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body models.ContactRequest true "Inquiry details"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/contact [post]
func (h *ContactHandler) Submit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	var req models.ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.service.Submit(ctx, req); err != nil {
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
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordContactSubmission()
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Thank you! We'll be in touch within 1-2 business days.",
	})
}

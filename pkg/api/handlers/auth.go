package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/jlcstudio/site-backend/pkg/api/errors"
	"github.com/jlcstudio/site-backend/pkg/auth"
	"github.com/jlcstudio/site-backend/config"
	"github.com/jlcstudio/site-backend/pkg/metrics"
	"github.com/jlcstudio/site-backend/pkg/models"
)

// AuthHandler handles admin authentication.
type AuthHandler struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// NewAuthHandler creates a new auth handler. metrics may be nil.
func NewAuthHandler(cfg *config.Config, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		metrics:  m,
		validate: validator.New(),
	}
}

// Login godoc
// @Summary Admin login
// @Description Authenticate the studio admin and receive a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if !h.credentialsValid(req.Username, req.Password) {
		if h.metrics != nil {
			h.metrics.RecordLoginAttempt(false)
		}
		return apierrors.UnauthorizedError(c, "invalid credentials")
	}

	token, expiresAt, err := auth.GenerateJWT(req.Username, h.cfg.JWTSecret, h.cfg.JWTExpirationHours)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordLoginAttempt(true)
	}

	return c.JSON(http.StatusOK, models.LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      req.Username,
	})
}

// Me godoc
// @Summary Current admin user
// @Description Return the authenticated admin username
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	username, ok := c.Get("admin_user").(string)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing auth context")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"user": username,
	})
}

// credentialsValid compares credentials in constant time. A bcrypt hash
// takes precedence over the plaintext password setting.
func (h *AuthHandler) credentialsValid(username, password string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.AdminUsername)) == 1

	var passMatch bool
	if h.cfg.AdminPasswordHash != "" {
		passMatch = auth.CheckPassword(h.cfg.AdminPasswordHash, password)
	} else {
		passMatch = h.cfg.AdminPassword != "" &&
			subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.AdminPassword)) == 1
	}

	return userMatch && passMatch
}

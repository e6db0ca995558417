package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nowest-interior/admin-auth/internal/api/dto"
	"github.com/nowest-interior/admin-auth/internal/auth"
	"github.com/nowest-interior/admin-auth/internal/config"
	"github.com/nowest-interior/admin-auth/internal/domain"
	"github.com/nowest-interior/admin-auth/internal/observability"
	"github.com/nowest-interior/admin-auth/internal/service"
	"github.com/nowest-interior/admin-auth/internal/session"
	apperrors "github.com/nowest-interior/admin-auth/pkg/util"
)

// AuthHandler exposes the admin authentication endpoints.
type AuthHandler struct {
	admins   *service.AdminService
	sessions session.Store
	cfg      config.SessionConfig
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(admins *service.AdminService, sessions session.Store, cfg config.SessionConfig, metrics *observability.Metrics, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{admins: admins, sessions: sessions, cfg: cfg, metrics: metrics, logger: logger}
}

// Login handles POST /api/admin/login. On success it returns a bearer
// token and also opens a cookie session, so both credential kinds work
// for subsequent requests.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	admin, token, expiresAt, err := h.admins.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if admin == nil {
		h.metrics.RecordAuth("login_failed")
		return apperrors.NewUnauthorized("invalid username or password")
	}

	sessionID, err := h.sessions.Create(c.Context(), admin.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	h.setSessionCookie(c, sessionID)

	h.metrics.RecordAuth("login_ok")
	return c.JSON(dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
		Admin:       adminResponse(admin),
	})
}

// Logout handles POST /api/admin/logout. It destroys the cookie session if
// one exists; bearer tokens simply age out client-side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(h.cfg.CookieName); sessionID != "" {
		if _, err := h.sessions.Delete(c.Context(), sessionID); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	h.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

// Me handles GET /api/admin/me (protected).
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return c.JSON(adminResponse(admin))
}

// CreateAdmin handles POST /api/admin/create-admin (protected).
func (h *AuthHandler) CreateAdmin(c *fiber.Ctx) error {
	var req dto.AdminCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	admin, err := h.admins.Create(c.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			return apperrors.NewConflict("username already exists", nil)
		case errors.Is(err, service.ErrInvalidUsername):
			return apperrors.NewValidationError(err.Error(), nil)
		default:
			return apperrors.NewInternalError(err)
		}
	}
	return c.Status(http.StatusCreated).JSON(adminResponse(admin))
}

// ListAdmins handles GET /api/admin/admins (protected).
func (h *AuthHandler) ListAdmins(c *fiber.Ctx) error {
	admins, err := h.admins.List(c.Context())
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	out := make([]dto.AdminResponse, 0, len(admins))
	for _, admin := range admins {
		out = append(out, adminResponse(admin))
	}
	return c.JSON(out)
}

// RequestPasswordReset handles POST /api/admin/password-reset/request.
// The token is issued without consulting the directory so the endpoint
// does not reveal which accounts exist.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	token, err := h.admins.RequestPasswordReset(req.Email)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	// Returned in-band; a mail sender would pick this up in a full deployment.
	return c.JSON(fiber.Map{"reset_token": token})
}

// ConfirmPasswordReset handles POST /api/admin/password-reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirm
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new_password required", nil)
	}

	if err := h.admins.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		if auth.IsAuthFailure(err) {
			return apperrors.NewValidationError("invalid or expired reset token", nil)
		}
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    sessionID,
		MaxAge:   h.cfg.MaxAgeSeconds,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func adminResponse(admin *domain.Admin) dto.AdminResponse {
	return dto.AdminResponse{
		ID:        admin.ID,
		Username:  admin.Username,
		CreatedAt: admin.CreatedAt,
	}
}

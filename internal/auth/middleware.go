package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nowest-interior/admin-auth/internal/domain"
	"github.com/nowest-interior/admin-auth/internal/session"
	apperrors "github.com/nowest-interior/admin-auth/pkg/util"
)

const adminKey = "auth_admin"

// AdminDirectory resolves admin identities. A miss is (nil, nil); a
// non-nil error is a storage failure.
type AdminDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
}

// Middleware authenticates protected requests over two independent paths:
// a bearer token in the Authorization header, or a session cookie resolved
// through the session store. Whichever path applies either yields a full
// admin record or a failure; there is no partial state.
type Middleware struct {
	tokens     *TokenManager
	sessions   session.Store
	directory  AdminDirectory
	maxAge     time.Duration
	cookieName string
	logger     *zap.Logger
}

// NewMiddleware constructs the auth gate.
func NewMiddleware(tokens *TokenManager, sessions session.Store, directory AdminDirectory, maxAge time.Duration, cookieName string, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens:     tokens,
		sessions:   sessions,
		directory:  directory,
		maxAge:     maxAge,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Handle enforces authentication for protected routes. Every failure kind
// collapses into the same unauthorized response so callers cannot probe
// which check rejected them; storage failures surface as internal errors
// instead.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	admin, err := m.resolve(c)
	if err != nil {
		if IsAuthFailure(err) {
			m.logger.Warn("authentication failed", zap.String("path", c.Path()), zap.Error(err))
			return apperrors.NewUnauthorized("not authenticated")
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(adminKey, admin)
	return c.Next()
}

func (m *Middleware) resolve(c *fiber.Ctx) (*domain.Admin, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		return m.resolveBearer(c, header)
	}
	return m.resolveSession(c)
}

func (m *Middleware) resolveBearer(c *fiber.Ctx, header string) (*domain.Admin, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrMalformedHeader
	}

	claims, err := m.tokens.Verify(parts[1])
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return m.lookupAdmin(c, claims.Subject)
}

func (m *Middleware) resolveSession(c *fiber.Ctx) (*domain.Admin, error) {
	sessionID := c.Cookies(m.cookieName)
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}

	adminID, ok, err := m.sessions.Lookup(c.Context(), sessionID, m.maxAge)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOrExpiredSession
	}
	return m.lookupAdmin(c, adminID)
}

func (m *Middleware) lookupAdmin(c *fiber.Ctx, adminID string) (*domain.Admin, error) {
	admin, err := m.directory.GetByID(c.Context(), adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

// AdminFromContext retrieves the authenticated admin.
func AdminFromContext(c *fiber.Ctx) (*domain.Admin, bool) {
	val := c.Locals(adminKey)
	if val == nil {
		return nil, false
	}
	admin, ok := val.(*domain.Admin)
	return admin, ok
}

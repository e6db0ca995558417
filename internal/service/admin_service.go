package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nowest-interior/admin-auth/internal/auth"
	"github.com/nowest-interior/admin-auth/internal/config"
	"github.com/nowest-interior/admin-auth/internal/domain"
	"github.com/nowest-interior/admin-auth/internal/repository"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 255
)

// ErrInvalidUsername reports a username outside the allowed length bounds.
var ErrInvalidUsername = fmt.Errorf("username must be %d-%d characters", usernameMinLen, usernameMaxLen)

// AdminService is the directory of administrator accounts. It owns all
// mutation of admin records and performs credential checks during login
// and creation flows.
type AdminService struct {
	admins   repository.AdminRepository
	hasher   *auth.PasswordHasher
	tokenMgr *auth.TokenManager
	logger   *zap.Logger
}

// NewAdminService builds the service from configuration.
func NewAdminService(cfg config.AuthConfig, admins repository.AdminRepository, logger *zap.Logger) (*AdminService, error) {
	tokenMgr, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL())
	if err != nil {
		return nil, err
	}
	return &AdminService{
		admins:   admins,
		hasher:   auth.NewPasswordHasher(cfg.BcryptCost, logger),
		tokenMgr: tokenMgr,
		logger:   logger,
	}, nil
}

// GetByID resolves an admin by ID. A miss is (nil, nil); a non-nil error
// always means storage failed, never that the admin does not exist.
func (s *AdminService) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return admin, err
}

// GetByUsername resolves an admin by username with the same miss semantics
// as GetByID.
func (s *AdminService) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return admin, err
}

// List returns every admin account, oldest first.
func (s *AdminService) List(ctx context.Context) ([]*domain.Admin, error) {
	return s.admins.List(ctx)
}

// Create registers a new admin. auth.ErrUsernameTaken signals that the
// username is already in use; the database's unique constraint backstops
// the pre-check under concurrent creation.
func (s *AdminService) Create(ctx context.Context, username, password string) (*domain.Admin, error) {
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		return nil, ErrInvalidUsername
	}

	existing, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, auth.ErrUsernameTaken
	}

	admin := &domain.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: s.hasher.Hash(password),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, auth.ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("admin created", zap.String("username", admin.Username))
	return admin, nil
}

// Authenticate checks a username/password pair. An unknown username and a
// wrong password both yield (nil, nil); a non-nil error is a storage
// failure only.
func (s *AdminService) Authenticate(ctx context.Context, username, password string) (*domain.Admin, error) {
	admin, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, nil
	}
	if !s.hasher.Verify(password, admin.PasswordHash) {
		return nil, nil
	}
	return admin, nil
}

// Login authenticates and issues an access token. The returned admin is
// nil when credentials do not match.
func (s *AdminService) Login(ctx context.Context, username, password string) (*domain.Admin, string, time.Time, error) {
	admin, err := s.Authenticate(ctx, username, password)
	if err != nil || admin == nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.tokenMgr.Issue(admin.ID, admin.Username, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return admin, token, expiresAt, nil
}

// EnsureDefaultAdmin creates a bootstrap account from the configured
// defaults iff the directory holds no admins at all. Safe to call on every
// startup.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := s.Create(ctx, username, password); err != nil {
		// A concurrent instance may have won the bootstrap race.
		if errors.Is(err, auth.ErrUsernameTaken) {
			return nil
		}
		return err
	}
	s.logger.Info("default admin created", zap.String("username", username))
	return nil
}

// UpdatePassword rehashes and stores a new password for the admin.
func (s *AdminService) UpdatePassword(ctx context.Context, adminID, newPassword string) error {
	err := s.admins.UpdatePassword(ctx, adminID, s.hasher.Hash(newPassword))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.ErrAdminNotFound
	}
	return err
}

// Delete removes an admin account. Deletion is always an explicit
// administrative action; nothing removes accounts automatically.
func (s *AdminService) Delete(ctx context.Context, adminID string) error {
	err := s.admins.Delete(ctx, adminID)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.ErrAdminNotFound
	}
	return err
}

// RequestPasswordReset issues a reset token for the address. To avoid
// disclosing which accounts exist the token is issued regardless; only
// confirmation checks the directory.
func (s *AdminService) RequestPasswordReset(email string) (string, error) {
	return s.tokenMgr.IssuePasswordReset(email)
}

// ConfirmPasswordReset validates a reset token and updates the password of
// the admin whose username matches the token's email claim.
func (s *AdminService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	email, err := s.tokenMgr.VerifyPasswordReset(tokenStr)
	if err != nil {
		return err
	}

	admin, err := s.GetByUsername(ctx, email)
	if err != nil {
		return err
	}
	if admin == nil {
		return auth.ErrAdminNotFound
	}
	return s.UpdatePassword(ctx, admin.ID, newPassword)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AdminService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

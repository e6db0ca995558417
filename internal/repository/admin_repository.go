package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nowest-interior/admin-auth/internal/domain"
)

// ErrDuplicateUsername reports a violation of the admins username
// uniqueness constraint.
var ErrDuplicateUsername = errors.New("duplicate username")

// AdminRepository defines persistence access for administrator accounts.
// Lookups return pgx.ErrNoRows when no record matches.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	List(ctx context.Context) ([]*domain.Admin, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (id, username, password_hash)
        VALUES ($1, $2, $3)
        RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		admin.ID,
		admin.Username,
		admin.PasswordHash,
	).Scan(&admin.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	return err
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	const query = `
        SELECT id, username, password_hash, created_at
        FROM admins WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	const query = `
        SELECT id, username, password_hash, created_at
        FROM admins WHERE username=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, username))
}

func (r *adminRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	const query = `
        SELECT id, username, password_hash, created_at
        FROM admins ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []*domain.Admin
	for rows.Next() {
		var admin domain.Admin
		if err := rows.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt); err != nil {
			return nil, err
		}
		admins = append(admins, &admin)
	}
	return admins, rows.Err()
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	return count, err
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE admins SET password_hash=$1 WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *adminRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *adminRepository) scanOne(row pgx.Row) (*domain.Admin, error) {
	var admin domain.Admin
	if err := row.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt); err != nil {
		return nil, err
	}
	return &admin, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"primex/api/internal/models"
)

var ErrAdminNotFound = errors.New("admin not found")

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (models.Admin, error) {
	const query = `
		SELECT id, username, password_hash, role, status, created_at, updated_at
		FROM admin_users WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var admin models.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.Role,
		&admin.Status,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, ErrAdminNotFound
		}
		return models.Admin{}, err
	}
	return admin, nil
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (models.Admin, error) {
	const query = `
		SELECT id, username, password_hash, role, status, created_at, updated_at
		FROM admin_users WHERE username = $1
	`

	row := r.pool.QueryRow(ctx, query, username)
	var admin models.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.Role,
		&admin.Status,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, ErrAdminNotFound
		}
		return models.Admin{}, err
	}
	return admin, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"primex/api/internal/models"
)

var ErrAddressNotBlocked = errors.New("address not blocked")

type BlockedAddressRepository struct {
	pool *pgxpool.Pool
}

func NewBlockedAddressRepository(pool *pgxpool.Pool) *BlockedAddressRepository {
	return &BlockedAddressRepository{pool: pool}
}

func (r *BlockedAddressRepository) Upsert(ctx context.Context, blocked models.BlockedAddress) error {
	const query = `
		INSERT INTO blocked_ips (ip_address, reason, expires_at, blocked_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (ip_address)
		DO UPDATE SET
			reason = EXCLUDED.reason,
			expires_at = EXCLUDED.expires_at,
			blocked_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, blocked.IPAddress, blocked.Reason, blocked.ExpiresAt)
	return err
}

func (r *BlockedAddressRepository) Delete(ctx context.Context, ipAddress string) error {
	const query = `DELETE FROM blocked_ips WHERE ip_address = $1`
	cmd, err := r.pool.Exec(ctx, query, ipAddress)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAddressNotBlocked
	}
	return nil
}

// ListActive returns permanent blocks and blocks whose expiry is still in
// the future. Expired rows are left for the retention job.
func (r *BlockedAddressRepository) ListActive(ctx context.Context) ([]models.BlockedAddress, error) {
	const query = `
		SELECT ip_address, reason, expires_at, blocked_at
		FROM blocked_ips
		WHERE expires_at IS NULL OR expires_at > NOW()
		ORDER BY blocked_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocked []models.BlockedAddress
	for rows.Next() {
		var b models.BlockedAddress
		if err := rows.Scan(&b.IPAddress, &b.Reason, &b.ExpiresAt, &b.BlockedAt); err != nil {
			return nil, err
		}
		blocked = append(blocked, b)
	}
	return blocked, rows.Err()
}

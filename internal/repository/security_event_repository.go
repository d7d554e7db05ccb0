package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"primex/api/internal/models"
)

type SecurityEventRepository struct {
	pool *pgxpool.Pool
}

func NewSecurityEventRepository(pool *pgxpool.Pool) *SecurityEventRepository {
	return &SecurityEventRepository{pool: pool}
}

func (r *SecurityEventRepository) Insert(ctx context.Context, event models.SecurityEvent) error {
	var metadata []byte
	if event.Metadata != nil {
		encoded, err := json.Marshal(event.Metadata)
		if err != nil {
			return err
		}
		metadata = encoded
	}

	const query = `
		INSERT INTO security_events (
			id, event_type, severity, ip_address, user_agent, endpoint, username, description, metadata, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.Severity,
		event.IPAddress,
		event.UserAgent,
		event.Endpoint,
		event.Username,
		event.Description,
		metadata,
	)
	return err
}

func (r *SecurityEventRepository) CountCriticalSince(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	const query = `
		SELECT COUNT(*) FROM security_events
		WHERE ip_address = $1 AND severity = 'critical' AND created_at > $2
	`
	row := r.pool.QueryRow(ctx, query, ipAddress, since)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SecurityEventRepository) ListRecent(ctx context.Context, severity string, limit int, offset int) ([]models.SecurityEvent, error) {
	const query = `
		SELECT id, event_type, severity, ip_address, user_agent, endpoint, username, description, metadata, created_at
		FROM security_events
		WHERE ($1 = '' OR severity = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, severity, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *SecurityEventRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.SecurityEvent, error) {
	const query = `
		SELECT id, event_type, severity, ip_address, user_agent, endpoint, username, description, metadata, created_at
		FROM security_events
		WHERE created_at < $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *SecurityEventRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	const query = `DELETE FROM security_events WHERE id = ANY($1)`
	_, err := r.pool.Exec(ctx, query, ids)
	return err
}

func scanEvents(rows pgx.Rows) ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	for rows.Next() {
		var event models.SecurityEvent
		var metadata []byte
		if err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.Severity,
			&event.IPAddress,
			&event.UserAgent,
			&event.Endpoint,
			&event.Username,
			&event.Description,
			&metadata,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"primex/api/internal/models"
)

var ErrDeviceNotFound = errors.New("device not found")

type DeviceRepository struct {
	pool *pgxpool.Pool
}

func NewDeviceRepository(pool *pgxpool.Pool) *DeviceRepository {
	return &DeviceRepository{pool: pool}
}

func (r *DeviceRepository) FindActive(ctx context.Context, userID int64, deviceID string) (models.Device, error) {
	const query = `
		SELECT id, user_id, device_id, mac_address, device_name, status, last_seen, created_at
		FROM user_devices
		WHERE user_id = $1 AND device_id = $2 AND status = 'active'
	`

	row := r.pool.QueryRow(ctx, query, userID, deviceID)
	var device models.Device
	if err := row.Scan(
		&device.ID,
		&device.UserID,
		&device.DeviceID,
		&device.MACAddress,
		&device.DeviceName,
		&device.Status,
		&device.LastSeen,
		&device.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Device{}, ErrDeviceNotFound
		}
		return models.Device{}, err
	}
	return device, nil
}

func (r *DeviceRepository) CountActive(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM user_devices WHERE user_id = $1 AND status = 'active'`
	row := r.pool.QueryRow(ctx, query, userID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DeviceRepository) Insert(ctx context.Context, device models.Device) error {
	const query = `
		INSERT INTO user_devices (
			user_id, device_id, mac_address, device_name, status, last_seen, created_at
		) VALUES (
			$1, $2, $3, $4, 'active', NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		device.UserID,
		device.DeviceID,
		device.MACAddress,
		device.DeviceName,
	)
	return err
}

func (r *DeviceRepository) Touch(ctx context.Context, id int64) error {
	const query = `UPDATE user_devices SET last_seen = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *DeviceRepository) ListByUser(ctx context.Context, userID int64) ([]models.Device, error) {
	const query = `
		SELECT id, user_id, device_id, mac_address, device_name, status, last_seen, created_at
		FROM user_devices
		WHERE user_id = $1
		ORDER BY last_seen DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var device models.Device
		if err := rows.Scan(
			&device.ID,
			&device.UserID,
			&device.DeviceID,
			&device.MACAddress,
			&device.DeviceName,
			&device.Status,
			&device.LastSeen,
			&device.CreatedAt,
		); err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) Revoke(ctx context.Context, userID int64, deviceID string) error {
	const query = `
		UPDATE user_devices SET status = 'revoked'
		WHERE user_id = $1 AND device_id = $2 AND status = 'active'
	`
	cmd, err := r.pool.Exec(ctx, query, userID, deviceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

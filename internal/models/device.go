package models

import "time"

type DeviceStatus string

const (
	DeviceStatusActive  DeviceStatus = "active"
	DeviceStatusRevoked DeviceStatus = "revoked"
)

// Device binds a user to a client device identity. At most
// User.MaxDevices active rows may exist per user when a new device is
// admitted.
type Device struct {
	ID         int64
	UserID     int64
	DeviceID   string
	MACAddress *string
	DeviceName string
	Status     DeviceStatus
	LastSeen   time.Time
	CreatedAt  time.Time
}

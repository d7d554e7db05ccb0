package models

import "time"

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

type AdminRole string

const (
	AdminRoleSuperAdmin  AdminRole = "super_admin"
	AdminRoleAdmin       AdminRole = "admin"
	AdminRoleModerator   AdminRole = "moderator"
	AdminRoleCodesSeller AdminRole = "codes_seller"
)

// User is a subscriber account. SubscriptionEnd nil means an unlimited
// (lifetime) subscription.
type User struct {
	ID              int64
	Username        string
	PasswordHash    []byte
	Status          UserStatus
	SubscriptionEnd *time.Time
	MaxDevices      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Admin struct {
	ID           int64
	Username     string
	PasswordHash []byte
	Role         AdminRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

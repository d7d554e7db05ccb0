package models

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SecurityEvent is an append-only audit record. Writes are best-effort
// and never block the request that produced them.
type SecurityEvent struct {
	ID          string
	EventType   string
	Severity    Severity
	IPAddress   string
	UserAgent   string
	Endpoint    string
	Username    string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// BlockedAddress is a source address denied at the edge. ExpiresAt nil
// means a permanent block.
type BlockedAddress struct {
	IPAddress string
	Reason    string
	ExpiresAt *time.Time
	BlockedAt time.Time
}

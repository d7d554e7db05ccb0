// Package monitor is the adaptive abuse-control layer: blocked-address
// checks, heuristic request inspection, fixed-window rate limiting and
// automatic escalation from repeated critical events to address blocks.
package monitor

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"primex/api/internal/config"
	"primex/api/internal/models"
)

const blocklistChannel = "security:blocklist"

// EventStore persists security events and answers escalation queries.
type EventStore interface {
	Insert(ctx context.Context, event models.SecurityEvent) error
	CountCriticalSince(ctx context.Context, ipAddress string, since time.Time) (int, error)
}

// BlockStore persists the blocked-address list.
type BlockStore interface {
	Upsert(ctx context.Context, blocked models.BlockedAddress) error
	Delete(ctx context.Context, ipAddress string) error
	ListActive(ctx context.Context) ([]models.BlockedAddress, error)
}

type blockEntry struct {
	expiresAt *time.Time
}

func (e blockEntry) expired(now time.Time) bool {
	return e.expiresAt != nil && now.After(*e.expiresAt)
}

// Monitor is a single-instance service constructed at startup and
// injected into the middleware chain. Init loads the persisted block
// list into the in-memory mirror; there is no teardown beyond Close.
type Monitor struct {
	events EventStore
	blocks BlockStore
	rdb    *redis.Client
	cfg    config.MonitorConfig
	log    zerolog.Logger

	mu      sync.RWMutex
	blocked map[string]blockEntry
	closed  bool

	limiter *fixedWindowLimiter
	rules   []Rule

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(events EventStore, blocks BlockStore, rdb *redis.Client, cfg config.MonitorConfig, log zerolog.Logger) *Monitor {
	return &Monitor{
		events:  events,
		blocks:  blocks,
		rdb:     rdb,
		cfg:     cfg,
		log:     log.With().Str("component", "security_monitor").Logger(),
		blocked: make(map[string]blockEntry),
		limiter: newFixedWindowLimiter(),
		rules:   DefaultRules(),
	}
}

// Init loads unexpired persisted blocks into the mirror and, when a
// redis client is present, subscribes to block/unblock broadcasts from
// peer instances.
func (m *Monitor) Init(ctx context.Context) error {
	active, err := m.blocks.ListActive(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	for _, b := range active {
		m.blocked[b.IPAddress] = blockEntry{expiresAt: b.ExpiresAt}
	}
	m.mu.Unlock()

	if m.rdb != nil {
		subCtx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.wg.Add(1)
		go m.listenBlocklist(subCtx)
	}

	m.log.Info().Int("blocked_addresses", len(active)).Msg("security monitor initialized")
	return nil
}

func (m *Monitor) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// IsBlocked is an O(1) membership test against the mirror. Expired
// entries admit and are pruned lazily.
func (m *Monitor) IsBlocked(ipAddress string) bool {
	now := time.Now()

	m.mu.RLock()
	entry, ok := m.blocked[ipAddress]
	m.mu.RUnlock()

	if !ok {
		return false
	}
	if entry.expired(now) {
		m.mu.Lock()
		if curr, ok := m.blocked[ipAddress]; ok && curr.expired(now) {
			delete(m.blocked, ipAddress)
		}
		m.mu.Unlock()
		return false
	}
	return true
}

// Block persists the block, updates the mirror, notifies peers and
// records a blocked_ip event. ttl zero means permanent.
func (m *Monitor) Block(ctx context.Context, ipAddress string, reason string, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	blocked := models.BlockedAddress{
		IPAddress: ipAddress,
		Reason:    reason,
		ExpiresAt: expiresAt,
		BlockedAt: time.Now(),
	}

	if err := m.blocks.Upsert(ctx, blocked); err != nil {
		return err
	}

	m.mu.Lock()
	m.blocked[ipAddress] = blockEntry{expiresAt: expiresAt}
	m.mu.Unlock()

	m.publish(ctx, "block", ipAddress, expiresAt)

	m.LogEvent(models.SecurityEvent{
		EventType:   "blocked_ip",
		Severity:    models.SeverityHigh,
		IPAddress:   ipAddress,
		Description: reason,
	})

	return nil
}

// Unblock removes the address from the persisted list and the mirror.
func (m *Monitor) Unblock(ctx context.Context, ipAddress string) error {
	if err := m.blocks.Delete(ctx, ipAddress); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.blocked, ipAddress)
	m.mu.Unlock()

	m.publish(ctx, "unblock", ipAddress, nil)
	return nil
}

// LogEvent submits an event for persistence without blocking the
// caller. Failures are logged and swallowed; a critical event triggers
// the escalation check in the same background task. Events submitted
// after Close are dropped so the shutdown wait cannot race a late Add.
func (m *Monitor) LogEvent(event models.SecurityEvent) {
	if event.ID == "" {
		event.ID = ksuid.New().String()
	}
	if event.Severity == "" {
		event.Severity = models.SeverityMedium
	}
	event.CreatedAt = time.Now()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.events.Insert(ctx, event); err != nil {
			m.log.Error().Err(err).Str("event_type", event.EventType).Msg("persist security event failed")
			return
		}

		if event.Severity == models.SeverityCritical {
			m.escalate(ctx, event.IPAddress)
		}
	}()
}

// escalate blocks the address once enough critical events have
// accumulated inside the trailing escalation window.
func (m *Monitor) escalate(ctx context.Context, ipAddress string) {
	since := time.Now().Add(-m.cfg.EscalationWindow)
	count, err := m.events.CountCriticalSince(ctx, ipAddress, since)
	if err != nil {
		m.log.Error().Err(err).Str("ip", ipAddress).Msg("escalation count failed")
		return
	}

	if count < m.cfg.EscalationThreshold {
		return
	}

	if err := m.Block(ctx, ipAddress, "Automatic block: Multiple critical security events", m.cfg.AutoBlockTTL); err != nil {
		m.log.Error().Err(err).Str("ip", ipAddress).Msg("auto-block failed")
	}
}

// CheckRateLimit applies the fixed-window counter for one source
// address and endpoint. A denial records a rate_limit_exceeded event.
func (m *Monitor) CheckRateLimit(ipAddress string, endpoint string, class config.RateClass) Decision {
	key := ipAddress + ":" + endpoint
	decision := m.limiter.Allow(key, class.Limit, class.Window)

	if !decision.Allowed {
		m.LogEvent(models.SecurityEvent{
			EventType:   "rate_limit_exceeded",
			Severity:    models.SeverityMedium,
			IPAddress:   ipAddress,
			Endpoint:    endpoint,
			Description: "Rate limit exceeded: more than " + strconv.Itoa(class.Limit) + " requests in " + class.Window.String(),
		})
	}
	return decision
}

// Inspect runs the detection rules over the request summary. A match
// records a high-severity event but never blocks the request.
func (m *Monitor) Inspect(summary RequestSummary) bool {
	matched := matchRules(m.rules, summary)
	if len(matched) == 0 {
		return false
	}

	m.LogEvent(models.SecurityEvent{
		EventType:   "malformed_request",
		Severity:    models.SeverityHigh,
		IPAddress:   summary.IPAddress,
		UserAgent:   summary.UserAgent,
		Endpoint:    summary.Path,
		Description: strings.Join(matched, ", "),
		Metadata: map[string]any{
			"method": summary.Method,
			"query":  summary.Query,
		},
	})
	return true
}

// SweepRateLimits removes expired counters; wired to the periodic job.
func (m *Monitor) SweepRateLimits() {
	removed := m.limiter.Sweep()
	if removed > 0 {
		m.log.Debug().Int("removed", removed).Msg("rate limit counters swept")
	}
}

func (m *Monitor) publish(ctx context.Context, action string, ipAddress string, expiresAt *time.Time) {
	if m.rdb == nil {
		return
	}

	exp := int64(0)
	if expiresAt != nil {
		exp = expiresAt.Unix()
	}
	payload := action + " " + ipAddress + " " + strconv.FormatInt(exp, 10)

	if err := m.rdb.Publish(ctx, blocklistChannel, payload).Err(); err != nil {
		m.log.Warn().Err(err).Msg("blocklist publish failed")
	}
}

// listenBlocklist applies block/unblock broadcasts from peers to the
// local mirror only; persistence already happened at the sender.
func (m *Monitor) listenBlocklist(ctx context.Context) {
	defer m.wg.Done()

	sub := m.rdb.Subscribe(ctx, blocklistChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			m.applyBroadcast(msg.Payload)
		}
	}
}

func (m *Monitor) applyBroadcast(payload string) {
	fields := strings.Fields(payload)
	if len(fields) != 3 {
		m.log.Warn().Str("payload", payload).Msg("malformed blocklist broadcast")
		return
	}

	action, ipAddress := fields[0], fields[1]
	exp, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		m.log.Warn().Str("payload", payload).Msg("malformed blocklist expiry")
		return
	}

	switch action {
	case "block":
		var expiresAt *time.Time
		if exp > 0 {
			t := time.Unix(exp, 0)
			expiresAt = &t
		}
		m.mu.Lock()
		m.blocked[ipAddress] = blockEntry{expiresAt: expiresAt}
		m.mu.Unlock()
	case "unblock":
		m.mu.Lock()
		delete(m.blocked, ipAddress)
		m.mu.Unlock()
	default:
		m.log.Warn().Str("action", action).Msg("unknown blocklist action")
	}
}

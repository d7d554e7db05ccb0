package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"primex/api/internal/models"
)

const archiveBatchSize = 1000

// EventArchiveStore is the retention view of the security-event log.
type EventArchiveStore interface {
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.SecurityEvent, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ObjectPutter writes one archive object.
type ObjectPutter interface {
	Put(ctx context.Context, key string, data []byte) error
}

// RetentionService exports aged security events to the object store and
// removes them from the hot table.
type RetentionService struct {
	events    EventArchiveStore
	store     ObjectPutter
	retention time.Duration
	log       zerolog.Logger
}

func NewRetentionService(events EventArchiveStore, store ObjectPutter, retention time.Duration, log zerolog.Logger) *RetentionService {
	return &RetentionService{
		events:    events,
		store:     store,
		retention: retention,
		log:       log,
	}
}

// ArchiveExpired drains events older than the retention window in
// batches. Each batch becomes one JSON object; rows are deleted only
// after the object write succeeds.
func (s *RetentionService) ArchiveExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.retention)
	archived := 0

	for {
		events, err := s.events.ListOlderThan(ctx, cutoff, archiveBatchSize)
		if err != nil {
			return archived, fmt.Errorf("list aged events: %w", err)
		}
		if len(events) == 0 {
			return archived, nil
		}

		data, err := json.Marshal(events)
		if err != nil {
			return archived, fmt.Errorf("marshal archive batch: %w", err)
		}

		key := fmt.Sprintf("security-events/%s/%s.json",
			time.Now().UTC().Format("2006/01/02"), ksuid.New().String())
		if err := s.store.Put(ctx, key, data); err != nil {
			return archived, fmt.Errorf("write archive object: %w", err)
		}

		ids := make([]string, 0, len(events))
		for _, event := range events {
			ids = append(ids, event.ID)
		}
		if err := s.events.DeleteByIDs(ctx, ids); err != nil {
			return archived, fmt.Errorf("delete archived events: %w", err)
		}

		archived += len(events)
		s.log.Info().Int("count", len(events)).Str("object", key).Msg("security events archived")

		if len(events) < archiveBatchSize {
			return archived, nil
		}
	}
}

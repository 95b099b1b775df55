package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/models"
)

const (
	territoriesKey = "turf:territories"
	changeChannel  = "turf:territories:changed"
	changedPayload = "changed"
)

// RedisStore implements Store over a redis hash of territory documents
// plus a pub/sub channel announcing changes.
type RedisStore struct {
	rdb redis.UniversalClient
	log *zap.Logger
}

// NewRedisStore creates a redis-backed territory store.
func NewRedisStore(rdb redis.UniversalClient, log *zap.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, log: log}
}

// Create upserts the territory document and announces the change.
func (s *RedisStore) Create(ctx context.Context, t models.Territory) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal territory: %w", err)
	}
	if err := s.rdb.HSet(ctx, territoriesKey, t.ID, string(doc)).Err(); err != nil {
		return fmt.Errorf("failed to write territory %s: %w", t.ID, err)
	}
	return s.publish(ctx)
}

// UpdateOwners replaces the owners array of one territory document.
func (s *RedisStore) UpdateOwners(ctx context.Context, id string, owners []models.Owner) error {
	raw, err := s.rdb.HGet(ctx, territoriesKey, id).Result()
	if err == redis.Nil {
		return fmt.Errorf("territory %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read territory %s: %w", id, err)
	}

	var t models.Territory
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return fmt.Errorf("failed to unmarshal territory %s: %w", id, err)
	}
	t.Owners = owners

	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal territory %s: %w", id, err)
	}
	if err := s.rdb.HSet(ctx, territoriesKey, id, string(doc)).Err(); err != nil {
		return fmt.Errorf("failed to write territory %s: %w", id, err)
	}
	return s.publish(ctx)
}

// Delete removes one territory document.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.HDel(ctx, territoriesKey, id).Err(); err != nil {
		return fmt.Errorf("failed to delete territory %s: %w", id, err)
	}
	return s.publish(ctx)
}

// QueryByOwner returns territories in which ownerID currently holds a
// stake, ordered by creation time descending.
func (s *RedisStore) QueryByOwner(ctx context.Context, ownerID string) ([]models.Territory, error) {
	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.Territory
	for _, t := range all {
		if t.OwnerIndex(ownerID) >= 0 {
			out = append(out, t)
		}
	}
	return out, nil
}

// Subscribe emits the full snapshot immediately and after every change
// announcement until ctx is cancelled.
func (s *RedisStore) Subscribe(ctx context.Context) (<-chan []models.Territory, error) {
	sub := s.rdb.Subscribe(ctx, changeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to territory changes: %w", err)
	}

	out := make(chan []models.Territory, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		if snap, err := s.snapshot(ctx); err == nil {
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		} else {
			s.log.Warn("initial territory snapshot failed", zap.Error(err))
		}

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				snap, err := s.snapshot(ctx)
				if err != nil {
					s.log.Warn("territory snapshot failed", zap.Error(err))
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// snapshot reads every territory document, skipping ones that fail to
// decode, and sorts by creation time descending.
func (s *RedisStore) snapshot(ctx context.Context) ([]models.Territory, error) {
	docs, err := s.rdb.HGetAll(ctx, territoriesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read territories: %w", err)
	}

	out := make([]models.Territory, 0, len(docs))
	for id, raw := range docs {
		var t models.Territory
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			s.log.Warn("skipping malformed territory document", zap.String("territoryId", id), zap.Error(err))
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *RedisStore) publish(ctx context.Context) error {
	if err := s.rdb.Publish(ctx, changeChannel, changedPayload).Err(); err != nil {
		// The write itself succeeded; subscribers will converge on the
		// next announcement.
		s.log.Warn("failed to announce territory change", zap.Error(err))
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/vogiaan1904/ticketbottle-reservation/internal/errors"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/models"
	"github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

// HoldRepository is the hold store adapter. Holds are plain TTL-bounded keys;
// the store expires them on its own, so the repository never runs a reaper.
// A hold that cannot be read is gone, whatever the reason.
type HoldRepository interface {
	Create(ctx context.Context, h *models.Hold, ttl time.Duration) error
	ListLive(ctx context.Context, eventID, ticketType string) ([]models.Hold, error)
	Resolve(ctx context.Context, holdID string) (*models.Hold, error)
	RemainingTTL(ctx context.Context, holdID string) (time.Duration, error)
	Delete(ctx context.Context, h *models.Hold) error
}

type redisHoldRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisHoldRepository(cli *redis.Client, l logger.Logger) HoldRepository {
	return &redisHoldRepository{
		cli: cli,
		l:   l,
	}
}

// Create writes the hold under its natural key plus a ref key so the hold can
// later be resolved by bare ID. Both keys carry the same TTL and are written
// in one pipeline.
func (r *redisHoldRepository) Create(ctx context.Context, h *models.Hold, ttl time.Duration) error {
	key := r.holdKey(h.EventID, h.TicketType, h.ID)

	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal hold: %w", err)
	}

	pipe := r.cli.Pipeline()
	pipe.Set(ctx, key, data, ttl)
	pipe.Set(ctx, r.refKey(h.ID), key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisHoldRepository.Create: %v", err)
		return err
	}

	r.l.Debugf(ctx, "Hold created",
		"hold_id", h.ID,
		"event_id", h.EventID,
		"ticket_type", h.TicketType,
		"quantity", h.Quantity,
		"ttl", ttl,
	)

	return nil
}

// ListLive enumerates every live hold for one ticket type by prefix scan.
// Keys that expire between the scan and the read are skipped silently.
func (r *redisHoldRepository) ListLive(ctx context.Context, eventID, ticketType string) ([]models.Hold, error) {
	pattern := r.holdKey(eventID, ticketType, "*")

	var keys []string
	iter := r.cli.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.l.Errorf(ctx, "redisHoldRepository.ListLive: %v", err)
		return nil, err
	}

	if len(keys) == 0 {
		return nil, nil
	}

	pipe := r.cli.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		r.l.Errorf(ctx, "redisHoldRepository.ListLive: %v", err)
		return nil, err
	}

	holds := make([]models.Hold, 0, len(keys))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and read
			}
			r.l.Errorf(ctx, "redisHoldRepository.ListLive: %v", err)
			return nil, err
		}

		var h models.Hold
		if err := json.Unmarshal(data, &h); err != nil {
			r.l.Errorf(ctx, "redisHoldRepository.ListLive: %v", err)
			return nil, err
		}
		holds = append(holds, h)
	}

	return holds, nil
}

// Resolve looks a hold up by bare ID through the ref key. Returns
// ErrHoldNotFound when either the ref or the hold itself has expired.
func (r *redisHoldRepository) Resolve(ctx context.Context, holdID string) (*models.Hold, error) {
	key, err := r.cli.Get(ctx, r.refKey(holdID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.ErrHoldNotFound
		}
		r.l.Errorf(ctx, "redisHoldRepository.Resolve: %v", err)
		return nil, err
	}

	data, err := r.cli.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.ErrHoldNotFound
		}
		r.l.Errorf(ctx, "redisHoldRepository.Resolve: %v", err)
		return nil, err
	}

	var h models.Hold
	if err := json.Unmarshal(data, &h); err != nil {
		r.l.Errorf(ctx, "redisHoldRepository.Resolve: %v", err)
		return nil, err
	}

	return &h, nil
}

// RemainingTTL returns the time the hold still has to live, zero when the
// hold is gone. Reading never refreshes the TTL.
func (r *redisHoldRepository) RemainingTTL(ctx context.Context, holdID string) (time.Duration, error) {
	key, err := r.cli.Get(ctx, r.refKey(holdID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		r.l.Errorf(ctx, "redisHoldRepository.RemainingTTL: %v", err)
		return 0, err
	}

	ttl, err := r.cli.PTTL(ctx, key).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisHoldRepository.RemainingTTL: %v", err)
		return 0, err
	}

	// PTTL reports negative values for missing keys and keys without expiry.
	if ttl < 0 {
		return 0, nil
	}

	return ttl, nil
}

// Delete removes the hold and its ref key. Deleting an already-expired hold
// is a no-op, not an error.
func (r *redisHoldRepository) Delete(ctx context.Context, h *models.Hold) error {
	pipe := r.cli.Pipeline()
	pipe.Del(ctx, r.holdKey(h.EventID, h.TicketType, h.ID))
	pipe.Del(ctx, r.refKey(h.ID))

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisHoldRepository.Delete: %v", err)
		return err
	}

	r.l.Debugf(ctx, "Hold deleted", "hold_id", h.ID)

	return nil
}

func (r *redisHoldRepository) holdKey(eventID, ticketType, holdID string) string {
	return fmt.Sprintf("reservation:hold:%s:%s:%s", eventID, ticketType, holdID)
}

func (r *redisHoldRepository) refKey(holdID string) string {
	return fmt.Sprintf("reservation:holdref:%s", holdID)
}

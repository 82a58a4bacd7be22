package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	errs "github.com/vogiaan1904/ticketbottle-reservation/internal/errors"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/models"
	"github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

// InventoryRepository is the adapter over the event catalog's durable ticket
// type records. The engine never owns this data; it reads capacity/committed
// and issues single atomic increments of committed.
type InventoryRepository interface {
	GetTicketType(ctx context.Context, eventID, name string) (*models.TicketType, error)
	IncrementCommitted(ctx context.Context, eventID, name string, quantity int) (*models.TicketType, error)
}

type pgInventoryRepository struct {
	pool *pgxpool.Pool
	l    logger.Logger
}

func NewPgInventoryRepository(pool *pgxpool.Pool, l logger.Logger) InventoryRepository {
	return &pgInventoryRepository{
		pool: pool,
		l:    l,
	}
}

func (r *pgInventoryRepository) GetTicketType(ctx context.Context, eventID, name string) (*models.TicketType, error) {
	const query = `
SELECT event_id, name, capacity, committed
FROM ticket_types
WHERE event_id = $1 AND name = $2`

	var t models.TicketType
	err := r.pool.QueryRow(ctx, query, eventID, name).
		Scan(&t.EventID, &t.Name, &t.Capacity, &t.Committed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrTicketTypeNotFound
		}
		r.l.Errorf(ctx, "pgInventoryRepository.GetTicketType: %v", err)
		return nil, fmt.Errorf("get ticket type: %w", err)
	}

	return &t, nil
}

// IncrementCommitted performs the durable stock decrement as one atomic
// counter update, never a read-modify-write. The post-increment row is
// returned so the caller can observe an over-capacity state.
func (r *pgInventoryRepository) IncrementCommitted(ctx context.Context, eventID, name string, quantity int) (*models.TicketType, error) {
	const stmt = `
UPDATE ticket_types
SET committed = committed + $3
WHERE event_id = $1 AND name = $2
RETURNING event_id, name, capacity, committed`

	var t models.TicketType
	err := r.pool.QueryRow(ctx, stmt, eventID, name, quantity).
		Scan(&t.EventID, &t.Name, &t.Capacity, &t.Committed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrTicketTypeNotFound
		}
		r.l.Errorf(ctx, "pgInventoryRepository.IncrementCommitted: %v", err)
		return nil, fmt.Errorf("increment committed: %w", err)
	}

	r.l.Debugf(ctx, "Committed incremented",
		"event_id", eventID,
		"ticket_type", name,
		"quantity", quantity,
		"committed", t.Committed,
	)

	return &t, nil
}

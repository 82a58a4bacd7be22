package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vogiaan1904/ticketbottle-reservation/config"
	kafka "github.com/vogiaan1904/ticketbottle-reservation/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/delivery/kafka/producer"
	errs "github.com/vogiaan1904/ticketbottle-reservation/internal/errors"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/models"
	pgRepo "github.com/vogiaan1904/ticketbottle-reservation/internal/repository/postgres"
	redisRepo "github.com/vogiaan1904/ticketbottle-reservation/internal/repository/redis"
	pkgLog "github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

// ReservationService is the reservation manager: it grants TTL-bounded holds
// against virtual availability and converts them into durable stock
// decrements on confirmed payment. It keeps no in-process state; every
// operation coordinates through the hold store and the inventory store only.
type ReservationService interface {
	Reserve(ctx context.Context, in ReserveInput) (*ReserveOutput, error)
	RemainingTTL(ctx context.Context, holdID string) (int64, error)
	Cancel(ctx context.Context, holdID, reason string) error
	Commit(ctx context.Context, in CommitInput) (*CommitOutput, error)
	Availability(ctx context.Context, eventID, ticketType string) (*AvailabilityOutput, error)
}

type reservationService struct {
	holdRepo redisRepo.HoldRepository
	invRepo  pgRepo.InventoryRepository
	prod     producer.Producer
	conf     config.HoldConfig
	l        pkgLog.Logger
}

func NewReservationService(
	holdRepo redisRepo.HoldRepository,
	invRepo pgRepo.InventoryRepository,
	prod producer.Producer,
	conf config.HoldConfig,
	l pkgLog.Logger,
) ReservationService {
	return &reservationService{
		holdRepo: holdRepo,
		invRepo:  invRepo,
		prod:     prod,
		conf:     conf,
		l:        l,
	}
}

// Reserve grants a hold when virtual availability covers the requested
// quantity. The availability check and the hold write are deliberately not
// atomic: two concurrent calls can both pass the check and oversubscribe the
// hold layer. TTL expiry corrects that, and only Commit durably consumes
// capacity, so the window is accepted rather than locked away. The window is
// kept as small as practical: one enumeration, one write.
func (s *reservationService) Reserve(ctx context.Context, in ReserveInput) (*ReserveOutput, error) {
	if in.Quantity <= 0 {
		return nil, errs.ErrInvalidQuantity
	}

	tt, err := s.invRepo.GetTicketType(ctx, in.EventID, in.TicketType)
	if err != nil {
		if errors.Is(err, errs.ErrTicketTypeNotFound) {
			s.l.Warnf(ctx, "service.reservationService.Reserve: %v", err)
			return nil, err
		}
		s.l.Errorf(ctx, "service.reservationService.Reserve: %v", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	now := time.Now()

	holds, err := s.holdRepo.ListLive(ctx, in.EventID, in.TicketType)
	if err != nil {
		s.l.Errorf(ctx, "service.reservationService.Reserve: %v", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	// One pass: find the owner's existing hold and sum live quantities.
	var held int
	for i := range holds {
		h := &holds[i]
		if !h.IsLive(now) {
			continue
		}
		if h.OwnerID == in.OwnerID {
			// A double-clicked checkout retries into the same hold instead
			// of stacking competing claims against the owner's own intent.
			return &ReserveOutput{
				HoldID:     h.ID,
				TTLSeconds: ceilSeconds(h.RemainingTTL(now)),
				ExpiresAt:  h.ExpiresAt,
				Reused:     true,
			}, nil
		}
		held += h.Quantity
	}

	available := tt.Capacity - tt.Committed - held
	if available < in.Quantity {
		s.l.Infof(ctx, "Reserve rejected, out of stock - event_id: %s, ticket_type: %s, requested: %d, available: %d",
			in.EventID, in.TicketType, in.Quantity, available)
		return nil, errs.ErrOutOfStock
	}

	ttl := s.grantTTL(in.TTLSeconds)
	hold := &models.Hold{
		ID:         uuid.New().String(),
		EventID:    in.EventID,
		TicketType: in.TicketType,
		Quantity:   in.Quantity,
		OwnerID:    in.OwnerID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	if err := s.holdRepo.Create(ctx, hold, ttl); err != nil {
		s.l.Errorf(ctx, "service.reservationService.Reserve: %v", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	if err := s.prod.PublishHoldCreated(ctx, kafka.HoldCreatedEvent{
		HoldID:     hold.ID,
		EventID:    hold.EventID,
		TicketType: hold.TicketType,
		Quantity:   hold.Quantity,
		OwnerID:    hold.OwnerID,
		ExpiresAt:  hold.ExpiresAt,
	}); err != nil {
		s.l.Errorf(ctx, "service.reservationService.Reserve: %v", err)
	}

	return &ReserveOutput{
		HoldID:     hold.ID,
		TTLSeconds: ceilSeconds(ttl),
		ExpiresAt:  hold.ExpiresAt,
	}, nil
}

// RemainingTTL returns the seconds a hold still has to live, zero when it is
// gone. Expired and never-existed are indistinguishable on purpose: both mean
// the caller no longer holds the inventory.
func (s *reservationService) RemainingTTL(ctx context.Context, holdID string) (int64, error) {
	ttl, err := s.holdRepo.RemainingTTL(ctx, holdID)
	if err != nil {
		s.l.Errorf(ctx, "service.reservationService.RemainingTTL: %v", err)
		return 0, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	return ceilSeconds(ttl), nil
}

// Cancel is advisory cleanup. A hold that is already gone yields
// ErrHoldNotFound, which callers are free to ignore; correctness never
// depends on cancellation having happened.
func (s *reservationService) Cancel(ctx context.Context, holdID, reason string) error {
	h, err := s.holdRepo.Resolve(ctx, holdID)
	if err != nil {
		if errors.Is(err, errs.ErrHoldNotFound) {
			return err
		}
		s.l.Errorf(ctx, "service.reservationService.Cancel: %v", err)
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	if err := s.holdRepo.Delete(ctx, h); err != nil {
		s.l.Errorf(ctx, "service.reservationService.Cancel: %v", err)
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	if err := s.prod.PublishHoldCancelled(ctx, kafka.HoldCancelledEvent{
		HoldID:     h.ID,
		EventID:    h.EventID,
		TicketType: h.TicketType,
		Quantity:   h.Quantity,
		OwnerID:    h.OwnerID,
		Reason:     reason,
	}); err != nil {
		s.l.Errorf(ctx, "service.reservationService.Cancel: %v", err)
	}

	return nil
}

// Commit converts a hold into consumed inventory: one atomic increment of
// committed, then deletion of the hold. The hold's existence is the
// idempotency token - once deleted, a replayed commit fails ErrHoldNotFound
// instead of double-crediting, whatever delivery guarantees the payment
// collaborator does or does not have.
func (s *reservationService) Commit(ctx context.Context, in CommitInput) (*CommitOutput, error) {
	h, err := s.holdRepo.Resolve(ctx, in.HoldID)
	if err != nil {
		if errors.Is(err, errs.ErrHoldNotFound) {
			// A paying customer may be without inventory here. Surface it on
			// the audit topic; never swallow it.
			s.l.Errorf(ctx, "Commit failed, hold gone - hold_id: %s, transaction_id: %s", in.HoldID, in.TransactionID)
			if pubErr := s.prod.PublishCommitFailed(ctx, kafka.CommitFailedEvent{
				HoldID:        in.HoldID,
				TransactionID: in.TransactionID,
				Reason:        "hold_not_found",
			}); pubErr != nil {
				s.l.Errorf(ctx, "service.reservationService.Commit: %v", pubErr)
			}
			return nil, err
		}
		s.l.Errorf(ctx, "service.reservationService.Commit: %v", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	tt, err := s.invRepo.IncrementCommitted(ctx, h.EventID, h.TicketType, h.Quantity)
	if err != nil {
		if errors.Is(err, errs.ErrTicketTypeNotFound) {
			s.l.Errorf(ctx, "Commit failed, ticket type gone - hold_id: %s, event_id: %s, ticket_type: %s",
				h.ID, h.EventID, h.TicketType)
			if pubErr := s.prod.PublishCommitFailed(ctx, kafka.CommitFailedEvent{
				HoldID:        in.HoldID,
				TransactionID: in.TransactionID,
				Reason:        "ticket_type_not_found",
			}); pubErr != nil {
				s.l.Errorf(ctx, "service.reservationService.Commit: %v", pubErr)
			}
			return nil, err
		}
		s.l.Errorf(ctx, "service.reservationService.Commit: %v", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	if tt.Oversold() {
		// Capacity was edited downward while this hold was outstanding. The
		// increment is kept (the customer paid); operators reconcile.
		s.l.Errorf(ctx, "Committed exceeds capacity after commit - event_id: %s, ticket_type: %s, committed: %d, capacity: %d",
			tt.EventID, tt.Name, tt.Committed, tt.Capacity)
	}

	// A failed delete is safe to leave behind: the increment is durable and
	// the residual hold lapses by TTL, over-counting availability until then.
	if err := s.holdRepo.Delete(ctx, h); err != nil {
		s.l.Errorf(ctx, "service.reservationService.Commit: %v", err)
	}

	if err := s.prod.PublishHoldCommitted(ctx, kafka.HoldCommittedEvent{
		HoldID:        h.ID,
		EventID:       h.EventID,
		TicketType:    h.TicketType,
		Quantity:      h.Quantity,
		OwnerID:       h.OwnerID,
		Committed:     tt.Committed,
		TransactionID: in.TransactionID,
	}); err != nil {
		s.l.Errorf(ctx, "service.reservationService.Commit: %v", err)
	}

	return &CommitOutput{
		Committed:  true,
		HoldID:     h.ID,
		EventID:    h.EventID,
		TicketType: h.TicketType,
		Quantity:   h.Quantity,
	}, nil
}

// Availability reports the virtual view the reserve path computes: capacity
// minus committed minus live holds. A point-in-time estimate, not a promise.
func (s *reservationService) Availability(ctx context.Context, eventID, ticketType string) (*AvailabilityOutput, error) {
	tt, err := s.invRepo.GetTicketType(ctx, eventID, ticketType)
	if err != nil {
		if errors.Is(err, errs.ErrTicketTypeNotFound) {
			return nil, err
		}
		s.l.Errorf(ctx, "service.reservationService.Availability: %v", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	holds, err := s.holdRepo.ListLive(ctx, eventID, ticketType)
	if err != nil {
		s.l.Errorf(ctx, "service.reservationService.Availability: %v", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	now := time.Now()
	var held int
	for i := range holds {
		if holds[i].IsLive(now) {
			held += holds[i].Quantity
		}
	}

	available := tt.Capacity - tt.Committed - held
	if available < 0 {
		available = 0
	}

	return &AvailabilityOutput{
		EventID:    eventID,
		TicketType: ticketType,
		Capacity:   tt.Capacity,
		Committed:  tt.Committed,
		Held:       held,
		Available:  available,
	}, nil
}

// grantTTL normalizes the requested TTL: default when unset, capped at the
// configured maximum.
func (s *reservationService) grantTTL(requested int64) time.Duration {
	if requested <= 0 {
		return s.conf.DefaultTTL
	}

	ttl := time.Duration(requested) * time.Second
	if ttl > s.conf.MaxTTL {
		return s.conf.MaxTTL
	}

	return ttl
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}

	return int64((d + time.Second - 1) / time.Second)
}

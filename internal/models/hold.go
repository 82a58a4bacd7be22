package models

import "time"

// Hold is a provisional, time-limited claim on a number of tickets of one
// ticket type. It lives only in the hold store; expiry is enforced by the
// store's per-key TTL, so an absent hold is a terminal state, not an error.
type Hold struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	TicketType string    `json:"ticket_type"`
	Quantity   int       `json:"quantity"`
	OwnerID    string    `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RemainingTTL returns the time left before the hold lapses, floored at zero.
func (h *Hold) RemainingTTL(now time.Time) time.Duration {
	if h.ExpiresAt.IsZero() {
		return 0
	}

	remaining := h.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}

	return remaining
}

// IsLive reports whether the hold still counts against virtual availability.
func (h *Hold) IsLive(now time.Time) bool {
	return h.RemainingTTL(now) > 0
}

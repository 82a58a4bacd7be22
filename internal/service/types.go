package service

import "time"

type ReserveInput struct {
	EventID    string `json:"event_id" validate:"required"`
	TicketType string `json:"ticket_type" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	OwnerID    string `json:"owner_id" validate:"required"`
	TTLSeconds int64  `json:"ttl_seconds" validate:"gte=0"`
}

type ReserveOutput struct {
	HoldID     string    `json:"hold_id"`
	TTLSeconds int64     `json:"ttl_seconds"`
	ExpiresAt  time.Time `json:"expires_at"`
	Reused     bool      `json:"reused,omitempty"`
}

type CommitInput struct {
	HoldID        string `json:"hold_id" validate:"required"`
	TransactionID string `json:"transaction_id"`
}

type CommitOutput struct {
	Committed  bool   `json:"committed"`
	HoldID     string `json:"hold_id"`
	EventID    string `json:"event_id"`
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity"`
}

type AvailabilityOutput struct {
	EventID    string `json:"event_id"`
	TicketType string `json:"ticket_type"`
	Capacity   int    `json:"capacity"`
	Committed  int    `json:"committed"`
	Held       int    `json:"held"`
	Available  int    `json:"available"`
}

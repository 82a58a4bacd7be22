package kafka

import "time"

// Events published BY the Reservation Service

type HoldCreatedEvent struct {
	HoldID     string    `json:"hold_id"`
	EventID    string    `json:"event_id"`
	TicketType string    `json:"ticket_type"`
	Quantity   int       `json:"quantity"`
	OwnerID    string    `json:"owner_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	Timestamp  time.Time `json:"timestamp"`
}

type HoldCancelledEvent struct {
	HoldID     string    `json:"hold_id"`
	EventID    string    `json:"event_id"`
	TicketType string    `json:"ticket_type"`
	Quantity   int       `json:"quantity"`
	OwnerID    string    `json:"owner_id"`
	Reason     string    `json:"reason"` // client_cancelled, payment_failed
	Timestamp  time.Time `json:"timestamp"`
}

type HoldCommittedEvent struct {
	HoldID        string    `json:"hold_id"`
	EventID       string    `json:"event_id"`
	TicketType    string    `json:"ticket_type"`
	Quantity      int       `json:"quantity"`
	OwnerID       string    `json:"owner_id"`
	Committed     int       `json:"committed"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// CommitFailedEvent is the audit record for the dangerous case: payment was
// confirmed but the hold was already gone. A reconciliation process consumes
// this topic; the engine itself never swallows the mismatch.
type CommitFailedEvent struct {
	HoldID        string    `json:"hold_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// Events consumed BY the Reservation Service (from the Payment Service)

type PaymentCompletedEvent struct {
	TransactionID string    `json:"transaction_id"`
	HoldID        string    `json:"hold_id"`
	UserID        string    `json:"user_id"`
	EventID       string    `json:"event_id"`
	Timestamp     time.Time `json:"timestamp"`
}

type PaymentFailedEvent struct {
	TransactionID string    `json:"transaction_id"`
	HoldID        string    `json:"hold_id"`
	UserID        string    `json:"user_id"`
	EventID       string    `json:"event_id"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

package errors

import "errors"

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrTicketTypeNotFound = errors.New("ticket type not found for this event")
	ErrOutOfStock         = errors.New("not enough tickets available")
	ErrHoldNotFound       = errors.New("hold not found")
	ErrStoreUnavailable   = errors.New("backing store unavailable")
)

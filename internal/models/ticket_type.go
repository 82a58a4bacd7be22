package models

// TicketType is the durable inventory record for one sellable category of an
// event. Capacity is the total sellable amount, Committed the amount
// permanently sold. The record is owned by the event catalog; the engine only
// reads it and issues atomic increments of Committed.
type TicketType struct {
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Committed int    `json:"committed"`
}

// Unsold returns capacity not yet durably consumed. Live holds are not
// reflected here; subtract them to obtain virtual availability.
func (t *TicketType) Unsold() int {
	unsold := t.Capacity - t.Committed
	if unsold < 0 {
		return 0
	}

	return unsold
}

// Oversold reports whether committed inventory exceeds capacity. This can
// only happen when capacity was edited downward while sales were in flight.
func (t *TicketType) Oversold() bool {
	return t.Committed > t.Capacity
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHoldRemainingTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	h := &Hold{ExpiresAt: now.Add(10 * time.Minute)}
	assert.Equal(t, 10*time.Minute, h.RemainingTTL(now))
	assert.True(t, h.IsLive(now))

	assert.Equal(t, time.Duration(0), h.RemainingTTL(now.Add(11*time.Minute)))
	assert.False(t, h.IsLive(now.Add(11*time.Minute)))

	// A hold exactly at its deadline is no longer live.
	assert.False(t, h.IsLive(now.Add(10*time.Minute)))

	var zero Hold
	assert.Equal(t, time.Duration(0), zero.RemainingTTL(now))
}

func TestTicketTypeUnsold(t *testing.T) {
	tt := &TicketType{Capacity: 100, Committed: 30}
	assert.Equal(t, 70, tt.Unsold())
	assert.False(t, tt.Oversold())

	// Capacity edited below committed while sales were in flight.
	tt = &TicketType{Capacity: 20, Committed: 30}
	assert.Equal(t, 0, tt.Unsold())
	assert.True(t, tt.Oversold())
}

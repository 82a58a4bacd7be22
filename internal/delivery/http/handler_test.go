package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/vogiaan1904/ticketbottle-reservation/internal/errors"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/service"
	pkgLog "github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

// stubService returns canned results per operation.
type stubService struct {
	reserveOut *service.ReserveOutput
	reserveErr error

	ttl    int64
	ttlErr error

	cancelErr error

	commitOut *service.CommitOutput
	commitErr error

	availOut *service.AvailabilityOutput
	availErr error

	lastReserve service.ReserveInput
	lastCommit  service.CommitInput
}

func (s *stubService) Reserve(ctx context.Context, in service.ReserveInput) (*service.ReserveOutput, error) {
	s.lastReserve = in
	return s.reserveOut, s.reserveErr
}

func (s *stubService) RemainingTTL(ctx context.Context, holdID string) (int64, error) {
	return s.ttl, s.ttlErr
}

func (s *stubService) Cancel(ctx context.Context, holdID, reason string) error {
	return s.cancelErr
}

func (s *stubService) Commit(ctx context.Context, in service.CommitInput) (*service.CommitOutput, error) {
	s.lastCommit = in
	return s.commitOut, s.commitErr
}

func (s *stubService) Availability(ctx context.Context, eventID, ticketType string) (*service.AvailabilityOutput, error) {
	return s.availOut, s.availErr
}

func newTestServer(svc service.ReservationService) *httptest.Server {
	h := NewHTTPHandler(svc, pkgLog.InitializeTestZapLogger())
	return httptest.NewServer(h.Routes())
}

const reserveBody = `{"event_id":"event-1","ticket_type":"general","quantity":2,"owner_id":"user-1","ttl_seconds":600}`

func TestReserveEndpoint(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubService{reserveOut: &service.ReserveOutput{
			HoldID:     "hold-1",
			TTLSeconds: 600,
			ExpiresAt:  time.Now().Add(10 * time.Minute),
		}}
		srv := newTestServer(svc)
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/v1/reservations", "application/json", strings.NewReader(reserveBody))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var out service.ReserveOutput
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "hold-1", out.HoldID)
		assert.Equal(t, int64(600), out.TTLSeconds)

		assert.Equal(t, "event-1", svc.lastReserve.EventID)
		assert.Equal(t, 2, svc.lastReserve.Quantity)
	})

	t.Run("out of stock maps to 409", func(t *testing.T) {
		srv := newTestServer(&stubService{reserveErr: errs.ErrOutOfStock})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/v1/reservations", "application/json", strings.NewReader(reserveBody))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown ticket type maps to 404", func(t *testing.T) {
		srv := newTestServer(&stubService{reserveErr: errs.ErrTicketTypeNotFound})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/v1/reservations", "application/json", strings.NewReader(reserveBody))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("store down maps to 503", func(t *testing.T) {
		srv := newTestServer(&stubService{reserveErr: errs.ErrStoreUnavailable})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/v1/reservations", "application/json", strings.NewReader(reserveBody))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("validation failure maps to 400", func(t *testing.T) {
		srv := newTestServer(&stubService{})
		defer srv.Close()

		body := `{"event_id":"event-1","ticket_type":"general","quantity":0,"owner_id":"user-1"}`
		resp, err := http.Post(srv.URL+"/api/v1/reservations", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		srv := newTestServer(&stubService{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/v1/reservations", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRemainingTTLEndpoint(t *testing.T) {
	t.Run("missing hold is 200 with zero ttl", func(t *testing.T) {
		srv := newTestServer(&stubService{ttl: 0})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/v1/reservations/gone/ttl")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]int64
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, int64(0), out["ttl_seconds"])
	})

	t.Run("live hold reports seconds", func(t *testing.T) {
		srv := newTestServer(&stubService{ttl: 123})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/v1/reservations/hold-1/ttl")
		require.NoError(t, err)
		defer resp.Body.Close()

		var out map[string]int64
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, int64(123), out["ttl_seconds"])
	})
}

func TestCancelEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := newTestServer(&stubService{})
		defer srv.Close()

		req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/reservations/hold-1", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]bool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.True(t, out["success"])
	})

	t.Run("already gone maps to 404", func(t *testing.T) {
		srv := newTestServer(&stubService{cancelErr: errs.ErrHoldNotFound})
		defer srv.Close()

		req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/reservations/hold-1", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCommitEndpoint(t *testing.T) {
	t.Run("success carries transaction id", func(t *testing.T) {
		svc := &stubService{commitOut: &service.CommitOutput{
			Committed: true, HoldID: "hold-1", EventID: "event-1", TicketType: "general", Quantity: 2,
		}}
		srv := newTestServer(svc)
		defer srv.Close()

		body := strings.NewReader(`{"transaction_id":"txn-1"}`)
		resp, err := http.Post(srv.URL+"/internal/v1/reservations/hold-1/commit", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "hold-1", svc.lastCommit.HoldID)
		assert.Equal(t, "txn-1", svc.lastCommit.TransactionID)

		var out service.CommitOutput
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.True(t, out.Committed)
	})

	t.Run("empty body is accepted", func(t *testing.T) {
		svc := &stubService{commitOut: &service.CommitOutput{Committed: true}}
		srv := newTestServer(svc)
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/internal/v1/reservations/hold-1/commit", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("gone hold maps to 404", func(t *testing.T) {
		srv := newTestServer(&stubService{commitErr: errs.ErrHoldNotFound})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/internal/v1/reservations/hold-1/commit", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv := newTestServer(&stubService{availOut: &service.AvailabilityOutput{
		EventID: "event-1", TicketType: "general",
		Capacity: 100, Committed: 20, Held: 30, Available: 50,
	}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/events/event-1/ticket-types/general/availability")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out service.AvailabilityOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 50, out.Available)
	assert.Equal(t, 30, out.Held)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(&stubService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	errs "github.com/vogiaan1904/ticketbottle-reservation/internal/errors"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/service"
	"github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

type HTTPHandler struct {
	rsvSvc    service.ReservationService
	l         logger.Logger
	validator *validator.Validate
}

func NewHTTPHandler(rsvSvc service.ReservationService, l logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		rsvSvc:    rsvSvc,
		l:         l,
		validator: validator.New(),
	}
}

// Routes wires the public checkout surface and the internal commit surface.
// The internal prefix is shielded by the edge proxy, not by this service.
func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestLogger(h.l))

	r.Get("/healthz", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/reservations", h.Reserve)
		r.Get("/reservations/{holdId}/ttl", h.RemainingTTL)
		r.Delete("/reservations/{holdId}", h.Cancel)
		r.Get("/events/{eventId}/ticket-types/{name}/availability", h.Availability)
	})

	r.Route("/internal/v1", func(r chi.Router) {
		r.Post("/reservations/{holdId}/commit", h.Commit)
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "reservation-service",
	}
	h.respondJSON(w, http.StatusOK, response)
}

// Reserve handles hold creation requests
func (h *HTTPHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req service.ReserveInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	out, err := h.rsvSvc.Reserve(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidQuantity):
			h.respondError(w, http.StatusBadRequest, "Quantity must be greater than zero", err)
		case errors.Is(err, errs.ErrTicketTypeNotFound):
			h.respondError(w, http.StatusNotFound, "Event or ticket type not found", err)
		case errors.Is(err, errs.ErrOutOfStock):
			h.respondError(w, http.StatusConflict, "Not enough tickets available", err)
		case errors.Is(err, errs.ErrStoreUnavailable):
			h.respondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		default:
			h.l.Errorf(r.Context(), "delivery.http.Reserve: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to reserve tickets", err)
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, out)
}

// RemainingTTL reports seconds left on a hold. A missing hold is 0, never an
// error: expired and never-existed look the same to the caller.
func (h *HTTPHandler) RemainingTTL(w http.ResponseWriter, r *http.Request) {
	holdID := chi.URLParam(r, "holdId")
	if holdID == "" {
		h.respondError(w, http.StatusBadRequest, "Hold ID is required", nil)
		return
	}

	ttl, err := h.rsvSvc.RemainingTTL(r.Context(), holdID)
	if err != nil {
		if errors.Is(err, errs.ErrStoreUnavailable) {
			h.respondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
			return
		}
		h.l.Errorf(r.Context(), "delivery.http.RemainingTTL: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to read hold TTL", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"ttl_seconds": ttl})
}

// Cancel handles early hold release. 404 here is advisory; clients treat it
// as non-fatal since the hold may simply have expired already.
func (h *HTTPHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	holdID := chi.URLParam(r, "holdId")
	if holdID == "" {
		h.respondError(w, http.StatusBadRequest, "Hold ID is required", nil)
		return
	}

	if err := h.rsvSvc.Cancel(r.Context(), holdID, "client_cancelled"); err != nil {
		switch {
		case errors.Is(err, errs.ErrHoldNotFound):
			h.respondError(w, http.StatusNotFound, "Hold not found", err)
		case errors.Is(err, errs.ErrStoreUnavailable):
			h.respondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		default:
			h.l.Errorf(r.Context(), "delivery.http.Cancel: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to cancel hold", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Commit is called by the payment collaborator once payment is confirmed.
// A 404 means the hold is gone and the caller must NOT mark the purchase
// fulfilled; the mismatch is already on the audit topic by the time this
// response is written.
func (h *HTTPHandler) Commit(w http.ResponseWriter, r *http.Request) {
	holdID := chi.URLParam(r, "holdId")
	if holdID == "" {
		h.respondError(w, http.StatusBadRequest, "Hold ID is required", nil)
		return
	}

	var req commitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	out, err := h.rsvSvc.Commit(r.Context(), service.CommitInput{
		HoldID:        holdID,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrHoldNotFound):
			h.respondError(w, http.StatusNotFound, "Hold not found, payment must not be fulfilled", err)
		case errors.Is(err, errs.ErrTicketTypeNotFound):
			h.respondError(w, http.StatusNotFound, "Ticket type not found", err)
		case errors.Is(err, errs.ErrStoreUnavailable):
			h.respondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		default:
			h.l.Errorf(r.Context(), "delivery.http.Commit: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to commit hold", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, out)
}

// Availability exposes the virtual availability view for the storefront.
func (h *HTTPHandler) Availability(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	name := chi.URLParam(r, "name")
	if eventID == "" || name == "" {
		h.respondError(w, http.StatusBadRequest, "Event ID and ticket type are required", nil)
		return
	}

	out, err := h.rsvSvc.Availability(r.Context(), eventID, name)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrTicketTypeNotFound):
			h.respondError(w, http.StatusNotFound, "Event or ticket type not found", err)
		case errors.Is(err, errs.ErrStoreUnavailable):
			h.respondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		default:
			h.l.Errorf(r.Context(), "delivery.http.Availability: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to read availability", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, out)
}

type commitRequest struct {
	TransactionID string `json:"transaction_id"`
}

// Helper functions

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.l.Errorf(context.Background(), "delivery.http.respondJSON: %v", err)
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	response := map[string]any{
		"error": message,
		"code":  statusCode,
	}

	if err != nil {
		h.l.Debugf(context.Background(), "Error response - message: %s, error: %v", message, err)
	}

	h.respondJSON(w, statusCode, response)
}

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Fires concurrent checkout attempts at a running reservation service to
// observe how virtual availability behaves under contention. Expect some
// oversubscription at the hold layer; committed must never pass capacity.

var (
	baseURL      = flag.String("url", "http://localhost:8085", "Reservation service base URL")
	eventID      = flag.String("event", "", "Event ID (required)")
	ticketType   = flag.String("type", "general", "Ticket type name")
	numBuyers    = flag.Int("buyers", 200, "Number of concurrent buyers")
	maxQuantity  = flag.Int("max-qty", 4, "Maximum tickets per buyer")
	payRate      = flag.Float64("pay-rate", 0.6, "Probability a buyer completes payment")
	cancelRate   = flag.Float64("cancel-rate", 0.2, "Probability a buyer cancels explicitly (rest abandon)")
	ttlSeconds   = flag.Int("ttl", 30, "Hold TTL to request in seconds")
	rampInterval = flag.Duration("ramp", 5*time.Millisecond, "Delay between buyer starts")
)

type reserveRequest struct {
	EventID    string `json:"event_id"`
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity"`
	OwnerID    string `json:"owner_id"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

type reserveResponse struct {
	HoldID     string `json:"hold_id"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

func main() {
	flag.Parse()

	if *eventID == "" {
		fmt.Println("Error: --event flag is required")
		flag.Usage()
		os.Exit(1)
	}

	var reserved, soldOut, committed, cancelled, abandoned, failed int64

	cli := &http.Client{Timeout: 10 * time.Second}
	var wg sync.WaitGroup

	fmt.Printf("Starting %d buyers against %s (event=%s type=%s)\n", *numBuyers, *baseURL, *eventID, *ticketType)
	start := time.Now()

	for i := 0; i < *numBuyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			qty := rand.Intn(*maxQuantity) + 1
			holdID, status, err := reserve(cli, qty)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				return
			}
			if status == http.StatusConflict {
				atomic.AddInt64(&soldOut, 1)
				return
			}
			if status != http.StatusCreated {
				atomic.AddInt64(&failed, 1)
				return
			}
			atomic.AddInt64(&reserved, 1)

			// Simulate the think time between hold and payment.
			time.Sleep(time.Duration(rand.Intn(2000)) * time.Millisecond)

			r := rand.Float64()
			switch {
			case r < *payRate:
				if commit(cli, holdID) {
					atomic.AddInt64(&committed, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}
			case r < *payRate+*cancelRate:
				cancel(cli, holdID)
				atomic.AddInt64(&cancelled, 1)
			default:
				// Abandon: the TTL releases the capacity for us.
				atomic.AddInt64(&abandoned, 1)
			}
		}()

		time.Sleep(*rampInterval)
	}

	wg.Wait()

	fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  reserved:  %d\n", reserved)
	fmt.Printf("  sold out:  %d\n", soldOut)
	fmt.Printf("  committed: %d\n", committed)
	fmt.Printf("  cancelled: %d\n", cancelled)
	fmt.Printf("  abandoned: %d (capacity returns via TTL after %ds)\n", abandoned, *ttlSeconds)
	fmt.Printf("  failed:    %d\n", failed)
}

func reserve(cli *http.Client, qty int) (string, int, error) {
	body, _ := json.Marshal(reserveRequest{
		EventID:    *eventID,
		TicketType: *ticketType,
		Quantity:   qty,
		OwnerID:    uuid.New().String(),
		TTLSeconds: int64(*ttlSeconds),
	})

	resp, err := cli.Post(*baseURL+"/api/v1/reservations", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", resp.StatusCode, nil
	}

	var out reserveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", resp.StatusCode, err
	}

	return out.HoldID, resp.StatusCode, nil
}

func commit(cli *http.Client, holdID string) bool {
	req, _ := http.NewRequest(http.MethodPost, *baseURL+"/internal/v1/reservations/"+holdID+"/commit", nil)
	resp, err := cli.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func cancel(cli *http.Client, holdID string) {
	req, _ := http.NewRequest(http.MethodDelete, *baseURL+"/api/v1/reservations/"+holdID, nil)
	if resp, err := cli.Do(req); err == nil {
		resp.Body.Close()
	}
}

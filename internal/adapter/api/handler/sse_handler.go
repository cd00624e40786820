package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RateMessage is broadcast to every SSE client once per interval.
type RateMessage struct {
	Rate     float64 `json:"rate"`
	Accepted int64   `json:"accepted_total"`
}

// RateBroker counts accepted events and streams the ingest rate to SSE clients.
type RateBroker struct {
	logger   *slog.Logger
	interval time.Duration
	clients  map[chan []byte]struct{}
	mu       sync.RWMutex
	counter  chan int
}

// NewRateBroker creates a RateBroker and starts its processing loop, which
// runs until ctx is cancelled.
func NewRateBroker(ctx context.Context, logger *slog.Logger, interval time.Duration) *RateBroker {
	b := &RateBroker{
		logger:   logger.With("component", "rate_broker"),
		interval: interval,
		clients:  make(map[chan []byte]struct{}),
		counter:  make(chan int, 1000),
	}
	go b.run(ctx)
	return b
}

// ServeHTTP streams rate messages until the client goes away.
func (b *RateBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := make(chan []byte, 4)
	b.addClient(client)
	defer b.removeClient(client)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// ReportEvents records accepted events. It never blocks the ingest path;
// reports are dropped when the counter channel is full.
func (b *RateBroker) ReportEvents(count int) {
	select {
	case b.counter <- count:
	default:
		b.logger.Warn("rate counter channel is full, dropping report")
	}
}

// Clients returns the number of connected SSE clients.
func (b *RateBroker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *RateBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("SSE client connected", "clients", len(b.clients))
}

func (b *RateBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("SSE client disconnected", "clients", len(b.clients))
	}
}

func (b *RateBroker) broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			// slow client, skip this tick
		}
	}
}

func (b *RateBroker) run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	var window, total int64
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-b.counter:
			window += int64(n)
			total += int64(n)
		case now := <-ticker.C:
			rate := 0.0
			if elapsed := now.Sub(last).Seconds(); elapsed > 0 {
				rate = float64(window) / elapsed
			}
			data, err := json.Marshal(RateMessage{Rate: rate, Accepted: total})
			if err != nil {
				b.logger.Error("failed to marshal rate message", "error", err)
				continue
			}
			b.broadcast(data)
			last = now
			window = 0
		}
	}
}

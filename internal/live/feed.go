package live

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MessageTypeLiveGames tags a snapshot frame.
const MessageTypeLiveGames = "live_games"

// Message is the frame pushed to subscribers.
type Message struct {
	Type      string    `json:"type"`
	Games     []Game    `json:"games"`
	Timestamp time.Time `json:"timestamp"`
}

// Source produces the current live games.
type Source interface {
	LiveGames(ctx context.Context) ([]Game, error)
}

// Feed polls a Source on an interval and fans each successful snapshot out
// to every registered Client. A failed poll keeps the previous snapshot and
// broadcasts nothing.
type Feed struct {
	source   Source
	interval time.Duration
	logger   *slog.Logger

	// pollMu serializes Refresh so snapshots are stored and broadcast in
	// poll order.
	pollMu sync.Mutex

	mu      sync.RWMutex
	clients map[*Client]bool
	last    *Message

	polls    int64
	failures int64
}

// NewFeed creates a Feed. Nothing is polled until Run or Refresh.
func NewFeed(source Source, interval time.Duration, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		source:   source,
		interval: interval,
		logger:   logger,
		clients:  make(map[*Client]bool),
	}
}

// Run polls immediately and then on every tick until ctx is cancelled, at
// which point every subscriber is closed.
func (f *Feed) Run(ctx context.Context) {
	f.logger.Info("live feed started", "interval", f.interval)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			f.shutdown()
			return
		case <-ticker.C:
			f.Refresh(ctx)
		}
	}
}

// Refresh runs one poll and broadcasts the result when it succeeds.
func (f *Feed) Refresh(ctx context.Context) error {
	f.pollMu.Lock()
	defer f.pollMu.Unlock()

	games, err := f.source.LiveGames(ctx)

	f.mu.Lock()
	f.polls++
	if err != nil {
		f.failures++
		f.mu.Unlock()
		f.logger.Warn("live feed poll failed, keeping previous snapshot", "error", err)
		return err
	}
	msg := Message{Type: MessageTypeLiveGames, Games: games, Timestamp: time.Now().UTC()}
	f.last = &msg
	f.mu.Unlock()

	f.broadcast(msg)
	return nil
}

// Snapshot returns the last successful poll, or false before the first.
func (f *Feed) Snapshot() (Message, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.last == nil {
		return Message{}, false
	}
	return *f.last, true
}

// Register adds c and queues the last snapshot for it.
func (f *Feed) Register(c *Client) {
	f.mu.Lock()
	f.clients[c] = true
	if f.last != nil {
		c.trySend(*f.last)
	}
	total := len(f.clients)
	f.mu.Unlock()

	f.logger.Debug("live subscriber connected", "client", c.ID, "total", total)
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (f *Feed) Unregister(c *Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
		f.logger.Debug("live subscriber disconnected", "client", c.ID, "total", len(f.clients))
	}
}

// ClientCount returns the number of active subscribers.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Stats reports feed counters for the health endpoint.
func (f *Feed) Stats() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()
	stats := map[string]interface{}{
		"subscribers": len(f.clients),
		"polls":       f.polls,
		"failures":    f.failures,
	}
	if f.last != nil {
		stats["last_snapshot"] = f.last.Timestamp
		stats["live_games"] = len(f.last.Games)
	}
	return stats
}

func (f *Feed) broadcast(msg Message) {
	// Sends happen under the read lock so Unregister cannot close a
	// channel mid-send.
	var slow []*Client
	f.mu.RLock()
	for c := range f.clients {
		if !c.trySend(msg) {
			slow = append(slow, c)
		}
	}
	f.mu.RUnlock()

	for _, c := range slow {
		f.logger.Warn("live subscriber buffer full, disconnecting", "client", c.ID)
		f.Unregister(c)
	}
}

func (f *Feed) shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logger.Info("live feed stopping", "subscribers", len(f.clients))
	for c := range f.clients {
		close(c.send)
		delete(f.clients, c)
	}
}

// Package listener provides a Postgres LISTEN/NOTIFY consumer for catalogue
// change events. It holds a dedicated pgx connection (not from the pool)
// listening on the `catalogue_changed` channel.
//
// The ingest tool publishes an event after seeding players or minting cards,
// so a running API server can refresh its caches without a restart.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// Channel is the NOTIFY channel catalogue events are published on.
	Channel = "catalogue_changed"

	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Event sources.
const (
	SourceSeedPlayers = "seed_players"
	SourceSeedCards   = "seed_cards"
	SourceSync        = "sync"
)

// Event is the JSON payload of a catalogue_changed notification.
type Event struct {
	Source    string `json:"source"`
	UserID    string `json:"user_id,omitempty"`
	Count     int    `json:"count"`
	Timestamp int64  `json:"ts"`
}

// Handler processes a single event.
type Handler func(ctx context.Context, event Event)

// Decode parses a notification payload.
func Decode(payload string) (Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return Event{}, fmt.Errorf("decode %s payload: %w", Channel, err)
	}
	if event.Source == "" {
		return Event{}, fmt.Errorf("decode %s payload: missing source", Channel)
	}
	return event, nil
}

// Publish sends event on the catalogue channel. A zero Timestamp is
// stamped with the current time.
func Publish(ctx context.Context, pool *pgxpool.Pool, event Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, "SELECT pg_notify($1, $2)", Channel, string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", Channel, err)
	}
	return nil
}

// Start opens a dedicated connection and listens on the catalogue channel.
// It reconnects automatically on connection loss. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, handle Handler, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, handle, logger)
		if ctx.Err() != nil {
			logger.Info("Catalogue listener stopped (context cancelled)")
			return
		}

		logger.Error("Catalogue listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, handle Handler, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", Channel, err)
	}
	logger.Info("Catalogue listener connected", "channel", Channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		event, err := Decode(notification.Payload)
		if err != nil {
			logger.Warn("Failed to parse catalogue event",
				"payload", notification.Payload, "error", err)
			continue
		}

		logger.Info("Catalogue event received",
			"source", event.Source, "user_id", event.UserID, "count", event.Count)

		// Process asynchronously to avoid blocking the listener
		go handle(ctx, event)
	}
}

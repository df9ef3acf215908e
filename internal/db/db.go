// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema migration and health checking.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/pitchside/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Statements reference tables that only exist after migrate; the ingest
	// CLI connects with prepare disabled so it can create them.
	if !cfg.SkipPrepare {
		poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return registerPreparedStatements(ctx, conn)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "SELECT 1").Scan(&n)
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (p *Pool) Migrate(ctx context.Context) error {
	if _, err := p.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Statement names, shared with the store package.
const (
	StmtUserCards     = "user_cards"
	StmtPlayerByID    = "player_by_id"
	StmtUpsertUser    = "upsert_user"
	StmtUpsertTeam    = "upsert_team"
	StmtUpsertPlayer  = "upsert_player"
	StmtNextSerial    = "next_card_serial"
	StmtInsertCard    = "insert_card"
	StmtCreateSession = "create_session"
	StmtGetSession    = "get_session"
	StmtDeleteSession = "delete_session"
	StmtPurgeSessions = "purge_sessions"
	StmtUserByID      = "user_by_id"
)

// registerPreparedStatements registers all statements the API and ingestion
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Cards
		StmtUserCards: `
			SELECT c.id, c.user_id, c.player_id, c.rarity, c.serial_number, c.max_supply, c.acquired_at,
			       p.name, COALESCE(p.first_name, ''), COALESCE(p.last_name, ''), COALESCE(p.position, ''),
			       p.team_id, COALESCE(t.name, ''), COALESCE(t.short_name, ''), COALESCE(t.logo_url, ''),
			       COALESCE(p.photo_url, ''), p.total_points, p.now_cost::float8, p.updated_at
			FROM player_cards c
			JOIN players p ON p.id = c.player_id
			LEFT JOIN teams t ON t.id = p.team_id
			WHERE c.user_id = $1
			ORDER BY c.acquired_at DESC, c.serial_number`,
		StmtNextSerial: "SELECT COALESCE(MAX(serial_number), 0) + 1 FROM player_cards WHERE player_id = $1 AND rarity = $2",
		StmtInsertCard: `
			INSERT INTO player_cards (id, user_id, player_id, rarity, serial_number, max_supply)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING acquired_at`,

		// Players
		StmtPlayerByID: `
			SELECT p.id, p.name, COALESCE(p.first_name, ''), COALESCE(p.last_name, ''), COALESCE(p.position, ''),
			       p.team_id, COALESCE(t.name, ''), COALESCE(t.short_name, ''), COALESCE(t.logo_url, ''),
			       COALESCE(p.photo_url, ''), p.total_points, p.now_cost::float8, p.updated_at
			FROM players p
			LEFT JOIN teams t ON t.id = p.team_id
			WHERE p.id = $1`,
		StmtUpsertPlayer: `
			INSERT INTO players (id, name, first_name, last_name, position, team_id, photo_url, total_points, now_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				first_name = COALESCE(EXCLUDED.first_name, players.first_name),
				last_name = COALESCE(EXCLUDED.last_name, players.last_name),
				position = COALESCE(EXCLUDED.position, players.position),
				team_id = COALESCE(EXCLUDED.team_id, players.team_id),
				photo_url = COALESCE(EXCLUDED.photo_url, players.photo_url),
				total_points = EXCLUDED.total_points,
				now_cost = EXCLUDED.now_cost,
				updated_at = NOW()`,
		StmtUpsertTeam: `
			INSERT INTO teams (id, code, name, short_name, logo_url)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				code = EXCLUDED.code,
				name = EXCLUDED.name,
				short_name = EXCLUDED.short_name,
				logo_url = COALESCE(EXCLUDED.logo_url, teams.logo_url),
				updated_at = NOW()`,

		// Users
		StmtUpsertUser: `
			INSERT INTO users (id, email, first_name, last_name, profile_image_url)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				email = EXCLUDED.email,
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				profile_image_url = EXCLUDED.profile_image_url,
				updated_at = NOW()`,
		StmtUserByID: "SELECT id, COALESCE(email, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(profile_image_url, '') FROM users WHERE id = $1",

		// Sessions
		StmtCreateSession: "INSERT INTO sessions (sid, user_id, expires_at) VALUES ($1, $2, $3)",
		StmtGetSession:    "SELECT sid, user_id, expires_at FROM sessions WHERE sid = $1 AND expires_at > NOW()",
		StmtDeleteSession: "DELETE FROM sessions WHERE sid = $1",
		StmtPurgeSessions: "DELETE FROM sessions WHERE expires_at <= NOW()",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}

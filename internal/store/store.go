// Package store is the relational repository for users, players, teams,
// owned cards and login sessions, backed by Postgres through pgxpool.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/pitchside/internal/cards"
	"github.com/albapepper/pitchside/internal/db"
)

var (
	// ErrSupplyExhausted is returned by MintCard when every serial of a
	// player/rarity pair is taken.
	ErrSupplyExhausted = errors.New("card supply exhausted")
	// ErrSerialTaken is returned when a concurrent mint claimed the serial.
	ErrSerialTaken = errors.New("card serial already minted")
)

// User is an authenticated identity.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Team is a club row.
type Team struct {
	ID        int
	Code      int
	Name      string
	ShortName string
	LogoURL   string
}

// Session is a login session row.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// Repository is everything the API reads and writes.
type Repository interface {
	Ping(ctx context.Context) error
	GetUserCards(ctx context.Context, userID string) ([]cards.Card, error)
	// GetPlayer returns nil, nil when no player has the id.
	GetPlayer(ctx context.Context, id int) (*cards.Player, error)
	UpsertUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (*User, error)
	UpsertTeam(ctx context.Context, t Team) error
	UpsertPlayer(ctx context.Context, p cards.Player) error
	MintCard(ctx context.Context, userID string, playerID int, rarity cards.Rarity, maxSupply int) (*cards.Card, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	// GetSession returns nil, nil for unknown or expired sessions.
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// DB is the part of *pgxpool.Pool the repository uses.
type DB interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// Postgres implements Repository and SessionStore.
type Postgres struct {
	pool DB
}

// NewPostgres wraps a pool whose connections have the db package's
// prepared statements registered.
func NewPostgres(pool DB) *Postgres {
	return &Postgres{pool: pool}
}

var (
	_ Repository   = (*Postgres)(nil)
	_ SessionStore = (*Postgres)(nil)
)

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --------------------------------------------------------------------------
// Cards
// --------------------------------------------------------------------------

func (s *Postgres) GetUserCards(ctx context.Context, userID string) ([]cards.Card, error) {
	rows, err := s.pool.Query(ctx, db.StmtUserCards, userID)
	if err != nil {
		return nil, fmt.Errorf("query user cards: %w", err)
	}
	defer rows.Close()

	out := []cards.Card{}
	for rows.Next() {
		var (
			c      cards.Card
			p      cards.Player
			id     pgtype.UUID
			rarity string
		)
		if err := rows.Scan(
			&id, &c.UserID, &c.PlayerID, &rarity, &c.SerialNumber, &c.MaxSupply, &c.AcquiredAt,
			&p.Name, &p.FirstName, &p.LastName, &p.Position,
			&p.TeamID, &p.TeamName, &p.TeamShortName, &p.ClubLogoURL,
			&p.PhotoURL, &p.TotalPoints, &p.NowCost, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.ID = uuid.UUID(id.Bytes)
		c.Rarity = cards.ParseRarity(rarity)
		p.ID = c.PlayerID
		c.Player = &p
		out = append(out, c)
	}
	return out, rows.Err()
}

// MintCard gives userID the next free serial of playerID at rarity.
func (s *Postgres) MintCard(ctx context.Context, userID string, playerID int, rarity cards.Rarity, maxSupply int) (*cards.Card, error) {
	if !rarity.Valid() {
		return nil, fmt.Errorf("invalid rarity %q", rarity)
	}

	var serial int
	if err := s.pool.QueryRow(ctx, db.StmtNextSerial, playerID, string(rarity)).Scan(&serial); err != nil {
		return nil, fmt.Errorf("next serial: %w", err)
	}
	if serial > maxSupply {
		return nil, ErrSupplyExhausted
	}

	c := cards.Card{
		ID:           uuid.New(),
		UserID:       userID,
		PlayerID:     playerID,
		Rarity:       rarity,
		SerialNumber: serial,
		MaxSupply:    maxSupply,
	}
	err := s.pool.QueryRow(ctx, db.StmtInsertCard,
		pgtype.UUID{Bytes: c.ID, Valid: true}, userID, playerID, string(rarity), serial, maxSupply,
	).Scan(&c.AcquiredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSerialTaken
		}
		return nil, fmt.Errorf("insert card: %w", err)
	}
	return &c, nil
}

// --------------------------------------------------------------------------
// Players & teams
// --------------------------------------------------------------------------

func (s *Postgres) GetPlayer(ctx context.Context, id int) (*cards.Player, error) {
	var p cards.Player
	err := s.pool.QueryRow(ctx, db.StmtPlayerByID, id).Scan(
		&p.ID, &p.Name, &p.FirstName, &p.LastName, &p.Position,
		&p.TeamID, &p.TeamName, &p.TeamShortName, &p.ClubLogoURL,
		&p.PhotoURL, &p.TotalPoints, &p.NowCost, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player %d: %w", id, err)
	}
	return &p, nil
}

func (s *Postgres) UpsertPlayer(ctx context.Context, p cards.Player) error {
	_, err := s.pool.Exec(ctx, db.StmtUpsertPlayer,
		p.ID, p.Name, nilEmpty(p.FirstName), nilEmpty(p.LastName), nilEmpty(p.Position),
		p.TeamID, nilEmpty(p.PhotoURL), p.TotalPoints, p.NowCost,
	)
	if err != nil {
		return fmt.Errorf("upsert player %d: %w", p.ID, err)
	}
	return nil
}

func (s *Postgres) UpsertTeam(ctx context.Context, t Team) error {
	_, err := s.pool.Exec(ctx, db.StmtUpsertTeam,
		t.ID, t.Code, t.Name, nilEmpty(t.ShortName), nilEmpty(t.LogoURL),
	)
	if err != nil {
		return fmt.Errorf("upsert team %d: %w", t.ID, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

func (s *Postgres) UpsertUser(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx, db.StmtUpsertUser,
		u.ID, nilEmpty(u.Email), nilEmpty(u.FirstName), nilEmpty(u.LastName), nilEmpty(u.ProfileImageURL),
	)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}

func (s *Postgres) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, db.StmtUserByID, id).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// --------------------------------------------------------------------------
// Sessions
// --------------------------------------------------------------------------

func (s *Postgres) CreateSession(ctx context.Context, sess Session) error {
	if _, err := s.pool.Exec(ctx, db.StmtCreateSession, sess.ID, sess.UserID, sess.ExpiresAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Postgres) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, db.StmtGetSession, id).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *Postgres) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, db.StmtDeleteSession, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Postgres) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, db.StmtPurgeSessions)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

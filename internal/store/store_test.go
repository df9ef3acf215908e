package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/albapepper/pitchside/internal/cards"
	"github.com/albapepper/pitchside/internal/db"
	"github.com/albapepper/pitchside/internal/store"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *store.Postgres) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock, store.NewPostgres(mock)
}

var playerColumns = []string{
	"id", "name", "first_name", "last_name", "position",
	"team_id", "team_name", "team_short_name", "logo_url",
	"photo_url", "total_points", "now_cost", "updated_at",
}

// --------------------------------------------------------------------------
// Missing rows
// --------------------------------------------------------------------------

func TestMissingRowsAreNil(t *testing.T) {
	ctx := context.Background()

	t.Run("player", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(db.StmtPlayerByID).WithArgs(99).WillReturnError(pgx.ErrNoRows)
		p, err := s.GetPlayer(ctx, 99)
		if err != nil || p != nil {
			t.Errorf("GetPlayer = %+v, %v; want nil, nil", p, err)
		}
	})

	t.Run("user", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(db.StmtUserByID).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)
		u, err := s.GetUser(ctx, "ghost")
		if err != nil || u != nil {
			t.Errorf("GetUser = %+v, %v; want nil, nil", u, err)
		}
	})

	t.Run("session", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(db.StmtGetSession).WithArgs("gone").WillReturnError(pgx.ErrNoRows)
		sess, err := s.GetSession(ctx, "gone")
		if err != nil || sess != nil {
			t.Errorf("GetSession = %+v, %v; want nil, nil", sess, err)
		}
	})
}

func TestGetPlayer_QueryErrorIsWrapped(t *testing.T) {
	mock, s := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(db.StmtPlayerByID).WithArgs(7).WillReturnError(boom)

	p, err := s.GetPlayer(context.Background(), 7)
	if !errors.Is(err, boom) || p != nil {
		t.Errorf("GetPlayer = %+v, %v; want wrapped %v", p, err, boom)
	}
}

func TestGetPlayer_Found(t *testing.T) {
	mock, s := newMock(t)
	teamID := 1
	updated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(db.StmtPlayerByID).WithArgs(7).WillReturnRows(
		pgxmock.NewRows(playerColumns).AddRow(
			7, "Bukayo Saka", "Bukayo", "Saka", "MID",
			&teamID, "Arsenal", "ARS", "https://example.test/t3.png",
			"", 180, 10.1, updated,
		))

	p, err := s.GetPlayer(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if p.Name != "Bukayo Saka" || p.TeamShortName != "ARS" || p.TeamID == nil || *p.TeamID != 1 {
		t.Errorf("player = %+v", p)
	}
	if p.TotalPoints != 180 || !p.UpdatedAt.Equal(updated) {
		t.Errorf("points/updated = %d %s", p.TotalPoints, p.UpdatedAt)
	}
}

// --------------------------------------------------------------------------
// Minting
// --------------------------------------------------------------------------

func TestMintCard(t *testing.T) {
	ctx := context.Background()

	t.Run("next free serial", func(t *testing.T) {
		mock, s := newMock(t)
		acquired := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
		mock.ExpectQuery(db.StmtNextSerial).WithArgs(7, "rare").
			WillReturnRows(pgxmock.NewRows([]string{"serial"}).AddRow(4))
		mock.ExpectQuery(db.StmtInsertCard).WithArgs(pgxmock.AnyArg(), "u1", 7, "rare", 4, 100).
			WillReturnRows(pgxmock.NewRows([]string{"acquired_at"}).AddRow(acquired))

		c, err := s.MintCard(ctx, "u1", 7, cards.Rare, 100)
		if err != nil {
			t.Fatalf("MintCard: %v", err)
		}
		if c.SerialNumber != 4 || c.MaxSupply != 100 || c.UserID != "u1" || !c.AcquiredAt.Equal(acquired) {
			t.Errorf("card = %+v", c)
		}
	})

	t.Run("supply exhausted", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(db.StmtNextSerial).WithArgs(7, "legendary").
			WillReturnRows(pgxmock.NewRows([]string{"serial"}).AddRow(2))

		// No insert is expected once the cap is passed.
		if _, err := s.MintCard(ctx, "u1", 7, cards.Legendary, 1); !errors.Is(err, store.ErrSupplyExhausted) {
			t.Errorf("err = %v, want ErrSupplyExhausted", err)
		}
	})

	t.Run("last serial still mints", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(db.StmtNextSerial).WithArgs(7, "unique").
			WillReturnRows(pgxmock.NewRows([]string{"serial"}).AddRow(10))
		mock.ExpectQuery(db.StmtInsertCard).WithArgs(pgxmock.AnyArg(), "u1", 7, "unique", 10, 10).
			WillReturnRows(pgxmock.NewRows([]string{"acquired_at"}).AddRow(time.Now()))

		if _, err := s.MintCard(ctx, "u1", 7, cards.Unique, 10); err != nil {
			t.Errorf("MintCard at cap: %v", err)
		}
	})

	t.Run("serial taken concurrently", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(db.StmtNextSerial).WithArgs(7, "common").
			WillReturnRows(pgxmock.NewRows([]string{"serial"}).AddRow(1))
		mock.ExpectQuery(db.StmtInsertCard).WithArgs(pgxmock.AnyArg(), "u1", 7, "common", 1, 1000).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

		if _, err := s.MintCard(ctx, "u1", 7, cards.Common, 1000); !errors.Is(err, store.ErrSerialTaken) {
			t.Errorf("err = %v, want ErrSerialTaken", err)
		}
	})

	t.Run("invalid rarity touches nothing", func(t *testing.T) {
		_, s := newMock(t)
		if _, err := s.MintCard(ctx, "u1", 7, cards.Rarity("mythic"), 10); err == nil {
			t.Error("want error for invalid rarity")
		}
	})
}

// --------------------------------------------------------------------------
// Sessions
// --------------------------------------------------------------------------

func TestPurgeExpiredSessions(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectExec(db.StmtPurgeSessions).WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.PurgeExpiredSessions(context.Background())
	if err != nil || n != 3 {
		t.Errorf("PurgeExpiredSessions = %d, %v; want 3, nil", n, err)
	}
}

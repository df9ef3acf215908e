package seed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/albapepper/pitchside/internal/cards"
	"github.com/albapepper/pitchside/internal/provider/fpl"
	"github.com/albapepper/pitchside/internal/store"
)

const badgeBaseURL = "https://resources.premierleague.com/premierleague/badges/70/t"

// Catalogue is the repository slice seeding writes through.
type Catalogue interface {
	UpsertTeam(ctx context.Context, t store.Team) error
	UpsertPlayer(ctx context.Context, p cards.Player) error
	MintCard(ctx context.Context, userID string, playerID int, rarity cards.Rarity, maxSupply int) (*cards.Card, error)
}

// SeedPlayers upserts every team and player of the bootstrap. Teams go
// first so player rows can reference them. Row failures are collected and
// do not stop the run.
func SeedPlayers(ctx context.Context, repo Catalogue, boot *fpl.Bootstrap, logger *slog.Logger) SeedResult {
	var result SeedResult

	logger.Info("Phase 1/2: Seeding teams...", "count", len(boot.Teams))
	for _, t := range boot.Teams {
		if err := repo.UpsertTeam(ctx, TeamRow(t)); err != nil {
			result.AddErrorf("upsert team %d: %v", t.ID, err)
			continue
		}
		result.TeamsUpserted++
	}

	logger.Info("Phase 2/2: Seeding players...", "count", len(boot.Elements))
	teams := boot.TeamIndex()
	for _, p := range boot.Players() {
		if ctx.Err() != nil {
			result.AddErrorf("cancelled: %v", ctx.Err())
			break
		}
		if err := repo.UpsertPlayer(ctx, PlayerRow(p, teams[p.Team])); err != nil {
			result.AddErrorf("upsert player %d: %v", p.ID, err)
			continue
		}
		result.PlayersUpserted++
	}
	return result
}

// TeamRow maps an FPL team onto the teams table.
func TeamRow(t fpl.Team) store.Team {
	return store.Team{
		ID:        t.ID,
		Code:      t.Code,
		Name:      t.Name,
		ShortName: t.ShortName,
		LogoURL:   badgeURL(t.Code),
	}
}

// PlayerRow maps an enriched FPL player onto the players table.
func PlayerRow(p fpl.Player, team fpl.Team) cards.Player {
	row := cards.Player{
		ID:            p.ID,
		Name:          strings.TrimSpace(p.FirstName + " " + p.SecondName),
		FirstName:     p.FirstName,
		LastName:      p.SecondName,
		Position:      p.PositionShort,
		TeamName:      p.TeamName,
		TeamShortName: p.TeamShortName,
		PhotoURL:      p.PhotoURL,
		ClubLogoURL:   badgeURL(team.Code),
		TotalPoints:   p.TotalPoints,
		NowCost:       p.NowCost,
	}
	if p.Team != 0 {
		id := p.Team
		row.TeamID = &id
	}
	return row
}

func badgeURL(code int) string {
	if code == 0 {
		return ""
	}
	return fmt.Sprintf("%s%d.png", badgeBaseURL, code)
}

// SeedCards mints one card of rarity for each of the count highest-scoring
// players. maxSupply <= 0 uses the tier default. A player whose supply is
// exhausted is skipped.
func SeedCards(ctx context.Context, repo Catalogue, userID string, players []fpl.Player, count int, rarity cards.Rarity, maxSupply int, logger *slog.Logger) SeedResult {
	var result SeedResult
	if maxSupply <= 0 {
		maxSupply = cards.DefaultMaxSupply(rarity)
	}

	ranked := make([]fpl.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TotalPoints > ranked[j].TotalPoints })

	for _, p := range ranked {
		if result.CardsMinted >= count {
			break
		}
		c, err := repo.MintCard(ctx, userID, p.ID, rarity, maxSupply)
		if err != nil {
			result.AddErrorf("mint %s card for player %d: %v", rarity, p.ID, err)
			continue
		}
		result.CardsMinted++
		logger.Debug("Minted card", "player_id", p.ID, "rarity", rarity, "serial", c.SerialNumber)
	}
	return result
}

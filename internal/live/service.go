package live

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/pitchside/internal/provider/fpl"
)

// Upstream is the slice of the FPL client the live view reads.
type Upstream interface {
	Bootstrap(ctx context.Context) (*fpl.Bootstrap, error)
	Fixtures(ctx context.Context) ([]fpl.Fixture, error)
	EventLive(ctx context.Context, event int) (*fpl.EventLive, error)
}

// Service builds the current live games from FPL.
type Service struct {
	upstream Upstream
}

func NewService(upstream Upstream) *Service {
	return &Service{upstream: upstream}
}

// LiveGames fetches bootstrap and fixtures concurrently, then the current
// gameweek's live payload, and builds the games. The live payload is only
// requested when some fixture is in play.
func (s *Service) LiveGames(ctx context.Context) ([]Game, error) {
	var (
		boot     *fpl.Bootstrap
		fixtures []fpl.Fixture
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.upstream.Bootstrap(gctx)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		boot = b
		return nil
	})
	g.Go(func() error {
		f, err := s.upstream.Fixtures(gctx)
		if err != nil {
			return fmt.Errorf("fixtures: %w", err)
		}
		fixtures = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var elements []fpl.LiveElement
	if anyLive(fixtures) {
		if ev, ok := boot.CurrentEvent(); ok {
			payload, err := s.upstream.EventLive(ctx, ev.ID)
			if err != nil {
				return nil, fmt.Errorf("event %d live: %w", ev.ID, err)
			}
			elements = payload.Elements
		}
	}

	return Build(fixtures, boot.Teams, elements), nil
}

func anyLive(fixtures []fpl.Fixture) bool {
	for _, f := range fixtures {
		if f.IsLive() {
			return true
		}
	}
	return false
}

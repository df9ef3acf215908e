// Package sorare looks up football players on the Sorare GraphQL API.
//
// Players are addressed by slug ("first-last"). An API key is optional and
// only raises the upstream rate limit.
package sorare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/albapepper/pitchside/internal/cache"
)

// DefaultURL is the Sorare federation GraphQL endpoint.
const DefaultURL = "https://api.sorare.com/graphql"

const playerQuery = `query PlayerBySlug($slug: String!) {
  football {
    player(slug: $slug) {
      slug
      displayName
      firstName
      lastName
      position
      age
      shirtNumber
      pictureUrl
      country { code name }
      activeClub { slug name pictureUrl }
    }
  }
}`

// Player is the subset of a Sorare player the card views use.
type Player struct {
	Slug        string  `json:"slug"`
	DisplayName string  `json:"displayName"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Position    string  `json:"position"`
	Age         *int    `json:"age"`
	ShirtNumber *int    `json:"shirtNumber"`
	PictureURL  *string `json:"pictureUrl"`
	Country     *struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"country"`
	ActiveClub *struct {
		Slug       string  `json:"slug"`
		Name       string  `json:"name"`
		PictureURL *string `json:"pictureUrl"`
	} `json:"activeClub"`
}

// Client is the Sorare HTTP client.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	limiter    *rate.Limiter
	cache      cache.Store
	logger     *slog.Logger
}

// NewClient creates a Sorare client. apiKey may be empty; store may be nil.
func NewClient(url, apiKey string, requestsPerMinute int, store cache.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if url == "" {
		url = DefaultURL
	}
	if store == nil {
		store = cache.NewMemory(false)
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		url:        url,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cache:      store,
		logger:     logger,
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]+`)
var slugDashes = regexp.MustCompile(`-{2,}`)

// Slug builds the Sorare player slug for a name pair. Accents are folded
// ("Rúben" → "ruben"); letters with no ASCII decomposition are dropped.
func Slug(firstName, lastName string) string {
	s := strings.ToLower(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if folded, _, err := transform.String(foldAccents(), s); err == nil {
		s = folded
	}
	s = strings.Join(strings.Fields(s), "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Football struct {
			Player *Player `json:"player"`
		} `json:"football"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FindPlayer fetches a player by first and last name. It returns nil, nil
// when Sorare has no such player.
func (c *Client) FindPlayer(ctx context.Context, firstName, lastName string) (*Player, error) {
	slug := Slug(firstName, lastName)
	if slug == "" {
		return nil, nil
	}

	key := "sorare:player:" + slug
	if data, _, ok := c.cache.Get(ctx, key); ok {
		return decodeCached(data)
	}

	player, err := c.queryPlayer(ctx, slug)
	if err != nil {
		return nil, err
	}

	// Misses are cached too; "null" decodes back to nil.
	data, err := json.Marshal(player)
	if err != nil {
		c.logger.Warn("Sorare player not cached", "slug", slug, "error", err)
		return player, nil
	}
	c.cache.Set(ctx, key, data, cache.TTLSorare)
	return player, nil
}

func decodeCached(data []byte) (*Player, error) {
	var p *Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode cached player: %w", err)
	}
	return p, nil
}

func (c *Client) queryPlayer(ctx context.Context, slug string) (*Player, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(graphQLRequest{
		Query:     playerQuery,
		Variables: map[string]interface{}{"slug": slug},
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request sorare: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Sorare returned %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var result graphQLResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Data.Football.Player == nil && len(result.Errors) > 0 {
		if isNotFound(result.Errors[0].Message) {
			return nil, nil
		}
		return nil, fmt.Errorf("sorare graphql: %s", result.Errors[0].Message)
	}

	c.logger.Debug("Sorare player lookup", "slug", slug, "found", result.Data.Football.Player != nil)
	return result.Data.Football.Player, nil
}

func isNotFound(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "couldn't find")
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

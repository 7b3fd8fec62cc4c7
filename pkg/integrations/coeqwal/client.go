package coeqwal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/integrations"
)

// DefaultBaseURL is the public COEQWAL API root.
const DefaultBaseURL = "https://api.coeqwal.org/api"

// DefaultGeoScenario is the scenario whose tier map the geo endpoint serves.
const DefaultGeoScenario = "s0020"

// Client talks to the COEQWAL API. It is safe for concurrent use once
// configured.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger

	// Refresh bypasses cached responses.
	Refresh bool
}

// NewClient creates a client caching responses in backend for cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": "tierviz/1.0 (https://github.com/matzehuels/tierviz)",
	}
	return &Client{
		Client:  integrations.NewClient(backend, "coeqwal", cacheTTL, headers),
		baseURL: DefaultBaseURL,
		logger:  log.Default(),
	}
}

// SetBaseURL points the client at another API root.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// BaseURL returns the API root in use.
func (c *Client) BaseURL() string { return c.baseURL }

// SetLogger sets the logger for the client and its HTTP layer.
func (c *Client) SetLogger(l *log.Logger) {
	c.logger = l
	c.Client.SetLogger(l)
}

// FetchScenario loads the tier results of a scenario. tiers maps tier
// levels to labels: level n becomes tiers[n-1].
//
// Returns an error wrapping [integrations.ErrNotFound] for unknown
// scenarios and [integrations.ErrNetwork] for transport failures.
func (c *Client) FetchScenario(ctx context.Context, scenarioID string, tiers []string) (chart.Dataset, error) {
	var s scenarioTiers
	key := "tiers/" + scenarioID
	err := c.Cached(ctx, key, c.Refresh, &s, func() error {
		return c.fetchTiers(ctx, scenarioID, &s)
	})
	if err != nil {
		return chart.Dataset{}, fmt.Errorf("fetch scenario %s: %w", scenarioID, err)
	}

	d := chart.Dataset{
		Scenario:   scenarioID,
		Categories: s.Categories,
		Tiers:      tiers,
		Objectives: s.objectives(tiers),
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
	c.logger.Debug("fetched scenario",
		"scenario", scenarioID,
		"categories", len(d.Categories),
		"objectives", len(d.Objectives))
	return d, nil
}

// LoadScenario is FetchScenario for callers that cannot handle errors: a
// failure is logged and yields an empty dataset with no categories.
func (c *Client) LoadScenario(ctx context.Context, scenarioID string, tiers []string) chart.Dataset {
	d, err := c.FetchScenario(ctx, scenarioID, tiers)
	if err != nil {
		c.logger.Error("load scenario failed", "scenario", scenarioID, "err", err)
		return chart.Dataset{Scenario: scenarioID, Categories: []string{}, Tiers: tiers}
	}
	return d
}

func (c *Client) fetchTiers(ctx context.Context, scenarioID string, out *scenarioTiers) error {
	u := fmt.Sprintf("%s/tiers/scenarios/%s/tiers", c.baseURL, url.PathEscape(scenarioID))
	var resp tiersResponse
	if err := c.Get(ctx, u, &resp); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: scenario %s", err, scenarioID)
		}
		return err
	}
	*out = resp.flatten()
	return nil
}

// ListScenarios returns the scenarios that have tier maps.
func (c *Client) ListScenarios(ctx context.Context) ([]Scenario, error) {
	var list []Scenario
	err := c.Cached(ctx, "tier-map/scenarios", c.Refresh, &list, func() error {
		var resp struct {
			Scenarios []Scenario `json:"scenarios"`
		}
		if err := c.Get(ctx, c.baseURL+"/tier-map/scenarios", &resp); err != nil {
			return err
		}
		list = resp.Scenarios
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return list, nil
}

// ShortCodes returns the raw tier list (the short codes and their
// metadata) as served by the API.
func (c *Client) ShortCodes(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.Cached(ctx, "tiers/list", c.Refresh, &raw, func() error {
		var err error
		raw, err = c.GetRaw(ctx, c.baseURL+"/tiers/list")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tier list: %w", err)
	}
	return raw, nil
}

// GeoShapes returns the GeoJSON tier map of one tier indicator.
func (c *Client) GeoShapes(ctx context.Context, shortCode string) (json.RawMessage, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("tier-map/%s/%s", DefaultGeoScenario, url.PathEscape(shortCode))
	err := c.Cached(ctx, path, c.Refresh, &raw, func() error {
		var err error
		raw, err = c.GetRaw(ctx, c.baseURL+"/"+path)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch geoshapes %s: %w", shortCode, err)
	}
	return raw, nil
}

// Scenario is one entry of the scenario list. The API has served both
// bare id strings and objects; both decode into ID.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts "s0020" or an object with an id-like field.
func (s *Scenario) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*s = Scenario{ID: id}
		return nil
	}
	var obj struct {
		ID          string `json:"id"`
		ScenarioID  string `json:"scenario_id"`
		ShortCode   string `json:"short_code"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("scenario entry: %w", err)
	}
	*s = Scenario{Name: obj.Name, Description: obj.Description}
	for _, v := range []string{obj.ID, obj.ScenarioID, obj.ShortCode, obj.Name} {
		if v != "" {
			s.ID = v
			break
		}
	}
	return nil
}

// Title returns a display label.
func (s Scenario) Title() string {
	if s.Name != "" && s.Name != s.ID {
		return s.ID + " - " + s.Name
	}
	return s.ID
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/ratelimit"
	"net/url"
	"strings"

	"github.com/valyala/fasthttp"
)

// BrawlerClient reads hero-brawler player profiles. The upstream schema shifts between
// API versions, so profiles are returned undecoded into any struct.
type BrawlerClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
	limiter *ratelimit.SlidingWindow
}

func NewBrawlerClient(cfg *config.Config) *BrawlerClient {
	// the provider enforces its own fixed window regardless of configuration
	limiter := ratelimit.NewSlidingWindow(constants.UpstreamRateLimit, constants.UpstreamRateWindow)
	return newBrawlerClient(cfg.BrawlerAPIKey, cfg.BrawlerAPIBaseURL, limiter, newFastClient())
}

func newBrawlerClient(apiKey, baseURL string, limiter *ratelimit.SlidingWindow, client *fasthttp.Client) *BrawlerClient {
	return &BrawlerClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: limiter,
	}
}

// GetPlayer returns the raw profile document for a username or uid.
func (c *BrawlerClient) GetPlayer(ctx context.Context, player string) (map[string]any, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s/player/%s", c.baseURL, url.PathEscape(player))
	body, err := do(ctx, c.client, u, func(req *fasthttp.Request) {
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}
	}, nil)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode player profile: %w", err)
	}
	return doc, nil
}

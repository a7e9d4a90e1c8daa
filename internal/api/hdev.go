package api

import (
	"context"
	"encoding/json"
	"fmt"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/ratelimit"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

const hdevBaseURL = "https://api.henrikdev.xyz/valorant"

type HDevClient struct {
	apiKey      string
	baseURL     string
	client      *fasthttp.Client
	limiter     *ratelimit.SlidingWindow
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Bucket    string `json:"bucket"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewHDevClient(cfg *config.Config) *HDevClient {
	limiter := ratelimit.NewSlidingWindow(cfg.UpstreamRateLimit, cfg.UpstreamRateWindow)
	return newHDevClient(cfg.HDevAPIKey, hdevBaseURL, limiter, newFastClient())
}

func newHDevClient(apiKey, baseURL string, limiter *ratelimit.SlidingWindow, client *fasthttp.Client) *HDevClient {
	return &HDevClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		limiter: limiter,
		rateLimit: RateLimitInfo{
			Limit:     90,
			Remaining: 90,
			Reset:     60,
			UpdatedAt: time.Now(),
		},
	}
}

func newFastClient() *fasthttp.Client {
	return &fasthttp.Client{
		MaxConnsPerHost:     100,
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        10 * time.Second,
		MaxIdleConnDuration: 1 * time.Minute,
	}
}

func (c *HDevClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

// untilReset is how long the upstream asked us to hold off. It is zero while the last
// response still reported calls remaining.
func (c *HDevClient) untilReset() time.Duration {
	info := c.GetRateLimitInfo()
	if info.Remaining > 0 {
		return 0
	}
	return time.Until(info.UpdatedAt.Add(time.Duration(info.Reset) * time.Second))
}

// waitForReset blocks until the upstream bucket resets when it reported no calls left.
func (c *HDevClient) waitForReset(ctx context.Context) error {
	wait := c.untilReset()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *HDevClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if bucket := string(resp.Header.Peek("X-Ratelimit-Bucket")); bucket != "" {
		c.rateLimit.Bucket = bucket
	}
	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *HDevClient) GetAccount(ctx context.Context, name, tag string) (*AccountResponse, error) {
	u := fmt.Sprintf("%s/v2/account/%s/%s", c.baseURL, url.PathEscape(name), url.PathEscape(tag))
	return hdevRequest[AccountResponse](ctx, c, u)
}

func (c *HDevClient) GetMMR(ctx context.Context, region, puuid string) (*MMRResponse, error) {
	u := fmt.Sprintf("%s/v3/by-puuid/mmr/%s/pc/%s", c.baseURL, region, puuid)
	return hdevRequest[MMRResponse](ctx, c, u)
}

func (c *HDevClient) GetMMRHistory(ctx context.Context, region, puuid string) (*MMRHistoryResponse, error) {
	u := fmt.Sprintf("%s/v1/by-puuid/mmr-history/%s/%s", c.baseURL, region, puuid)
	return hdevRequest[MMRHistoryResponse](ctx, c, u)
}

func hdevRequest[T any](ctx context.Context, c *HDevClient, u string) (*T, error) {
	if err := c.waitForReset(ctx); err != nil {
		return nil, fmt.Errorf("upstream rate limit: %w", err)
	}
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := do(ctx, c.client, u, func(req *fasthttp.Request) {
		req.Header.Set("Authorization", c.apiKey)
	}, c.updateRateLimit)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode %T: %w", result, err)
	}
	return &result, nil
}

// do performs a GET bounded by ctx's deadline and returns a copy of the body for 2xx
// responses.
func do(ctx context.Context, client *fasthttp.Client, u string, prepare func(*fasthttp.Request), inspect func(*fasthttp.Response)) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(u)
	req.Header.SetMethod(fasthttp.MethodGet)
	if prepare != nil {
		prepare(req)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if inspect != nil {
		inspect(resp)
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{Code: code}
	}

	return append([]byte(nil), resp.Body()...), nil
}

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.Code)
}

type AccountResponse struct {
	Status int         `json:"status"`
	Data   AccountData `json:"data"`
}

type AccountData struct {
	Puuid        string `json:"puuid"`
	Region       string `json:"region"`
	AccountLevel int    `json:"account_level"`
	Name         string `json:"name"`
	Tag          string `json:"tag"`
}

type MMRResponse struct {
	Status int        `json:"status"`
	Data   MMRCurrent `json:"data"`
}

type MMRCurrent struct {
	Current struct {
		Tier struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"tier"`
		RR                   int `json:"rr"`
		Elo                  int `json:"elo"`
		GamesNeededForRating int `json:"games_needed_for_rating"`
	} `json:"current"`
}

// InPlacement is true while the account still has placement games to play.
func (m MMRCurrent) InPlacement() bool {
	return m.Current.GamesNeededForRating > 0 || m.Current.Tier.ID < 3
}

type MMRHistoryResponse struct {
	Status int              `json:"status"`
	Data   []MMRHistoryItem `json:"data"`
}

type MMRHistoryItem struct {
	CurrentTier         int    `json:"currenttier"`
	CurrentTierPatched  string `json:"currenttierpatched"`
	MatchID             string `json:"match_id"`
	RankingInTier       int    `json:"ranking_in_tier"`
	MmrChangeToLastGame int    `json:"mmr_change_to_last_game"`
	Elo                 int    `json:"elo"`
	Date                string `json:"date"`
}

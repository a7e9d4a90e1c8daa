package api

import (
	"context"
	"errors"
	"ladder-tracker/internal/ratelimit"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func serve(t *testing.T, handler fasthttp.RequestHandler) *fasthttp.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() {
		_ = srv.Shutdown()
	})
	return &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}
}

func TestHDevClient_GetMMR(t *testing.T) {
	var gotPath, gotAuth string
	client := serve(t, func(ctx *fasthttp.RequestCtx) {
		gotPath = string(ctx.Path())
		gotAuth = string(ctx.Request.Header.Peek("Authorization"))
		ctx.Response.Header.Set("X-Ratelimit-Remaining", "12")
		ctx.Response.Header.Set("X-Ratelimit-Limit", "30")
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":200,"data":{"current":{"tier":{"id":13,"name":"Gold 2"},"rr":41,"elo":1041,"games_needed_for_rating":0}}}`)
	})

	c := newHDevClient("secret", "http://hdev.test/valorant", ratelimit.NewSlidingWindow(5, time.Minute), client)
	resp, err := c.GetMMR(context.Background(), "eu", "abc-123")
	require.NoError(t, err)

	assert.Equal(t, "/valorant/v3/by-puuid/mmr/eu/pc/abc-123", gotPath)
	assert.Equal(t, "secret", gotAuth)
	assert.Equal(t, 13, resp.Data.Current.Tier.ID)
	assert.Equal(t, 1041, resp.Data.Current.Elo)
	assert.False(t, resp.Data.InPlacement())

	info := c.GetRateLimitInfo()
	assert.Equal(t, 12, info.Remaining)
	assert.Equal(t, 30, info.Limit)
}

func TestHDevClient_NonSuccessStatus(t *testing.T) {
	client := serve(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
	})

	c := newHDevClient("k", "http://hdev.test/valorant", ratelimit.NewSlidingWindow(5, time.Minute), client)
	_, err := c.GetMMRHistory(context.Background(), "eu", "abc")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, fasthttp.StatusTooManyRequests, statusErr.Code)
}

func TestHDevClient_LimiterBoundsCalls(t *testing.T) {
	calls := 0
	client := serve(t, func(ctx *fasthttp.RequestCtx) {
		calls++
		ctx.SetBodyString(`{"status":200,"data":[]}`)
	})

	c := newHDevClient("k", "http://hdev.test/valorant", ratelimit.NewSlidingWindow(1, time.Hour), client)
	_, err := c.GetMMRHistory(context.Background(), "eu", "abc")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = c.GetMMRHistory(ctx, "eu", "abc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestHDevClient_WaitsForUpstreamReset(t *testing.T) {
	calls := 0
	client := serve(t, func(ctx *fasthttp.RequestCtx) {
		calls++
		ctx.Response.Header.Set("X-Ratelimit-Remaining", "0")
		ctx.Response.Header.Set("X-Ratelimit-Reset", "30")
		ctx.SetBodyString(`{"status":200,"data":[]}`)
	})

	c := newHDevClient("k", "http://hdev.test/valorant", ratelimit.NewSlidingWindow(5, time.Minute), client)
	_, err := c.GetMMRHistory(context.Background(), "eu", "abc")
	require.NoError(t, err)
	assert.Greater(t, c.untilReset(), 25*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = c.GetMMRHistory(ctx, "eu", "abc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, c.limiter.Remaining(), "a held-off call must not spend a limiter slot")
}

func TestHDevClient_ElapsedResetDoesNotWait(t *testing.T) {
	c := newHDevClient("k", "http://hdev.test/valorant", ratelimit.NewSlidingWindow(5, time.Minute), &fasthttp.Client{})
	c.rateLimit = RateLimitInfo{Remaining: 0, Reset: 1, UpdatedAt: time.Now().Add(-2 * time.Second)}

	assert.Zero(t, c.untilReset())
	assert.NoError(t, c.waitForReset(context.Background()))
}

func TestBrawlerClient_GetPlayer(t *testing.T) {
	var gotPath, gotKey string
	client := serve(t, func(ctx *fasthttp.RequestCtx) {
		gotPath = string(ctx.Path())
		gotKey = string(ctx.Request.Header.Peek("x-api-key"))
		ctx.SetBodyString(`{"name":"storm main","player":{"rank":{"rank":"Diamond II"}},"overall_stats":{"wins":4}}`)
	})

	c := newBrawlerClient("k2", "http://rivals.test/api/v1/", ratelimit.NewSlidingWindow(5, time.Minute), client)
	doc, err := c.GetPlayer(context.Background(), "storm main")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/player/storm%20main", gotPath)
	assert.Equal(t, "k2", gotKey)
	assert.Equal(t, "storm main", doc["name"])
}

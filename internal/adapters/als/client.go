// Package als talks to the Hong Kong Address Lookup Service and turns a
// building name into coordinates plus a GeoAddress code.
package als

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"unihaven/internal/adapters/observability"
	"unihaven/internal/domain"
)

const DefaultBaseURL = "https://www.als.gov.hk"

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

var (
	ErrNoMatch  = errors.New("als: no address found for this building name")
	ErrNotFound = errors.New("als: not found")
)

// Lookup asks for the single best suggestion for buildingName.
func (c *Client) Lookup(ctx context.Context, buildingName string) (domain.Location, error) {
	name := strings.TrimSpace(buildingName)
	if name == "" {
		return domain.Location{}, ErrNoMatch
	}
	q := url.Values{"q": {name}, "n": {"1"}}
	var payload map[string]any
	if err := c.get(ctx, c.base+"/lookup?"+q.Encode(), &payload); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Location{}, ErrNoMatch
		}
		return domain.Location{}, err
	}
	return parseSuggestion(payload)
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	status := 0
	defer func() { observability.ObserveExternal("als", "lookup", status, time.Since(start)) }()

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Language", "en")
		req.Header.Set("User-Agent", "unihaven/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		status = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("als: decode: %w", err)
			}
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("als: remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("als: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

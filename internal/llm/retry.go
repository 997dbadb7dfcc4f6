package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"assist/internal/logger"
)

// APIError is a non-retryable (or retries exhausted) HTTP failure from a model provider.
type APIError struct {
	Provider string
	Status   string
	Body     string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s request failed: %s: %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Status)
}

// Doer sends provider requests with retries on transport errors, 429 and 5xx.
type Doer struct {
	Provider   string
	Client     *http.Client
	MaxRetries int
	// Sleep is swapped in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do builds and sends a request until it succeeds or retries run out, returning the body.
func (d *Doer) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	sleep := d.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	var lastErr error
	for attempt := 0; attempt <= d.MaxRetries; attempt++ {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := d.Client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == d.MaxRetries {
				break
			}
			logger.Debug().Str("provider", d.Provider).Int("attempt", attempt).Err(err).Msg("request failed, retrying")
			if serr := sleep(ctx, retryDelay(attempt)); serr != nil {
				return nil, serr
			}
			continue
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &APIError{Provider: d.Provider, Status: resp.Status, Body: strings.TrimSpace(string(payload))}
			if attempt == d.MaxRetries {
				break
			}
			wait := retryDelay(attempt)
			// Respect Retry-After if provided
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
				}
			}
			logger.Debug().Str("provider", d.Provider).Str("status", resp.Status).Dur("wait", wait).Msg("throttled, retrying")
			if serr := sleep(ctx, wait); serr != nil {
				return nil, serr
			}
			continue
		}
		if resp.StatusCode >= 300 {
			return nil, &APIError{Provider: d.Provider, Status: resp.Status, Body: strings.TrimSpace(string(payload))}
		}
		if readErr != nil {
			lastErr = readErr
			if attempt == d.MaxRetries {
				break
			}
			if serr := sleep(ctx, retryDelay(attempt)); serr != nil {
				return nil, serr
			}
			continue
		}
		return payload, nil
	}
	return nil, lastErr
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

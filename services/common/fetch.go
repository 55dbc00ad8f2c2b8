package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrMalformed = errors.New("malformed upstream response")

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", e.Code)
}

// Transient reports whether the request is worth repeating.
func (e *StatusError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Fetcher performs rate-limited JSON requests and retries transient failures
// (network errors, 5xx and 429 answers).
type Fetcher struct {
	name     string
	cl       *http.Client
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
}

// NewFetcher returns a Fetcher allowing rps requests per second. A non-positive
// rps disables limiting.
func NewFetcher(name string, cl *http.Client, rps float64) *Fetcher {
	var l *rate.Limiter
	if rps > 0 {
		l = rate.NewLimiter(rate.Limit(rps), int(math.Ceil(rps)))
	}
	return &Fetcher{
		name:     name,
		cl:       cl,
		limiter:  l,
		attempts: 3,
		delay:    200 * time.Millisecond,
	}
}

func (s *Fetcher) WithRetry(attempts uint, delay time.Duration) *Fetcher {
	s.attempts = attempts
	s.delay = delay
	return s
}

// GetJSON builds a fresh request for every attempt and decodes a 200 answer into v.
func (s *Fetcher) GetJSON(ctx context.Context, build func(ctx context.Context) (*http.Request, error), v any) error {
	return retry.Do(
		func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					return retry.Unrecoverable(errors.Wrap(err, "rate limiter"))
				}
			}
			req, err := build(ctx)
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "create request"))
			}
			resp, err := s.cl.Do(req)
			if err != nil {
				return errors.Wrap(err, "request failed")
			}
			defer func(Body io.ReadCloser) {
				_ = Body.Close()
			}(resp.Body)
			if resp.StatusCode != http.StatusOK {
				se := &StatusError{Code: resp.StatusCode}
				if se.Transient() {
					return se
				}
				return retry.Unrecoverable(se)
			}
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(errors.Wrapf(ErrMalformed, "decode response: %v", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).
				WithField("provider", s.name).
				WithField("attempt", n+1).
				Debug("retrying upstream request")
		}),
	)
}

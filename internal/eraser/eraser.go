// Package eraser implements bulk deletion: page through the authenticated
// account's own tweets and delete every one. Deletion bypasses the batch
// guardrails on purpose — its safety boundary is the explicit --delete-all
// invocation.
//
// 429 is the only recoverable failure: the pager suspends for the
// provider-advertised interval (exponential backoff when none is
// advertised) and retries the same call, so a rate-limit event loses no
// deletions. Everything else aborts with a partial report.
package eraser

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/AaronFaby/openclaw-skills/internal/xapi"
)

// API is what deletion mode needs from the client.
type API interface {
	Me(ctx context.Context) (xapi.User, error)
	Timeline(ctx context.Context, userID, paginationToken string) (*xapi.TimelinePage, error)
	DeleteTweet(ctx context.Context, id string) (bool, error)
}

// Report is the pager's outcome. On failure, Deleted and Cursor describe
// how far the run got; there is no persisted resume state, so the next run
// restarts from the beginning of the timeline.
type Report struct {
	Deleted int
	Pages   int
	Cursor  string
}

// Eraser drives one deletion pass.
type Eraser struct {
	api     API
	limiter *rate.Limiter
	sleep   func(context.Context, time.Duration) error
}

// New builds an Eraser pacing deletes at two per second.
func New(api API) *Eraser {
	return &Eraser{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		sleep:   sleepCtx,
	}
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

// newBackOff returns the fallback wait schedule used when a 429 carries no
// provider-advertised interval.
func newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.MaxInterval = 2 * time.Minute
	bo.MaxElapsedTime = 15 * time.Minute
	return bo
}

// withRateLimitRetry runs fn, suspending and retrying the same call on 429.
// Any other error is returned as-is.
func (e *Eraser) withRateLimitRetry(ctx context.Context, fn func() error) error {
	bo := newBackOff()
	for {
		err := fn()
		if err == nil || !xapi.IsRateLimit(err) {
			return err
		}

		wait := xapi.RetryAfter(err)
		if wait <= 0 {
			wait = bo.NextBackOff()
			if wait == backoff.Stop {
				return fmt.Errorf("rate limited too long: %w", err)
			}
		}
		log.Warn().Dur("wait", wait).Msg("rate limited; suspending")
		if serr := e.sleep(ctx, wait); serr != nil {
			return serr
		}
	}
}

// Run deletes every tweet on the account's timeline. The returned Report is
// meaningful even when err != nil.
func (e *Eraser) Run(ctx context.Context) (Report, error) {
	rep := Report{}

	var user xapi.User
	if err := e.withRateLimitRetry(ctx, func() error {
		var err error
		user, err = e.api.Me(ctx)
		return err
	}); err != nil {
		return rep, fmt.Errorf("resolving authenticated user: %w", err)
	}
	log.Info().Str("username", user.Username).Str("id", user.ID).Msg("authenticated")

	cursor := ""
	for {
		var page *xapi.TimelinePage
		if err := e.withRateLimitRetry(ctx, func() error {
			var err error
			page, err = e.api.Timeline(ctx, user.ID, cursor)
			return err
		}); err != nil {
			return rep, fmt.Errorf("fetching page %d (cursor %q): %w", rep.Pages+1, cursor, err)
		}
		rep.Pages++

		for _, tw := range page.Tweets {
			if err := e.limiter.Wait(ctx); err != nil {
				return rep, err
			}
			id := tw.ID
			if err := e.withRateLimitRetry(ctx, func() error {
				deleted, err := e.api.DeleteTweet(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("delete of %s returned deleted=false", id)
				}
				return nil
			}); err != nil {
				return rep, fmt.Errorf("deleting %s: %w", id, err)
			}
			rep.Deleted++
			log.Info().Str("id", id).Int("deleted", rep.Deleted).Msg("deleted")
		}

		if page.NextToken == "" {
			return rep, nil
		}
		cursor = page.NextToken
		rep.Cursor = cursor
	}
}

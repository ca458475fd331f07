// Package thread posts a validated batch as a self-thread: one POST per
// draft, strictly sequential, each reply chained to the previous tweet's
// server-assigned id. First failure halts the machine — retrying or skipping
// would silently break the reply chain.
package thread

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/AaronFaby/openclaw-skills/internal/batch"
)

// TweetCreator is the one call posting mode needs from the API client.
type TweetCreator interface {
	CreateTweet(ctx context.Context, text, inReplyTo string) (string, error)
}

// State of the posting machine.
type State int

const (
	NotStarted State = iota
	Posting
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Posting:
		return "posting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// PostedTweet records one successful creation. InReplyTo is empty for the
// thread's first tweet.
type PostedTweet struct {
	ID        string
	Index     int
	Text      string
	InReplyTo string
}

// Result is the machine's final report. Posted always holds every tweet
// created before a failure so the caller can decide whether to remove a
// partial thread by hand.
type Result struct {
	State       State
	Posted      []PostedTweet
	FailedIndex int // -1 unless State == Failed
	Err         error
}

// IDs returns the created ids in thread order.
func (r Result) IDs() []string {
	ids := make([]string, len(r.Posted))
	for i, p := range r.Posted {
		ids[i] = p.ID
	}
	return ids
}

// Poster drives the machine. One Poster per invocation.
type Poster struct {
	api     TweetCreator
	limiter *rate.Limiter
}

// New builds a Poster pacing at one post per second between tweets.
func New(api TweetCreator) *Poster {
	limiter := rate.NewLimiter(rate.Limit(1), 1)
	// Drain the initial burst token so the very first inter-post gap is
	// paced too, not just the gaps after it.
	limiter.Allow()
	return &Poster{api: api, limiter: limiter}
}

// Post runs NotStarted → Posting(i) → Done, or halts at Failed(i). Any
// request failure — non-2xx (including 429), transport error, malformed
// response — is terminal; posting mode never retries.
func (p *Poster) Post(ctx context.Context, drafts []batch.Draft) Result {
	res := Result{State: NotStarted, FailedIndex: -1}

	lastID := ""
	for i, d := range drafts {
		res.State = Posting

		if i > 0 {
			// Courtesy pacing between chained posts.
			if err := p.limiter.Wait(ctx); err != nil {
				res.State, res.FailedIndex, res.Err = Failed, i, err
				return res
			}
		}

		id, err := p.api.CreateTweet(ctx, d.Text, lastID)
		if err != nil {
			res.State = Failed
			res.FailedIndex = i
			res.Err = fmt.Errorf("posting tweet %d/%d: %w", i+1, len(drafts), err)
			return res
		}

		res.Posted = append(res.Posted, PostedTweet{
			ID:        id,
			Index:     d.Index,
			Text:      d.Text,
			InReplyTo: lastID,
		})
		log.Info().Int("tweet", i+1).Int("of", len(drafts)).Str("id", id).Msg("posted")
		lastID = id
	}

	res.State = Done
	return res
}

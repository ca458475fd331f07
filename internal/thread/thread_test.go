package thread

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"golang.org/x/time/rate"

	"github.com/AaronFaby/openclaw-skills/internal/batch"
)

// fakeCreator hands out sequential ids and can be told to fail at a given
// call index.
type fakeCreator struct {
	calls   []call
	nextID  int
	failAt  int // -1 = never
	failErr error
}

type call struct {
	text      string
	inReplyTo string
}

func newFakeCreator() *fakeCreator {
	return &fakeCreator{nextID: 100, failAt: -1, failErr: errors.New("boom")}
}

func (f *fakeCreator) CreateTweet(ctx context.Context, text, inReplyTo string) (string, error) {
	if f.failAt >= 0 && len(f.calls) == f.failAt {
		return "", f.failErr
	}
	f.calls = append(f.calls, call{text: text, inReplyTo: inReplyTo})
	id := strconv.Itoa(f.nextID)
	f.nextID++
	return id, nil
}

func newTestPoster(api TweetCreator) *Poster {
	p := New(api)
	p.limiter = rate.NewLimiter(rate.Inf, 1) // no pacing in tests
	return p
}

func mkDrafts(n int) []batch.Draft {
	drafts := make([]batch.Draft, n)
	for i := range drafts {
		drafts[i] = batch.Draft{Index: i, Text: fmt.Sprintf("draft number %d of the thread", i+1)}
	}
	return drafts
}

// ===================== pacing =====================

func TestNew_LimiterStartsDrained(t *testing.T) {
	p := New(newFakeCreator())
	// No burst token may be banked at construction, or the first gap
	// between chained posts would not be paced.
	if tokens := p.limiter.Tokens(); tokens >= 1 {
		t.Errorf("limiter holds %v tokens at construction, want < 1", tokens)
	}
}

// ===================== happy path =====================

func TestPost_SingleTweet(t *testing.T) {
	fake := newFakeCreator()
	res := newTestPoster(fake).Post(context.Background(), mkDrafts(1))

	if res.State != Done {
		t.Fatalf("state = %s, want done (%v)", res.State, res.Err)
	}
	if len(res.Posted) != 1 || res.Posted[0].ID != "100" {
		t.Errorf("unexpected posted: %+v", res.Posted)
	}
	if res.Posted[0].InReplyTo != "" {
		t.Errorf("first tweet must not reply to anything: %+v", res.Posted[0])
	}
	if res.FailedIndex != -1 {
		t.Errorf("FailedIndex = %d, want -1", res.FailedIndex)
	}
}

func TestPost_ThreadChainsReplies(t *testing.T) {
	fake := newFakeCreator()
	res := newTestPoster(fake).Post(context.Background(), mkDrafts(3))

	if res.State != Done {
		t.Fatalf("state = %s, want done (%v)", res.State, res.Err)
	}
	if len(res.Posted) != 3 {
		t.Fatalf("expected 3 posted, got %d", len(res.Posted))
	}

	// Thread integrity: each tweet replies to its immediate predecessor.
	if res.Posted[1].InReplyTo != res.Posted[0].ID {
		t.Errorf("tweet 1 replies to %q, want %q", res.Posted[1].InReplyTo, res.Posted[0].ID)
	}
	if res.Posted[2].InReplyTo != res.Posted[1].ID {
		t.Errorf("tweet 2 replies to %q, want %q", res.Posted[2].InReplyTo, res.Posted[1].ID)
	}

	// And the wire calls carried the same chain.
	if fake.calls[0].inReplyTo != "" || fake.calls[1].inReplyTo != "100" || fake.calls[2].inReplyTo != "101" {
		t.Errorf("unexpected wire chain: %+v", fake.calls)
	}
}

func TestPost_IDsInOrder(t *testing.T) {
	fake := newFakeCreator()
	res := newTestPoster(fake).Post(context.Background(), mkDrafts(2))

	ids := res.IDs()
	if len(ids) != 2 || ids[0] != "100" || ids[1] != "101" {
		t.Errorf("IDs() = %v, want [100 101]", ids)
	}
}

// ===================== failure handling =====================

func TestPost_HaltsOnFirstFailure(t *testing.T) {
	fake := newFakeCreator()
	fake.failAt = 2 // third post fails

	res := newTestPoster(fake).Post(context.Background(), mkDrafts(4))

	if res.State != Failed {
		t.Fatalf("state = %s, want failed", res.State)
	}
	if res.FailedIndex != 2 {
		t.Errorf("FailedIndex = %d, want 2", res.FailedIndex)
	}
	if len(res.Posted) != 2 {
		t.Errorf("expected exactly 2 posted before failure, got %d", len(res.Posted))
	}
	// Drafts 3 and 4 were never sent.
	if len(fake.calls) != 2 {
		t.Errorf("expected 2 wire calls, got %d", len(fake.calls))
	}
	if res.Err == nil || !errors.Is(res.Err, fake.failErr) {
		t.Errorf("result must wrap the underlying error, got %v", res.Err)
	}
}

func TestPost_FirstTweetFails(t *testing.T) {
	fake := newFakeCreator()
	fake.failAt = 0

	res := newTestPoster(fake).Post(context.Background(), mkDrafts(2))

	if res.State != Failed || res.FailedIndex != 0 {
		t.Fatalf("state = %s index %d, want failed at 0", res.State, res.FailedIndex)
	}
	if len(res.Posted) != 0 {
		t.Errorf("nothing should have been posted, got %+v", res.Posted)
	}
}

func TestPost_NoRetryAfterFailure(t *testing.T) {
	fake := newFakeCreator()
	fake.failAt = 1

	newTestPoster(fake).Post(context.Background(), mkDrafts(3))

	// Exactly one successful call before the failure, and none after:
	// the machine never retries and never skips ahead.
	if len(fake.calls) != 1 {
		t.Errorf("expected 1 wire call, got %d", len(fake.calls))
	}
}

func TestPost_CancelledContext(t *testing.T) {
	fake := newFakeCreator()
	p := New(fake) // real limiter so Wait observes the context

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := p.Post(ctx, mkDrafts(3))
	if res.State != Failed {
		t.Fatalf("state = %s, want failed", res.State)
	}
	// Completed effects stay completed; nothing is rolled back.
	if len(res.Posted) != len(fake.calls) {
		t.Errorf("result must report every created tweet: %d posted, %d calls",
			len(res.Posted), len(fake.calls))
	}
}

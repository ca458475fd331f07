// Package xapi is a minimal, posting-only client for the X API v2. It knows
// exactly three write-path operations (create, delete, list-own-for-delete
// plus the users/me lookup the listing needs) and signs every request with
// the hand-rolled OAuth1 signer. It never retries; retry policy belongs to
// the callers.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/AaronFaby/openclaw-skills/internal/model"
	"github.com/AaronFaby/openclaw-skills/internal/oauth1"
)

// APIBase is the fixed provider base URL.
const APIBase = "https://api.twitter.com/2"

const requestTimeout = 30 * time.Second

// APIError is a non-2xx response. RetryAfter is only meaningful for 429s
// and is zero when the provider advertised no interval.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
	Body       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("HTTP %d", e.StatusCode)
	switch {
	case e.Title != "" && e.Detail != "":
		msg += fmt.Sprintf(": %s: %s", e.Title, e.Detail)
	case e.Title != "":
		msg += ": " + e.Title
	case e.Body != "":
		msg += ": " + e.Body
	}
	return msg
}

// IsAuth reports whether err is a 401/403 from the provider. Not retried —
// credentials do not become valid by retrying.
func IsAuth(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && (ae.StatusCode == http.StatusUnauthorized || ae.StatusCode == http.StatusForbidden)
}

// IsRateLimit reports whether err is a 429 from the provider.
func IsRateLimit(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusTooManyRequests
}

// RetryAfter extracts the provider-advertised wait from a rate-limit error,
// or 0 when none was advertised.
func RetryAfter(err error) time.Duration {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.RetryAfter
	}
	return 0
}

// User identifies the authenticated account.
type User struct {
	ID       string
	Username string
}

// TimelinePage is one page of the account's own tweets. NextToken is empty
// on the final page.
type TimelinePage struct {
	Tweets    []model.Tweet
	NextToken string
}

// Client issues signed requests. Safe for sequential use only; this tool is
// strictly single-threaded by design.
type Client struct {
	httpc *http.Client
	creds oauth1.Credentials
	base  string
	nonce func() string
	now   func() time.Time
}

// Option customizes a Client, mostly for tests.
type Option func(*Client)

// WithBaseURL points the client at a different base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = strings.TrimRight(base, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithNonceSource fixes the nonce generator, for signature tests.
func WithNonceSource(f func() string) Option {
	return func(c *Client) { c.nonce = f }
}

// WithClock fixes the timestamp source, for signature tests.
func WithClock(f func() time.Time) Option {
	return func(c *Client) { c.now = f }
}

// New returns a client over cleanhttp defaults with a fixed timeout. No
// automatic retries at any layer.
func New(creds oauth1.Credentials, opts ...Option) *Client {
	httpc := cleanhttp.DefaultClient()
	httpc.Timeout = requestTimeout

	c := &Client{
		httpc: httpc,
		creds: creds,
		base:  APIBase,
		nonce: oauth1.Nonce,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one signed request and decodes a 2xx JSON response into out.
// Query params are part of the signed set; the JSON body never is.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	endpoint := c.base + "/" + strings.TrimLeft(path, "/")

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	full := endpoint
	if len(query) > 0 {
		vals := url.Values{}
		for k, v := range query {
			vals.Set(k, v)
		}
		full += "?" + vals.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, full, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization",
		oauth1.AuthorizationHeader(method, endpoint, query, c.creds, c.nonce(), c.now().Unix()))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return diagnose(resp, raw, c.now())
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s %s: malformed response body: %w", method, path, err)
		}
	}
	return nil
}

// diagnose turns a non-2xx response into an *APIError, pulling whatever
// structure the body offers (v2 problem or v1.1 errors array).
func diagnose(resp *http.Response, raw []byte, now time.Time) *APIError {
	ae := &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
	}

	var prob model.Problem
	if json.Unmarshal(raw, &prob) == nil && prob.Title != "" {
		ae.Title, ae.Detail = prob.Title, prob.Detail
	} else {
		var legacy model.LegacyErrors
		if json.Unmarshal(raw, &legacy) == nil && len(legacy.Errors) > 0 {
			ae.Title = fmt.Sprintf("code %d", legacy.Errors[0].Code)
			ae.Detail = legacy.Errors[0].Message
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		ae.RetryAfter = retryInterval(resp.Header, now)
	}
	return ae
}

// retryInterval reads Retry-After (seconds) or x-rate-limit-reset (epoch).
func retryInterval(h http.Header, now time.Time) time.Duration {
	if s := h.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if s := h.Get("x-rate-limit-reset"); s != "" {
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(now); d > 0 {
				return d
			}
		}
	}
	return 0
}

// CreateTweet posts one tweet, optionally as a reply, and returns the
// server-assigned id.
func (c *Client) CreateTweet(ctx context.Context, text, inReplyTo string) (string, error) {
	req := model.TweetReq{Text: text}
	if inReplyTo != "" {
		req.Reply = &model.TweetReply{InReplyToTweetID: inReplyTo}
	}

	var resp model.TweetResp
	if err := c.do(ctx, http.MethodPost, "/tweets", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("POST /tweets: response missing tweet id")
	}
	return resp.Data.ID, nil
}

// DeleteTweet removes one tweet by id.
func (c *Client) DeleteTweet(ctx context.Context, id string) (bool, error) {
	var resp model.DeleteResp
	if err := c.do(ctx, http.MethodDelete, "/tweets/"+id, nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.Data.Deleted, nil
}

// Me resolves the authenticated account. Used only by deletion mode, which
// needs the user id for the timeline endpoint.
func (c *Client) Me(ctx context.Context) (User, error) {
	var resp model.UserResp
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &resp); err != nil {
		return User{}, err
	}
	if resp.Data.ID == "" {
		return User{}, fmt.Errorf("GET /users/me: response missing user id")
	}
	return User{ID: resp.Data.ID, Username: resp.Data.Username}, nil
}

// Timeline fetches one page of the account's own tweets. Pass the previous
// page's NextToken, or "" for the first page.
func (c *Client) Timeline(ctx context.Context, userID, paginationToken string) (*TimelinePage, error) {
	query := map[string]string{"max_results": "100"}
	if paginationToken != "" {
		query["pagination_token"] = paginationToken
	}

	var resp model.TimelineResp
	if err := c.do(ctx, http.MethodGet, "/users/"+userID+"/tweets", query, nil, &resp); err != nil {
		return nil, err
	}
	return &TimelinePage{Tweets: resp.Data, NextToken: resp.Meta.NextToken}, nil
}

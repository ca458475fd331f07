// Package model holds the wire types for the X API v2 endpoints this tool
// touches: tweet creation, tweet deletion, and the authenticated user's
// timeline listing used by deletion mode.
package model

// --- v2 create tweet ---

type TweetReq struct {
	Text  string      `json:"text"`
	Reply *TweetReply `json:"reply,omitempty"`
}
type TweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}
type TweetResp struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// --- v2 delete tweet ---

type DeleteResp struct {
	Data struct {
		Deleted bool `json:"deleted"`
	} `json:"data"`
}

// --- v2 users/me ---

type UserResp struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

// --- v2 user tweets timeline ---

type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
type TimelineResp struct {
	Data []Tweet `json:"data"`
	Meta struct {
		NextToken   string `json:"next_token"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
}

// --- error bodies ---

// Problem is the v2 error shape ({"title": ..., "detail": ...}).
type Problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// LegacyErrors is the v1.1 error shape, still returned by some edges.
type LegacyErrors struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

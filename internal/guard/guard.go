// Package guard validates a parsed tweet batch before any request is signed
// or sent. Every rule is a pure function of the batch; a single violation
// aborts the whole batch so partial posting never begins.
package guard

import (
	"fmt"

	"github.com/AaronFaby/openclaw-skills/internal/batch"
)

const (
	// MaxChars is the provider's tweet length ceiling.
	MaxChars = 280
	// MinChars rejects fragments produced by shell escaping bugs.
	MinChars = 10
	// MaxPerCall caps a single invocation; larger batches are spam or an
	// iteration bug, never an intended thread.
	MaxPerCall = 10

	// shortFragment marks drafts that look like pieces of one message.
	shortFragment = 20

	ellipsis = "..."
)

// Rule identifies which guardrail a batch violated.
type Rule string

const (
	RuleBatchSize Rule = "batch-size"
	RuleMinLength Rule = "min-length"
	RuleIteration Rule = "iteration-heuristic"
)

// ViolationError reports the violated rule and, where one draft is at
// fault, its index (-1 when the batch as a whole is the problem).
type ViolationError struct {
	Rule  Rule
	Index int
	Msg   string
}

func (e *ViolationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("guardrail %s (draft %d): %s", e.Rule, e.Index+1, e.Msg)
	}
	return fmt.Sprintf("guardrail %s: %s", e.Rule, e.Msg)
}

// Result is a validated batch ready to post. Truncated lists the indexes of
// drafts that were cut to MaxChars, so the transform stays auditable.
type Result struct {
	Drafts    []batch.Draft
	Truncated []int
}

// Check runs the rules in order and applies the over-length transform.
// No I/O happens here.
func Check(drafts []batch.Draft) (Result, error) {
	if len(drafts) == 0 {
		return Result{}, &ViolationError{Rule: RuleBatchSize, Index: -1,
			Msg: "no tweet text provided on stdin"}
	}
	if len(drafts) > MaxPerCall {
		return Result{}, &ViolationError{Rule: RuleBatchSize, Index: -1,
			Msg: fmt.Sprintf("too many tweets (%d); max %d per call, this limit prevents spam from iteration bugs", len(drafts), MaxPerCall)}
	}

	for _, d := range drafts {
		if d.Len() < MinChars {
			return Result{}, &ViolationError{Rule: RuleMinLength, Index: d.Index,
				Msg: fmt.Sprintf("only %d chars (%q); minimum is %d — this usually means a shell escaping or iteration bug", d.Len(), d.Text, MinChars)}
		}
	}

	if len(drafts) >= 2 && allShorterThan(drafts, shortFragment) {
		return Result{}, &ViolationError{Rule: RuleIteration, Index: -1,
			Msg: fmt.Sprintf("all %d tweets are under %d chars; this looks like character/word iteration", len(drafts), shortFragment)}
	}

	res := Result{Drafts: make([]batch.Draft, len(drafts))}
	for i, d := range drafts {
		if d.Len() > MaxChars {
			d.Text = truncateRunes(d.Text, MaxChars-len(ellipsis)) + ellipsis
			res.Truncated = append(res.Truncated, d.Index)
		}
		res.Drafts[i] = d
	}
	return res, nil
}

func allShorterThan(drafts []batch.Draft, n int) bool {
	for _, d := range drafts {
		if d.Len() >= n {
			return false
		}
	}
	return true
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Package batch turns raw stdin text into an ordered sequence of tweet
// drafts. Parsing only — length rules and truncation live in the guard
// package so policy stays independently testable.
package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
)

// Delimiter separates drafts on stdin: a line containing exactly three
// hyphens.
const Delimiter = "\n---\n"

// ErrInteractiveInput means stdin is a terminal. Tweet text must be piped;
// this guard exists to stop accidental interactive invocations.
var ErrInteractiveInput = errors.New("no input on stdin (and stdin is a TTY); usage: printf 'tweet text' | xposter")

// ErrEmptyInput means stdin closed without any non-whitespace text.
var ErrEmptyInput = errors.New("empty stdin; provide tweet text")

// Draft is one delimiter-separated segment, trimmed. Never mutated after
// creation.
type Draft struct {
	Index int
	Text  string
}

// Len reports the draft length in characters, not bytes.
func (d Draft) Len() int {
	return utf8.RuneCountInString(d.Text)
}

// Read consumes all of f after rejecting interactive terminals.
func Read(f *os.File) (string, error) {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return "", ErrInteractiveInput
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	raw := strings.TrimSpace(string(b))
	if raw == "" {
		return "", ErrEmptyInput
	}
	return raw, nil
}

// Split cuts raw text on Delimiter into ordered drafts. Segments are
// trimmed of surrounding whitespace; segments that trim to nothing are
// dropped. Order is preserved — it defines the reply chain.
func Split(raw string) []Draft {
	var drafts []Draft
	for _, seg := range strings.Split(raw, Delimiter) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		drafts = append(drafts, Draft{Index: len(drafts), Text: seg})
	}
	return drafts
}

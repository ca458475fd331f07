package batch

import (
	"errors"
	"os"
	"strings"
	"testing"
)

// ===================== Split =====================

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single", "Hello world from test", []string{"Hello world from test"}},
		{"two drafts", "Hello world from test\n---\nThread part two here",
			[]string{"Hello world from test", "Thread part two here"}},
		{"trims segments", "  first one  \n---\n\tsecond one\n",
			[]string{"first one", "second one"}},
		{"drops empty segments", "first\n---\n\n---\nsecond", []string{"first", "second"}},
		{"inline hyphens not a delimiter", "a --- b", []string{"a --- b"}},
		{"multiline draft", "line one\nline two\n---\nnext", []string{"line one\nline two", "next"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() returned %d drafts, want %d: %v", len(got), len(tt.want), got)
			}
			for i, d := range got {
				if d.Text != tt.want[i] {
					t.Errorf("draft %d = %q, want %q", i, d.Text, tt.want[i])
				}
				if d.Index != i {
					t.Errorf("draft %d has index %d", i, d.Index)
				}
			}
		})
	}
}

func TestSplit_AllWhitespace(t *testing.T) {
	if got := Split("   \n---\n  "); got != nil {
		t.Errorf("expected no drafts, got %v", got)
	}
}

// ===================== Draft.Len =====================

func TestDraftLen_Runes(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello", 5},
		{"café", 4},
		{"日本語", 3},
		{"🙂", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := (Draft{Text: tt.text}).Len(); got != tt.want {
				t.Errorf("Len(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

// ===================== Read =====================

func pipeWith(t *testing.T, content string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		w.WriteString(content)
		w.Close()
	}()
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRead_Pipe(t *testing.T) {
	raw, err := Read(pipeWith(t, "  Hello world from test\n"))
	if err != nil {
		t.Fatal(err)
	}
	if raw != "Hello world from test" {
		t.Errorf("Read() = %q", raw)
	}
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(pipeWith(t, "   \n\t"))
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRead_Terminal(t *testing.T) {
	tty, err := os.Open("/dev/tty")
	if err != nil {
		t.Skip("no controlling terminal available")
	}
	defer tty.Close()

	if _, err := Read(tty); !errors.Is(err, ErrInteractiveInput) {
		t.Errorf("expected ErrInteractiveInput, got %v", err)
	}
}

func TestRead_PreservesDelimiterStructure(t *testing.T) {
	raw, err := Read(pipeWith(t, "Hello world from test\n---\nThread part two here"))
	if err != nil {
		t.Fatal(err)
	}
	drafts := Split(raw)
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	if !strings.HasPrefix(drafts[1].Text, "Thread") {
		t.Errorf("unexpected second draft: %q", drafts[1].Text)
	}
}

package notes

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewNoteIDRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "   "},
		{name: "too-long", input: strings.Repeat("a", 191)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewNoteID(tc.input); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewNoteIDTrimsInput(t *testing.T) {
	id, err := NewNoteID("  note-1  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "note-1" {
		t.Fatalf("expected trimmed id, got %q", id.String())
	}
}

func TestNewUserIDRejectsEmptyInput(t *testing.T) {
	if _, err := NewUserID(" "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDraftValidateRequiresTitleAndContent(t *testing.T) {
	cases := []struct {
		name    string
		draft   Draft
		wantErr bool
	}{
		{name: "valid", draft: Draft{Title: "Todo", Content: "buy milk"}},
		{name: "empty-title", draft: Draft{Title: "  ", Content: "buy milk"}, wantErr: true},
		{name: "empty-content", draft: Draft{Title: "Todo", Content: "\n"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.wantErr && !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "simple", raw: "personal,todo", want: []string{"personal", "todo"}},
		{name: "trims-pieces", raw: " work , planning ,q4", want: []string{"work", "planning", "q4"}},
		{name: "drops-empty-pieces", raw: "a,,b, ,c,", want: []string{"a", "b", "c"}},
		{name: "keeps-duplicates", raw: "todo,todo", want: []string{"todo", "todo"}},
		{name: "all-empty", raw: " , ,", want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseTags(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestMatchesTermIsCaseInsensitive(t *testing.T) {
	note := Note{
		Title:   "Todo",
		Content: "buy milk",
		Tags:    []string{"Personal"},
	}
	cases := []struct {
		name string
		term string
		want bool
	}{
		{name: "content-upper", term: "MILK", want: true},
		{name: "title-lower", term: "todo", want: true},
		{name: "tag-partial", term: "person", want: true},
		{name: "no-match", term: "groceries", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchesTerm(note, tc.term); got != tc.want {
				t.Fatalf("MatchesTerm(%q) = %v, want %v", tc.term, got, tc.want)
			}
		})
	}
}

func TestAttachmentPathFormat(t *testing.T) {
	owner, err := NewUserID("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	path := AttachmentPath(owner, "note-1", "report.pdf", at.UnixMilli())
	want := "user-1/note-1/1767323045000_report.pdf"
	if path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
}

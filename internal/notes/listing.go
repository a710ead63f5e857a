package notes

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey enumerates the supported list orderings.
type SortKey string

const (
	// SortByUpdated orders notes newest-updated first.
	SortByUpdated SortKey = "updated"
	// SortByCreated orders notes newest-created first.
	SortByCreated SortKey = "created"
	// SortByTitle orders notes by title ascending.
	SortByTitle SortKey = "title"
)

// ParseSortKey validates a raw sort key value, defaulting to SortByUpdated
// when the input is empty.
func ParseSortKey(raw string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(SortByUpdated):
		return SortByUpdated, nil
	case string(SortByCreated):
		return SortByCreated, nil
	case string(SortByTitle):
		return SortByTitle, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", ErrValidation, raw)
	}
}

// FilterByTag returns the notes whose tag sequence contains tag. An empty
// tag selects everything.
func FilterByTag(input []Note, tag string) []Note {
	if tag == "" {
		return input
	}
	filtered := make([]Note, 0, len(input))
	for _, note := range input {
		for _, candidate := range note.Tags {
			if candidate == tag {
				filtered = append(filtered, note)
				break
			}
		}
	}
	return filtered
}

// SortNotes returns a sorted copy of input. Updated and created sort
// descending by timestamp; title sorts ascending, comparing case-folded
// titles first so casing does not scatter otherwise-equal entries. Ties
// keep the input order.
func SortNotes(input []Note, key SortKey) []Note {
	sorted := make([]Note, len(input))
	copy(sorted, input)
	switch key {
	case SortByCreated:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	case SortByTitle:
		sort.SliceStable(sorted, func(i, j int) bool {
			left := strings.ToLower(sorted[i].Title)
			right := strings.ToLower(sorted[j].Title)
			if left != right {
				return left < right
			}
			return sorted[i].Title < sorted[j].Title
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
		})
	}
	return sorted
}

// AllTags returns the distinct tags across notes in first-seen order.
func AllTags(input []Note) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, note := range input {
		for _, tag := range note.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

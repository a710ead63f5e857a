package notelist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nexonotes/nexonotes/internal/notes"
	"github.com/nexonotes/nexonotes/internal/session"
)

type fakeFetcher struct {
	mu          sync.Mutex
	listCalls   int
	searchTerms []string
	listNotes   []notes.Note
	searchNotes []notes.Note
	err         error
	gates       map[string]chan struct{}
}

func (f *fakeFetcher) List(context.Context, notes.UserID) ([]notes.Note, error) {
	f.mu.Lock()
	f.listCalls++
	err := f.err
	listed := append([]notes.Note(nil), f.listNotes...)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return listed, nil
}

func (f *fakeFetcher) Search(_ context.Context, _ notes.UserID, term string) ([]notes.Note, error) {
	f.mu.Lock()
	f.searchTerms = append(f.searchTerms, term)
	gate := f.gates[term]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	err := f.err
	matched := append([]notes.Note(nil), f.searchNotes...)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func (f *fakeFetcher) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeFetcher) searchedTerms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searchTerms...)
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func newTestController(t *testing.T, fetcher *fakeFetcher, quiet time.Duration) *Controller {
	t.Helper()

	sessionContext := session.NewContext()
	if err := sessionContext.Begin(session.Session{UserID: "user-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	controller, err := NewController(ControllerConfig{
		Fetcher:     fetcher,
		Session:     sessionContext,
		QuietPeriod: quiet,
	})
	if err != nil {
		t.Fatalf("failed to construct controller: %v", err)
	}
	t.Cleanup(controller.Close)
	return controller
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within deadline")
}

func TestActivateLoadsImmediately(t *testing.T) {
	fetcher := &fakeFetcher{listNotes: []notes.Note{{ID: "n1", OwnerID: "user-1", Title: "t"}}}
	controller := newTestController(t, fetcher, time.Hour)

	controller.Activate(context.Background())
	waitFor(t, func() bool { return len(controller.Snapshot().Notes) == 1 })

	if fetcher.listCount() != 1 {
		t.Fatalf("expected one list call, got %d", fetcher.listCount())
	}
	if snapshot := controller.Snapshot(); snapshot.IsLoading || snapshot.Err != nil {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}

func TestSearchTermChangesCoalesceIntoOneRequest(t *testing.T) {
	fetcher := &fakeFetcher{searchNotes: []notes.Note{{ID: "n1", OwnerID: "user-1", Title: "milk"}}}
	controller := newTestController(t, fetcher, 50*time.Millisecond)

	ctx := context.Background()
	controller.SetSearchTerm(ctx, "m")
	controller.SetSearchTerm(ctx, "mi")
	controller.SetSearchTerm(ctx, "milk")

	waitFor(t, func() bool { return len(fetcher.searchedTerms()) > 0 })
	controller.Close()

	terms := fetcher.searchedTerms()
	if len(terms) != 1 {
		t.Fatalf("expected one coalesced search, got %v", terms)
	}
	if terms[0] != "milk" {
		t.Fatalf("expected the final term, got %q", terms[0])
	}
}

func TestEmptyTermListsInsteadOfSearching(t *testing.T) {
	fetcher := &fakeFetcher{}
	controller := newTestController(t, fetcher, time.Millisecond)

	controller.SetSearchTerm(context.Background(), "   ")
	waitFor(t, func() bool { return fetcher.listCount() == 1 })

	if terms := fetcher.searchedTerms(); len(terms) != 0 {
		t.Fatalf("expected no search calls, got %v", terms)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	oldGate := make(chan struct{})
	fetcher := &fakeFetcher{
		searchNotes: []notes.Note{{ID: "fresh", OwnerID: "user-1", Title: "fresh"}},
		gates:       map[string]chan struct{}{"old": oldGate},
	}
	controller := newTestController(t, fetcher, time.Millisecond)

	ctx := context.Background()
	controller.SetSearchTerm(ctx, "old")
	waitFor(t, func() bool { return len(fetcher.searchedTerms()) == 1 })

	// A second request supersedes the blocked one.
	controller.SetSearchTerm(ctx, "new")
	waitFor(t, func() bool {
		snapshot := controller.Snapshot()
		return len(snapshot.Notes) == 1 && snapshot.Notes[0].ID == "fresh"
	})

	// Change what a late response would carry, then let it complete.
	fetcher.mu.Lock()
	fetcher.searchNotes = []notes.Note{{ID: "stale", OwnerID: "user-1", Title: "stale"}}
	fetcher.mu.Unlock()
	close(oldGate)
	controller.Close()

	snapshot := controller.Snapshot()
	if len(snapshot.Notes) != 1 || snapshot.Notes[0].ID != "fresh" {
		t.Fatalf("stale response overwrote fresher state: %+v", snapshot.Notes)
	}
}

func TestFetchFailureKeepsLastLoadedNotes(t *testing.T) {
	fetcher := &fakeFetcher{listNotes: []notes.Note{{ID: "n1", OwnerID: "user-1", Title: "t"}}}
	controller := newTestController(t, fetcher, time.Millisecond)

	controller.Activate(context.Background())
	waitFor(t, func() bool { return len(controller.Snapshot().Notes) == 1 })

	fetcher.setErr(errors.New("backend down"))
	controller.SetSearchTerm(context.Background(), "milk")
	waitFor(t, func() bool { return controller.Snapshot().Err != nil })

	snapshot := controller.Snapshot()
	if len(snapshot.Notes) != 1 || snapshot.Notes[0].ID != "n1" {
		t.Fatalf("failure discarded the last loaded notes: %+v", snapshot.Notes)
	}
}

func TestVisibleAppliesTagFilterAndSort(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{listNotes: []notes.Note{
		{ID: "n1", OwnerID: "user-1", Title: "one", Tags: []string{"work"}, UpdatedAt: base},
		{ID: "n2", OwnerID: "user-1", Title: "two", Tags: []string{"personal"}, UpdatedAt: base.Add(time.Hour)},
		{ID: "n3", OwnerID: "user-1", Title: "three", Tags: []string{"work"}, UpdatedAt: base.Add(2 * time.Hour)},
	}}
	controller := newTestController(t, fetcher, time.Hour)

	controller.Activate(context.Background())
	waitFor(t, func() bool { return len(controller.Snapshot().Notes) == 3 })

	controller.SetSelectedTag("work")
	visible := controller.Visible()
	if len(visible) != 2 || visible[0].ID != "n3" || visible[1].ID != "n1" {
		t.Fatalf("unexpected visible set %+v", visible)
	}

	// The tag choices come from the full set, not the filtered view.
	tags := controller.AllTags()
	if len(tags) != 2 {
		t.Fatalf("expected both tags, got %v", tags)
	}
}

func TestFetchWithoutSessionReportsError(t *testing.T) {
	fetcher := &fakeFetcher{}
	controller, err := NewController(ControllerConfig{
		Fetcher: fetcher,
		Session: session.NewContext(),
	})
	if err != nil {
		t.Fatalf("failed to construct controller: %v", err)
	}
	t.Cleanup(controller.Close)

	controller.Activate(context.Background())
	waitFor(t, func() bool { return controller.Snapshot().Err != nil })

	if !errors.Is(controller.Snapshot().Err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", controller.Snapshot().Err)
	}
}

package notecreate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nexonotes/nexonotes/internal/notes"
	"github.com/nexonotes/nexonotes/internal/session"
)

type fakeCreator struct {
	calls     int
	lastDraft notes.Draft
	lastFiles []notes.FileUpload
	err       error
}

func (f *fakeCreator) Create(_ context.Context, owner notes.UserID, draft notes.Draft, files []notes.FileUpload) (notes.Note, error) {
	f.calls++
	f.lastDraft = draft
	f.lastFiles = files
	if f.err != nil {
		return notes.Note{}, f.err
	}
	return notes.Note{
		ID:      "note-1",
		OwnerID: owner.String(),
		Title:   draft.Title,
		Content: draft.Content,
		Tags:    draft.Tags,
	}, nil
}

func newTestController(t *testing.T, creator *fakeCreator) *Controller {
	t.Helper()

	sessionContext := session.NewContext()
	if err := sessionContext.Begin(session.Session{UserID: "user-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	controller, err := NewController(ControllerConfig{Service: creator, Session: sessionContext})
	if err != nil {
		t.Fatalf("failed to construct controller: %v", err)
	}
	return controller
}

func TestSubmitCreatesNoteWithFilesAndParsedTags(t *testing.T) {
	creator := &fakeCreator{}
	controller := newTestController(t, creator)

	controller.SetTitle("Todo")
	controller.SetContent("buy milk")
	controller.SetRawTags(" personal , todo ,")
	controller.AddFile(notes.FileUpload{Name: "a.txt", ContentType: "text/plain", Data: []byte("alpha")})
	controller.AddFile(notes.FileUpload{Name: "b.txt", ContentType: "text/plain", Data: []byte("bravo")})

	created, err := controller.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "note-1" || created.OwnerID != "user-1" {
		t.Fatalf("unexpected note %+v", created)
	}
	if len(creator.lastDraft.Tags) != 2 || creator.lastDraft.Tags[0] != "personal" || creator.lastDraft.Tags[1] != "todo" {
		t.Fatalf("tags not parsed: %v", creator.lastDraft.Tags)
	}
	if len(creator.lastFiles) != 2 || creator.lastFiles[0].Name != "a.txt" {
		t.Fatalf("files not forwarded: %v", creator.lastFiles)
	}
}

func TestSubmitSuccessClearsDraft(t *testing.T) {
	creator := &fakeCreator{}
	controller := newTestController(t, creator)

	controller.SetTitle("Todo")
	controller.SetContent("buy milk")
	controller.AddFile(notes.FileUpload{Name: "a.txt"})
	if _, err := controller.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft := controller.Draft()
	if draft.Title != "" || draft.Content != "" || len(draft.Tags) != 0 {
		t.Fatalf("draft not cleared: %+v", draft)
	}
	if files := controller.Files(); len(files) != 0 {
		t.Fatalf("pending files not cleared: %v", files)
	}
}

func TestSubmitValidationBlocksRemoteCall(t *testing.T) {
	creator := &fakeCreator{}
	controller := newTestController(t, creator)

	controller.SetTitle("   ")
	controller.SetContent("body")
	_, err := controller.Submit(context.Background())
	if !errors.Is(err, notes.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if creator.calls != 0 {
		t.Fatalf("invalid draft reached the service")
	}
	if controller.Err() == nil {
		t.Fatalf("expected the failure to be recorded")
	}
}

func TestSubmitFailureKeepsDraftForRetry(t *testing.T) {
	creator := &fakeCreator{err: fmt.Errorf("wrapped: %w", notes.ErrBackendUnavailable)}
	controller := newTestController(t, creator)

	controller.SetTitle("Todo")
	controller.SetContent("buy milk")
	controller.SetRawTags("personal")
	controller.AddFile(notes.FileUpload{Name: "a.txt"})

	if _, err := controller.Submit(context.Background()); err == nil {
		t.Fatalf("expected a submit error")
	}

	draft := controller.Draft()
	if draft.Title != "Todo" || draft.Content != "buy milk" {
		t.Fatalf("failed submit discarded the draft: %+v", draft)
	}
	if files := controller.Files(); len(files) != 1 {
		t.Fatalf("failed submit discarded pending files: %v", files)
	}

	// Retry succeeds once the backend recovers.
	creator.err = nil
	if _, err := controller.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
}

func TestRemoveFileDropsOnlyTheIndexedEntry(t *testing.T) {
	controller := newTestController(t, &fakeCreator{})

	controller.AddFile(notes.FileUpload{Name: "a.txt"})
	controller.AddFile(notes.FileUpload{Name: "b.txt"})
	controller.AddFile(notes.FileUpload{Name: "c.txt"})

	controller.RemoveFile(1)
	files := controller.Files()
	if len(files) != 2 || files[0].Name != "a.txt" || files[1].Name != "c.txt" {
		t.Fatalf("unexpected files %v", files)
	}

	// Out-of-range indices are ignored.
	controller.RemoveFile(-1)
	controller.RemoveFile(10)
	if len(controller.Files()) != 2 {
		t.Fatalf("out-of-range removal changed the set")
	}
}

func TestSubmitWithoutSessionFails(t *testing.T) {
	creator := &fakeCreator{}
	controller, err := NewController(ControllerConfig{Service: creator, Session: session.NewContext()})
	if err != nil {
		t.Fatalf("failed to construct controller: %v", err)
	}
	controller.SetTitle("Todo")
	controller.SetContent("body")

	if _, err := controller.Submit(context.Background()); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if creator.calls != 0 {
		t.Fatalf("unauthenticated submit reached the service")
	}
}

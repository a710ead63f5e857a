package notes

import "errors"

var (
	// ErrBackendUnavailable indicates a remote store call failed at the transport or server level.
	ErrBackendUnavailable = errors.New("notes: backend unavailable")
	// ErrNoteNotFound indicates no note exists with the requested identifier.
	ErrNoteNotFound = errors.New("notes: note not found")
	// ErrForbidden indicates the requesting user does not own the note.
	ErrForbidden = errors.New("notes: forbidden")
	// ErrUploadFailed indicates an attachment upload failed.
	ErrUploadFailed = errors.New("notes: upload failed")
	// ErrDeleteFailed indicates an attachment deletion failed.
	ErrDeleteFailed = errors.New("notes: delete failed")
	// ErrValidation indicates client-side validation rejected the input before any remote call.
	ErrValidation = errors.New("notes: validation failed")
)

package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexonotes/nexonotes/internal/markup"
	"github.com/nexonotes/nexonotes/internal/notes"
)

type listNotesResponsePayload struct {
	Notes []notes.Note `json:"notes"`
	Tags  []string     `json:"tags"`
}

type updateNoteRequestPayload struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

// handleListNotes serves the list view: optional search term (q), tag
// filter and sort key, evaluated through the same listing pipeline the
// controllers use. The tag set always reflects the unfiltered notes.
func (h *httpHandler) handleListNotes(c *gin.Context) {
	owner, ok := h.requestOwner(c)
	if !ok {
		return
	}

	sortKey, err := notes.ParseSortKey(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_sort"})
		return
	}

	fetched, err := h.notesService.Search(c.Request.Context(), owner, c.Query("q"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	visible := notes.SortNotes(notes.FilterByTag(fetched, c.Query("tag")), sortKey)
	c.JSON(http.StatusOK, listNotesResponsePayload{
		Notes: visible,
		Tags:  notes.AllTags(fetched),
	})
}

// handleCreateNote accepts a multipart form: title, content, a raw
// comma-separated tags field, and zero or more files.
func (h *httpHandler) handleCreateNote(c *gin.Context) {
	owner, ok := h.requestOwner(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	draft := notes.Draft{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Tags:    notes.ParseTags(c.PostForm("tags")),
	}

	var files []notes.FileUpload
	for _, header := range form.File["files"] {
		opened, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_file"})
			return
		}
		data, err := io.ReadAll(opened)
		_ = opened.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_file"})
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		files = append(files, notes.FileUpload{
			Name:        header.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	created, err := h.notesService.Create(c.Request.Context(), owner, draft, files)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) handleGetNote(c *gin.Context) {
	owner, ok := h.requestOwner(c)
	if !ok {
		return
	}
	noteID, err := notes.NewNoteID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_note_id"})
		return
	}

	note, err := h.notesService.Get(c.Request.Context(), noteID, owner)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// handleRenderNote returns the note content interpreted as HTML. The
// markup is evaluated at render time only; nothing structured is stored.
func (h *httpHandler) handleRenderNote(c *gin.Context) {
	owner, ok := h.requestOwner(c)
	if !ok {
		return
	}
	noteID, err := notes.NewNoteID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_note_id"})
		return
	}

	note, err := h.notesService.Get(c.Request.Context(), noteID, owner)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	html, err := markup.RenderHTML(note.Content)
	if err != nil {
		h.logger.Error("note render failed", zap.String("note_id", note.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": note.ID, "html": html})
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	owner, ok := h.requestOwner(c)
	if !ok {
		return
	}
	noteID, err := notes.NewNoteID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_note_id"})
		return
	}

	var request updateNoteRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	updated, err := h.notesService.Update(c.Request.Context(), noteID, owner, notes.Patch{
		Title:   request.Title,
		Content: request.Content,
		Tags:    request.Tags,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	owner, ok := h.requestOwner(c)
	if !ok {
		return
	}
	noteID, err := notes.NewNoteID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_note_id"})
		return
	}

	if err := h.notesService.Delete(c.Request.Context(), noteID, owner); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) requestOwner(c *gin.Context) (notes.UserID, bool) {
	userID := c.GetString(userIDContextKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	owner, err := notes.NewUserID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return owner, true
}

// writeServiceError maps the notes error taxonomy onto HTTP statuses,
// including the service's dotted operation code when present.
func (h *httpHandler) writeServiceError(c *gin.Context, err error) {
	payload := gin.H{}
	var serviceErr *notes.ServiceError
	if errors.As(err, &serviceErr) {
		payload["code"] = serviceErr.Code()
	}

	switch {
	case errors.Is(err, notes.ErrValidation):
		payload["error"] = "validation_failed"
		c.JSON(http.StatusBadRequest, payload)
	case errors.Is(err, notes.ErrNoteNotFound):
		payload["error"] = "not_found"
		c.JSON(http.StatusNotFound, payload)
	case errors.Is(err, notes.ErrForbidden):
		payload["error"] = "forbidden"
		c.JSON(http.StatusForbidden, payload)
	case errors.Is(err, notes.ErrUploadFailed):
		payload["error"] = "upload_failed"
		c.JSON(http.StatusBadGateway, payload)
	case errors.Is(err, notes.ErrDeleteFailed):
		payload["error"] = "delete_failed"
		c.JSON(http.StatusBadGateway, payload)
	case errors.Is(err, notes.ErrBackendUnavailable):
		payload["error"] = "backend_unavailable"
		c.JSON(http.StatusServiceUnavailable, payload)
	default:
		h.logger.Error("unhandled notes service error", zap.Error(err))
		payload["error"] = "internal_error"
		c.JSON(http.StatusInternalServerError, payload)
	}
}

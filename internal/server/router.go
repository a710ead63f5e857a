package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexonotes/nexonotes/internal/notes"
	"github.com/nexonotes/nexonotes/internal/users"
)

const userIDContextKey = "nexonotes_user_id"

var (
	errMissingUsersService  = errors.New("users service dependency required")
	errMissingTokenManager  = errors.New("token manager dependency required")
	errMissingNotesService  = errors.New("notes service dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// SessionTokenManager issues and validates session tokens.
type SessionTokenManager interface {
	IssueSessionToken(ctx context.Context, userID string) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// Dependencies wires the HTTP surface to the application services.
type Dependencies struct {
	Users        *users.Service
	Tokens       SessionTokenManager
	NotesService *notes.Service
	Logger       *zap.Logger
	// AttachmentsDir, when non-empty, is served statically under
	// /attachments for the local blob profile.
	AttachmentsDir string
}

// NewHTTPHandler builds the gin router.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Users == nil {
		return nil, errMissingUsersService
	}
	if deps.Tokens == nil {
		return nil, errMissingTokenManager
	}
	if deps.NotesService == nil {
		return nil, errMissingNotesService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		users:        deps.Users,
		tokens:       deps.Tokens,
		notesService: deps.NotesService,
		logger:       logger,
	}

	router.POST("/auth/register", handler.handleRegister)
	router.POST("/auth/login", handler.handleLogin)

	if deps.AttachmentsDir != "" {
		router.Static("/attachments", deps.AttachmentsDir)
	}

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.GET("/notes", handler.handleListNotes)
	protected.POST("/notes", handler.handleCreateNote)
	protected.GET("/notes/:id", handler.handleGetNote)
	protected.GET("/notes/:id/html", handler.handleRenderNote)
	protected.PATCH("/notes/:id", handler.handleUpdateNote)
	protected.DELETE("/notes/:id", handler.handleDeleteNote)

	return router, nil
}

type httpHandler struct {
	users        *users.Service
	tokens       SessionTokenManager
	notesService *notes.Service
	logger       *zap.Logger
}

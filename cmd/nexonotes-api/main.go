package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexonotes/nexonotes/internal/auth"
	blobfs "github.com/nexonotes/nexonotes/internal/blob/fs"
	blobgcs "github.com/nexonotes/nexonotes/internal/blob/gcs"
	blobmemory "github.com/nexonotes/nexonotes/internal/blob/memory"
	"github.com/nexonotes/nexonotes/internal/config"
	"github.com/nexonotes/nexonotes/internal/database"
	"github.com/nexonotes/nexonotes/internal/logging"
	"github.com/nexonotes/nexonotes/internal/notes"
	"github.com/nexonotes/nexonotes/internal/server"
	storefirestore "github.com/nexonotes/nexonotes/internal/store/firestore"
	storememory "github.com/nexonotes/nexonotes/internal/store/memory"
	storesqlite "github.com/nexonotes/nexonotes/internal/store/sqlite"
	"github.com/nexonotes/nexonotes/internal/users"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nexonotes-api",
		Short: "NexoNotes backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("store-backend", defaults.GetString("store.backend"), "Note store backend (memory, sqlite, firestore)")
	cmd.PersistentFlags().String("blob-backend", defaults.GetString("blob.backend"), "Attachment store backend (memory, fs, gcs)")
	cmd.PersistentFlags().String("blob-dir", defaults.GetString("blob.dir"), "Local attachment directory (fs backend)")
	cmd.PersistentFlags().String("blob-base-url", defaults.GetString("blob.base_url"), "Public base URL for local attachments")
	cmd.PersistentFlags().String("gcp-project", "", "GCP project id (firestore backend)")
	cmd.PersistentFlags().String("gcs-bucket", "", "GCS bucket (gcs backend)")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("token.ttl_minutes"), "Session token TTL in minutes")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("signing-secret", "", "Session signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "store.backend", "store-backend")
	bindFlag(cmd, "blob.backend", "blob-backend")
	bindFlag(cmd, "blob.dir", "blob-dir")
	bindFlag(cmd, "blob.base_url", "blob-base-url")
	bindFlag(cmd, "gcp.project", "gcp-project")
	bindFlag(cmd, "gcs.bucket", "gcs-bucket")
	bindFlag(cmd, "token.ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	usersService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		return err
	}

	noteStore, closeStore, err := buildNoteStore(ctx, appConfig, db)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	blobStore, attachmentsDir, closeBlobs, err := buildBlobStore(ctx, appConfig)
	if err != nil {
		return err
	}
	if closeBlobs != nil {
		defer closeBlobs()
	}

	notesService, err := notes.NewService(notes.ServiceConfig{
		Store:      noteStore,
		Blobs:      blobStore,
		IDProvider: notes.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        "nexonotes-auth",
		Audience:      "nexonotes-api",
		TokenTTL:      appConfig.TokenTTL,
	})

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Users:          usersService,
		Tokens:         tokenManager,
		NotesService:   notesService,
		Logger:         logger,
		AttachmentsDir: attachmentsDir,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("store_backend", appConfig.StoreBackend),
			zap.String("blob_backend", appConfig.BlobBackend))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func buildNoteStore(ctx context.Context, appConfig config.AppConfig, db *gorm.DB) (notes.Store, func() error, error) {
	switch appConfig.StoreBackend {
	case config.StoreMemory:
		return storememory.NewStore(nil, nil), nil, nil
	case config.StoreFirestore:
		store, err := storefirestore.NewStore(ctx, appConfig.GCPProject)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := storesqlite.NewStore(storesqlite.StoreConfig{Database: db})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

func buildBlobStore(ctx context.Context, appConfig config.AppConfig) (notes.BlobStore, string, func() error, error) {
	switch appConfig.BlobBackend {
	case config.BlobMemory:
		return blobmemory.NewStore(nil), "", nil, nil
	case config.BlobGCS:
		store, err := blobgcs.NewStore(ctx, blobgcs.StoreConfig{Bucket: appConfig.GCSBucket})
		if err != nil {
			return nil, "", nil, err
		}
		return store, "", store.Close, nil
	default:
		store, err := blobfs.NewStore(blobfs.StoreConfig{
			Root:    appConfig.BlobDir,
			BaseURL: appConfig.BlobBaseURL,
		})
		if err != nil {
			return nil, "", nil, err
		}
		return store, store.Root(), nil, nil
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "NEXONOTES"
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultDatabasePath   = "nexonotes.db"
	defaultLogLevel       = "info"
	defaultStoreBackend   = "sqlite"
	defaultBlobBackend    = "fs"
	defaultBlobDir        = "attachments"
	defaultBlobBaseURL    = "http://localhost:8080/attachments"
	defaultTokenTTLMins   = 60
	defaultDebounceMillis = 300
)

// Store and blob backend selectors.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"

	BlobMemory = "memory"
	BlobFS     = "fs"
	BlobGCS    = "gcs"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress    string
	DatabasePath   string
	LogLevel       string
	SigningSecret  string
	TokenTTL       time.Duration
	StoreBackend   string
	BlobBackend    string
	BlobDir        string
	BlobBaseURL    string
	GCPProject     string
	GCSBucket      string
	SearchDebounce time.Duration
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("store.backend", defaultStoreBackend)
	configViper.SetDefault("blob.backend", defaultBlobBackend)
	configViper.SetDefault("blob.dir", defaultBlobDir)
	configViper.SetDefault("blob.base_url", defaultBlobBaseURL)
	configViper.SetDefault("token.ttl_minutes", defaultTokenTTLMins)
	configViper.SetDefault("search.debounce_ms", defaultDebounceMillis)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		DatabasePath:   configViper.GetString("database.path"),
		LogLevel:       configViper.GetString("log.level"),
		SigningSecret:  configViper.GetString("auth.signing_secret"),
		TokenTTL:       time.Duration(configViper.GetInt("token.ttl_minutes")) * time.Minute,
		StoreBackend:   configViper.GetString("store.backend"),
		BlobBackend:    configViper.GetString("blob.backend"),
		BlobDir:        configViper.GetString("blob.dir"),
		BlobBaseURL:    configViper.GetString("blob.base_url"),
		GCPProject:     configViper.GetString("gcp.project"),
		GCSBucket:      configViper.GetString("gcs.bucket"),
		SearchDebounce: time.Duration(configViper.GetInt("search.debounce_ms")) * time.Millisecond,
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.StoreBackend {
	case StoreMemory, StoreSQLite:
	case StoreFirestore:
		if strings.TrimSpace(c.GCPProject) == "" {
			return fmt.Errorf("gcp.project is required for the firestore store backend")
		}
	default:
		return fmt.Errorf("store.backend must be one of memory, sqlite, firestore")
	}
	switch c.BlobBackend {
	case BlobMemory:
	case BlobFS:
		if strings.TrimSpace(c.BlobDir) == "" {
			return fmt.Errorf("blob.dir is required for the fs blob backend")
		}
	case BlobGCS:
		if strings.TrimSpace(c.GCSBucket) == "" {
			return fmt.Errorf("gcs.bucket is required for the gcs blob backend")
		}
	default:
		return fmt.Errorf("blob.backend must be one of memory, fs, gcs")
	}
	return nil
}

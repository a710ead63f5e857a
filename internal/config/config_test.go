package config

import (
	"strings"
	"testing"
	"time"
)

func loadConfig(t *testing.T, overrides map[string]any) (AppConfig, error) {
	t.Helper()

	configViper := NewViper()
	configViper.Set("auth.signing_secret", "test-secret")
	for key, value := range overrides {
		configViper.Set(key, value)
	}
	return Load(configViper)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := loadConfig(t, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != "0.0.0.0:8080" {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.StoreBackend != StoreSQLite || cfg.BlobBackend != BlobFS {
		t.Fatalf("unexpected backends %q / %q", cfg.StoreBackend, cfg.BlobBackend)
	}
	if cfg.TokenTTL != 60*time.Minute {
		t.Fatalf("unexpected token ttl %v", cfg.TokenTTL)
	}
	if cfg.SearchDebounce != 300*time.Millisecond {
		t.Fatalf("unexpected search debounce %v", cfg.SearchDebounce)
	}
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	configViper := NewViper()
	_, err := Load(configViper)
	if err == nil || !strings.Contains(err.Error(), "signing_secret") {
		t.Fatalf("expected a signing secret error, got %v", err)
	}
}

func TestLoadValidatesBackendSelectors(t *testing.T) {
	cases := []struct {
		name      string
		overrides map[string]any
		wantPiece string
	}{
		{
			name:      "unknown-store",
			overrides: map[string]any{"store.backend": "dynamo"},
			wantPiece: "store.backend",
		},
		{
			name:      "unknown-blob",
			overrides: map[string]any{"blob.backend": "s3"},
			wantPiece: "blob.backend",
		},
		{
			name:      "firestore-without-project",
			overrides: map[string]any{"store.backend": StoreFirestore},
			wantPiece: "gcp.project",
		},
		{
			name:      "gcs-without-bucket",
			overrides: map[string]any{"blob.backend": BlobGCS},
			wantPiece: "gcs.bucket",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(t, tc.overrides)
			if err == nil || !strings.Contains(err.Error(), tc.wantPiece) {
				t.Fatalf("expected an error mentioning %q, got %v", tc.wantPiece, err)
			}
		})
	}
}

func TestLoadAcceptsHostedBackends(t *testing.T) {
	cfg, err := loadConfig(t, map[string]any{
		"store.backend": StoreFirestore,
		"gcp.project":   "demo-project",
		"blob.backend":  BlobGCS,
		"gcs.bucket":    "demo-bucket",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GCPProject != "demo-project" || cfg.GCSBucket != "demo-bucket" {
		t.Fatalf("hosted backend settings not loaded: %+v", cfg)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"sharilka/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "sharilka"
database:
  path: "test.db"
api:
  port: 9000
pagination:
  default_size: 5
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("expected api port 9000, got %d", cfg.API.Port)
	}
	if cfg.Pagination.DefaultSize != 5 {
		t.Errorf("expected default page size 5, got %d", cfg.Pagination.DefaultSize)
	}
	if cfg.Pagination.MaxSize != models.MaxPageSize {
		t.Errorf("expected default max page size %d, got %d", models.MaxPageSize, cfg.Pagination.MaxSize)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SHARILKA_DB_PATH", "/var/lib/sharilka/data.db")

	yamlContent := `
database:
  path: "${SHARILKA_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "/var/lib/sharilka/data.db" {
		t.Errorf("expected expanded database path, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database:   DatabaseConfig{Path: "path"},
				Pagination: PaginationConfig{DefaultSize: 10, MaxSize: 100},
			},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "default page size above max",
			cfg: Config{
				Database:   DatabaseConfig{Path: "path"},
				Pagination: PaginationConfig{DefaultSize: 200, MaxSize: 100},
			},
			wantErr: true,
		},
		{
			name: "auth enabled without keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API:      APIConfig{Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.API.Port != 8080 {
		t.Errorf("expected default api port 8080, got %d", cfg.API.Port)
	}
	if cfg.Pagination.DefaultSize != models.DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", models.DefaultPageSize, cfg.Pagination.DefaultSize)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.API.RateLimit.RPS != models.RateLimitRPSDefault {
		t.Errorf("expected default rate limit rps %d, got %f", models.RateLimitRPSDefault, cfg.API.RateLimit.RPS)
	}
	if cfg.Exports.Path != "exports" {
		t.Errorf("expected default exports path, got %s", cfg.Exports.Path)
	}
}

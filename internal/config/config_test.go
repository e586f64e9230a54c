package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Verbose", cfg.Verbose, false},
		{"JSONOutput", cfg.JSONOutput, false},
		{"CacheEnabled", cfg.CacheEnabled, true},
		{"CacheMaxEntries", cfg.CacheMaxEntries, 1024},
		{"MaxFileSize", cfg.MaxFileSize, int64(1024 * 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if cfg.CacheDir == "" {
		t.Error("DefaultConfig().CacheDir is empty")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		wantErr     bool
		errContains string
	}{
		{
			name:    "defaults are valid",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name: "zero max entries",
			cfg: &Config{
				CacheEnabled:    true,
				CacheDir:        "/tmp/gbq-cache",
				CacheMaxEntries: 0,
				MaxFileSize:     1024,
			},
			wantErr:     true,
			errContains: "cache_max_entries",
		},
		{
			name: "zero max file size",
			cfg: &Config{
				CacheEnabled:    true,
				CacheDir:        "/tmp/gbq-cache",
				CacheMaxEntries: 10,
				MaxFileSize:     0,
			},
			wantErr:     true,
			errContains: "max_file_size",
		},
		{
			name: "cache enabled without dir",
			cfg: &Config{
				CacheEnabled:    true,
				CacheDir:        "",
				CacheMaxEntries: 10,
				MaxFileSize:     1024,
			},
			wantErr:     true,
			errContains: "cache_dir",
		},
		{
			name: "cache disabled without dir",
			cfg: &Config{
				CacheEnabled:    false,
				CacheDir:        "",
				CacheMaxEntries: 10,
				MaxFileSize:     1024,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() returned nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error = %q, want it to contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() returned %v, want nil", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GBQ_VERBOSE", "true")
	t.Setenv("GBQ_JSON_OUTPUT", "1")
	t.Setenv("GBQ_CACHE_ENABLED", "false")
	t.Setenv("GBQ_CACHE_DIR", "/tmp/other-cache")
	t.Setenv("GBQ_CACHE_MAX_ENTRIES", "42")
	t.Setenv("GBQ_MAX_FILE_SIZE", "2048")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if !cfg.Verbose {
		t.Error("GBQ_VERBOSE=true not applied")
	}
	if !cfg.JSONOutput {
		t.Error("GBQ_JSON_OUTPUT=1 not applied")
	}
	if cfg.CacheEnabled {
		t.Error("GBQ_CACHE_ENABLED=false not applied")
	}
	if cfg.CacheDir != "/tmp/other-cache" {
		t.Errorf("CacheDir = %q, want /tmp/other-cache", cfg.CacheDir)
	}
	if cfg.CacheMaxEntries != 42 {
		t.Errorf("CacheMaxEntries = %d, want 42", cfg.CacheMaxEntries)
	}
	if cfg.MaxFileSize != 2048 {
		t.Errorf("MaxFileSize = %d, want 2048", cfg.MaxFileSize)
	}
}

func TestEnvOverridesIgnoreInvalidValues(t *testing.T) {
	t.Setenv("GBQ_CACHE_MAX_ENTRIES", "not-a-number")
	t.Setenv("GBQ_MAX_FILE_SIZE", "-5")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.CacheMaxEntries != 1024 {
		t.Errorf("CacheMaxEntries = %d, want default 1024", cfg.CacheMaxEntries)
	}
	if cfg.MaxFileSize != 1024*1024 {
		t.Errorf("MaxFileSize = %d, want default %d", cfg.MaxFileSize, 1024*1024)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Verbose = true
	cfg.CacheMaxEntries = 7

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if !loaded.Verbose {
		t.Error("loaded Verbose = false, want true")
	}
	if loaded.CacheMaxEntries != 7 {
		t.Errorf("loaded CacheMaxEntries = %d, want 7", loaded.CacheMaxEntries)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("LoadFromFile() returned nil for missing file, want error")
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("verbose: [not valid"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("LoadFromFile() returned nil for invalid YAML, want error")
	}
}

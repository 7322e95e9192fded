package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Extraction.Workers <= 0 || cfg.Batch.Workers <= 0 {
		t.Errorf("expected positive worker defaults, got %+v %+v", cfg.Extraction, cfg.Batch)
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled by default")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_EXPORT_ROOT", "/srv/sheets")

		result := ResolveEnvVars("${TEST_EXPORT_ROOT}/unit-100")
		if result != "/srv/sheets/unit-100" {
			t.Errorf("expected /srv/sheets/unit-100, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
project:
  name: "Refinery Upgrade"
  site: "HOU"
author: "qa"
extraction:
  workers: 8
`)
		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Project.Name != "Refinery Upgrade" || cfg.Project.Site != "HOU" {
			t.Errorf("unexpected project: %+v", cfg.Project)
		}
		if cfg.Author != "qa" {
			t.Errorf("expected author qa, got %s", cfg.Author)
		}
		if cfg.Extraction.Workers != 8 {
			t.Errorf("expected 8 workers, got %d", cfg.Extraction.Workers)
		}
		// Unset keys keep defaults
		if cfg.Batch.Workers != DefaultConfig().Batch.Workers {
			t.Errorf("expected default batch workers, got %d", cfg.Batch.Workers)
		}
		if mgr.File() != configFile {
			t.Errorf("expected File() %s, got %s", configFile, mgr.File())
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		configFile := writeConfig(t, "server:\n  port: \"9000\"\n")
		t.Setenv("TAGSHEET_SERVER_PORT", "9100")
		t.Setenv("TAGSHEET_PROJECT_CLIENT_NAME", "Acme")

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Server.Port != "9100" {
			t.Errorf("expected port 9100, got %s", cfg.Server.Port)
		}
		if cfg.Project.ClientName != "Acme" {
			t.Errorf("expected client Acme, got %s", cfg.Project.ClientName)
		}
	})

	t.Run("resolves env refs in paths", func(t *testing.T) {
		t.Setenv("TEST_SHEETS", "/data")
		configFile := writeConfig(t, "output:\n  dir: \"${TEST_SHEETS}/out\"\n")

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if got := mgr.Get().Output.Dir; got != "/data/out" {
			t.Errorf("expected /data/out, got %s", got)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configFile := writeConfig(t, "project: [unterminated\n")
		if _, err := NewManager(configFile); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

func TestConfig_ProjectInfo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Project = ProjectCfg{Name: "P", ClientName: "C", Site: "S", UnitCode: "U"}

	p := cfg.ProjectInfo()
	if p.Name != "P" || p.ClientName != "C" || p.SiteDefault != "S" || p.UnitCodeDefault != "U" {
		t.Errorf("ProjectInfo() = %+v", p)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("failed to load written default: %v", err)
	}
	got, want := mgr.Get(), DefaultConfig()
	if got.Server != want.Server || got.Extraction != want.Extraction || got.LogLevel != want.LogLevel {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "author: a\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Register multiple callbacks
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "author: a\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Call Get concurrently to verify no race conditions
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				cfg := mgr.Get()
				_ = cfg.Author
			}
			done <- struct{}{}
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, "author: \"initial\"\n")

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	if got := mgr.Get().Author; got != "initial" {
		t.Errorf("initial value mismatch: expected initial, got %s", got)
	}

	var callbackCount atomic.Int32
	var lastValue atomic.Value

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(cfg.Author)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("author: \"updated\"\n"), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// Wait for the watcher to detect the change (fsnotify is async)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := lastValue.Load().(string); ok && v == "updated" {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if v, _ := lastValue.Load().(string); v != "updated" {
		t.Errorf("expected updated, got %s", v)
	}
	if got := mgr.Get().Author; got != "updated" {
		t.Errorf("Get() after reload: expected updated, got %s", got)
	}
}

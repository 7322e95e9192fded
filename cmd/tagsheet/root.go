package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/api"
	"github.com/jackzampolin/tagsheet/internal/config"
	"github.com/jackzampolin/tagsheet/internal/history"
	"github.com/jackzampolin/tagsheet/internal/home"
	"github.com/jackzampolin/tagsheet/internal/pipeline"
	"github.com/jackzampolin/tagsheet/internal/tags"
	"github.com/jackzampolin/tagsheet/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "tagsheet",
	Short: "P&ID tag extraction and tag sheet generation",
	Long: `Tagsheet reads piping and instrumentation drawings (PDF, text or
JSON page text), extracts engineering tags and writes a tag sheet workbook.

Tags are sorted into four categories:
  - Equipment (pumps, vessels, exchangers, ...)
  - Instruments (ISA function letters + loop number)
  - Control valves
  - Line numbers (size-service-number-material)`,
	Version:       version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.tagsheet/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "tagsheet home directory (default: ~/.tagsheet)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error (default: from config)",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := api.ParseOutputFormat(outputFormat); err != nil {
			return err
		}
		api.SetOutputFormat(outputFormat)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory, creating it if needed.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// loadConfig reads --config, falling back to the home directory's config
// file when one exists.
func loadConfig(h *home.Dir) (*config.Manager, error) {
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	return config.NewManager(path)
}

// newLogger logs to stderr so structured command output on stdout stays
// machine readable.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if logLevel != "" {
		level = config.ParseLevel(logLevel)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// environment is what local (non-server) commands share.
type environment struct {
	home    *home.Dir
	cfg     *config.Config
	logger  *slog.Logger
	runner  *pipeline.Runner
	history *history.Store
}

func (e *environment) Close() {
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			e.logger.Warn("failed to close run history", "error", err)
		}
	}
}

// setup loads config and builds a runner that records into local history.
func setup() (*environment, error) {
	h, err := getHome()
	if err != nil {
		return nil, err
	}
	mgr, err := loadConfig(h)
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()
	env := &environment{home: h, cfg: cfg, logger: newLogger(cfg)}

	runnerCfg := pipeline.Config{
		Logger:       env.logger,
		Extractor:    tags.NewExtractor(tags.ExtractorConfig{Workers: cfg.Extraction.Workers}),
		BatchWorkers: cfg.Batch.Workers,
	}
	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			path = h.HistoryPath()
		}
		store, err := history.Open(path)
		if err != nil {
			// Extraction still works without history.
			env.logger.Warn("run history unavailable", "path", path, "error", err)
		} else {
			env.history = store
			runnerCfg.History = store
		}
	}
	env.runner = pipeline.New(runnerCfg)
	return env, nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/server"
)

var (
	serveHost    string
	servePort    string
	swaggerPath  string
	maxUploadMiB int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tagsheet server",
	Long: `Start the tagsheet HTTP server.

The server opens the run history database on start and closes it on
shutdown (Ctrl+C or SIGTERM). Config file changes are picked up while
running.

The server provides:
  - /health         - Basic server health check
  - /ready          - Readiness check (includes run history)
  - /status         - Project defaults and run totals
  - /api/extract    - Extract tags from JSON pages or an uploaded document
  - /api/tagsheet   - Extract and return the tag sheet workbook
  - /api/runs       - Run history
  - /metrics        - Prometheus metrics
  - /swagger.json   - OpenAPI document

Examples:
  tagsheet serve                    # Start on server.host:server.port
  tagsheet serve --port 3000        # Start on custom port
  tagsheet serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}
		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		logger := newLogger(cfg)
		if file := mgr.File(); file != "" {
			logger.Info("loaded config", "file", file)
			mgr.WatchConfig()
		}

		host, port := cfg.Server.Host, cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(server.Config{
			Host:            host,
			Port:            port,
			ConfigManager:   mgr,
			Home:            h,
			Logger:          logger,
			SwaggerSpecPath: swaggerPath,
			MaxUploadBytes:  maxUploadMiB << 20,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to (default: server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on (default: server.port)")
	serveCmd.Flags().StringVar(&swaggerPath, "swagger", "", "Serve this OpenAPI file instead of the embedded one")
	serveCmd.Flags().Int64Var(&maxUploadMiB, "max-upload-mb", 64, "Maximum upload size in MiB")

	rootCmd.AddCommand(serveCmd)
}

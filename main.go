package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"photoreview/internal/config"
	"photoreview/internal/logging"
	"photoreview/internal/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var settingsOverride string

var (
	serveBind      string
	servePort      int
	serveSettings  string
	serveStaticDir string
	serveDev       bool
)

var rootCmd = &cobra.Command{
	Use:   "photoreview",
	Short: "Review, cull and organize photo folders from a browser",
	Long: `photoreview serves a local web tool for culling photo and video folders.

It pairs JPG files with their RAW siblings, renders previews, and moves,
restores or deletes whole items in batches, only ever inside the configured
mount points.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "Address to bind (overrides PHOTOREVIEW_HTTP_BIND)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PHOTOREVIEW_HTTP_PORT)")
	serveCmd.Flags().StringVar(&serveSettings, "settings", "", "Settings document path (overrides PHOTOREVIEW_SETTINGS_FILE)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "Directory holding the browser UI (overrides PHOTOREVIEW_STATIC_DIR)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Run in development mode (do not serve static files)")

	rootCmd.PersistentFlags().StringVar(&settingsOverride, "config", "", "Settings document path for scan and thumbs")

	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it). Logs go
// to logOut so commands that print results keep stdout clean.
func loadConfig(logOut io.Writer) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if settingsOverride != "" {
		cfg.SettingsFile = settingsOverride
	}
	logger = logging.SetupWithWriter(cfg.Environment, logOut)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(os.Stdout); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("bind") {
		cfg.HTTPBind = serveBind
	}
	if flags.Changed("port") {
		cfg.HTTPPort = servePort
	}
	if flags.Changed("settings") {
		cfg.SettingsFile = serveSettings
	}
	if flags.Changed("static-dir") {
		cfg.StaticDir = serveStaticDir
	}
	if serveDev {
		cfg.StaticDir = ""
		logger.Info().Msg("running in dev mode, UI not served")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Info().Str("version", version).Str("settings", cfg.SettingsFile).Msg("photoreview starting")

	srv, err := server.New(cfg, version, logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	httpServer := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info().Msg("shutting down gracefully...")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("photoreview stopped")
	return nil
}

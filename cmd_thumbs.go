package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"photoreview/internal/preview"
)

var thumbsWorkers int

var thumbsCmd = &cobra.Command{
	Use:   "thumbs PATH",
	Short: "Generate missing thumbnails for a folder",
	Long: `Scan a folder and fill the thumbnail cache for every item in it.

Runs in the foreground and returns when every item has been handled.
Already cached thumbnails are left alone. Ctrl-C stops early.
`,
	Args: cobra.ExactArgs(1),
	RunE: runThumbs,
}

func init() {
	thumbsCmd.Flags().IntVarP(&thumbsWorkers, "workers", "w", preview.DefaultWorkers, "Concurrent thumbnail workers")
	rootCmd.AddCommand(thumbsCmd)
}

func runThumbs(cmd *cobra.Command, args []string) error {
	if err := loadConfig(os.Stderr); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.ThumbnailDir, 0o755); err != nil {
		return fmt.Errorf("create thumbnail dir: %w", err)
	}

	items, err := newScanner().Scan(args[0])
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, it.DisplayPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frames := preview.FFmpeg{Bin: cfg.FFmpegBin, Timeout: cfg.VideoFrameTimeout}
	renderer := preview.NewRenderer(cfg.ThumbnailDir, cfg.ThumbnailSize, frames, logger)
	stats := renderer.Warm(ctx, paths, thumbsWorkers)

	fmt.Fprintf(cmd.OutOrStdout(), "%d items: %d generated, %d cached, %d failed, %d skipped\n",
		stats.Total, stats.Generated, stats.Cached, stats.Failed, stats.Skipped)
	if stats.Failed > 0 {
		return fmt.Errorf("%d thumbnails failed", stats.Failed)
	}
	return nil
}

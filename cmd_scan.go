package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"photoreview/internal/config"
	"photoreview/internal/exifmeta"
	"photoreview/internal/pathguard"
	"photoreview/internal/scan"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan PATH",
	Short: "List the media items of a folder",
	Long: `Scan one folder the way the browser UI does and print its items.

The folder must lie inside one of the configured mount points.

Examples:
  photoreview scan /data1/2024-06-01
  photoreview scan /data1/2024-06-01 --json
`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print items as JSON")
	rootCmd.AddCommand(scanCmd)
}

// newScanner builds a scanner from the current settings document.
func newScanner() *scan.Scanner {
	settings := config.NewSettingsStore(cfg.SettingsFile, logger).Load()
	return scan.New(pathguard.New(settings.MountPoints), exifmeta.New(), logger)
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := loadConfig(os.Stderr); err != nil {
		return err
	}

	items, err := newScanner().Scan(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tBRAND\tMODEL\tSIZE")
	var total int64
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.Name, it.Pairing, it.CameraBrand, it.CameraModel, humanSize(it.SizeBytes))
		total += it.SizeBytes
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d items, %s\n", len(items), humanSize(total))
	return nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/imgforge/internal/manifest"
	"github.com/AnyUserName/imgforge/internal/respack"
	"github.com/spf13/cobra"
)

var (
	packOut       string
	packQuality   int
	packRecursive bool
	packInclude   []string
	packExclude   []string
	packWorkers   int
)

var packCmd = &cobra.Command{
	Use:   "pack <input_dir>",
	Short: "Encode a directory of images into a resource manifest",
	Long: `Scans the input directory for images (png, jpg, jpeg, gif, bmp,
tiff, webp by default), re-compresses each at the configured quality and
writes a single deterministic manifest file mapping logical names to
encoded payloads. Lossless formats keep their pixels; quality applies to
lossy re-encoding only.

Running twice over an unchanged tree produces a byte-identical manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOut, "out", "o", "./imgforge.manifest.json", "output manifest path")
	packCmd.Flags().IntVarP(&packQuality, "quality", "q", 85, "compression quality 1-100")
	packCmd.Flags().BoolVarP(&packRecursive, "recursive", "r", true, "descend into subdirectories")
	packCmd.Flags().StringSliceVar(&packInclude, "include", nil, "formats to include (default: all supported)")
	packCmd.Flags().StringSliceVar(&packExclude, "exclude", nil, "glob patterns to exclude")
	packCmd.Flags().IntVarP(&packWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	rootCmd.AddCommand(packCmd)
}

func runPack(_ *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOut, err := filepath.Abs(packOut)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	logVerbose("input:    %s", absInput)
	logVerbose("manifest: %s", absOut)
	logVerbose("quality:  %d, recursive: %t", packQuality, packRecursive)

	p := respack.New(respack.Options{
		Root:            absInput,
		Quality:         packQuality,
		Recursive:       packRecursive,
		IncludeFormats:  packInclude,
		ExcludePatterns: packExclude,
		Workers:         packWorkers,
		Verbose:         verbose,
	})

	m, sum, err := p.Run()
	if err != nil {
		if errors.Is(err, respack.ErrNameCollision) {
			return fmt.Errorf("pack: %w (rename one of the files)", err)
		}
		return fmt.Errorf("pack: %w", err)
	}

	if err := manifest.WriteJSON(m, absOut); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printPackReport(m, sum, time.Since(start))

	if sum.Errored > 0 {
		fmt.Printf("  Errors (%d):\n", sum.Errored)
		for _, e := range sum.Errors {
			fmt.Printf("    ✗ %s\n", e)
		}
		fmt.Println()
	}
	return nil
}

func printPackReport(m *manifest.Manifest, sum *respack.Summary, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║              imgforge pack complete              ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	ratio := float64(0)
	if m.Stats.TotalSourceBytes > 0 {
		ratio = float64(m.Stats.TotalPayloadBytes) / float64(m.Stats.TotalSourceBytes) * 100
	}

	fmt.Printf("  Entries:     %d\n", sum.Processed)
	fmt.Printf("  Skipped:     %d\n", sum.Skipped)
	fmt.Printf("  Errored:     %d\n", sum.Errored)
	fmt.Printf("  Input size:  %s\n", formatBytes(m.Stats.TotalSourceBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(m.Stats.TotalPayloadBytes))
	fmt.Printf("  Ratio:       %.1f%% of original\n", ratio)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	// Top 10 heaviest entries.
	if len(m.Entries) > 0 {
		items := make([]manifest.Entry, len(m.Entries))
		copy(items, m.Entries)
		sort.Slice(items, func(i, j int) bool {
			return items[i].SourceSize > items[j].SourceSize
		})
		n := len(items)
		if n > 10 {
			n = 10
		}
		fmt.Printf("  Top %d heaviest (original → embedded):\n", n)
		for _, it := range items[:n] {
			saved := float64(0)
			if it.SourceSize > 0 {
				saved = (1 - float64(it.Size)/float64(it.SourceSize)) * 100
			}
			fmt.Printf("    %-40s %8s → %8s  (−%.0f%%)\n",
				truncKey(it.Name, 40),
				formatBytes(it.SourceSize),
				formatBytes(it.Size),
				saved,
			)
		}
		fmt.Println()
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/imgforge/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <manifest_or_dir>",
	Short: "Display statistics for a resource manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	// If path is a directory, look for the manifest inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "imgforge.manifest.json")
	}

	m, err := manifest.ReadJSON(path)
	if err != nil {
		return err
	}

	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Quality:          %d\n", m.Quality)
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total entries:    %d\n", s.TotalEntries)
	fmt.Printf("  Source size:      %s\n", formatBytes(s.TotalSourceBytes))
	fmt.Printf("  Payload size:     %s\n", formatBytes(s.TotalPayloadBytes))
	if s.TotalSourceBytes > 0 {
		ratio := float64(s.TotalPayloadBytes) / float64(s.TotalSourceBytes) * 100
		fmt.Printf("  Compression:      %.1f%% of original\n", ratio)
	}
	fmt.Println()

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, e := range m.Entries {
		fs := formatStats[e.Format]
		fs.count++
		fs.bytes += e.Size
		formatStats[e.Format] = fs
	}

	fmt.Println("  Format breakdown:")
	for _, f := range []string{"webp", "jpeg", "png", "gif"} {
		if fs, ok := formatStats[f]; ok {
			fmt.Printf("    %-6s  %4d entries  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
	}
	fmt.Println()

	// Dimension breakdown.
	dimStats := map[string]int{}
	for _, e := range m.Entries {
		dimStats[fmt.Sprintf("%dx%d", e.Width, e.Height)]++
	}
	var dims []string
	for d := range dimStats {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	fmt.Println("  Dimension breakdown:")
	for _, d := range dims {
		fmt.Printf("    %10s  %4d entries\n", d, dimStats[d])
	}
	fmt.Println()

	// Warnings.
	var warnings []string
	for _, e := range m.Entries {
		if e.Size > e.SourceSize && e.SourceSize > 0 {
			warnings = append(warnings, fmt.Sprintf("entry %q grew: %s → %s",
				e.Name, formatBytes(e.SourceSize), formatBytes(e.Size)))
		}
	}
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}

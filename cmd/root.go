package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "imgforge",
	Short: "Image transform pipeline and resource embedder for desktop GUI apps",
	Long: `imgforge — prepares images for desktop GUI applications.

Renders a source image through a fixed, deterministic transform pipeline
(resize, rotation, grayscale, tint, contrast, saturation, transparency,
theme adaptation), and packs whole directories of images into a single
deterministic resource manifest for static embedding.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgforge %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[imgforge] "+format+"\n", args...)
	}
}

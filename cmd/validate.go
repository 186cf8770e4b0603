package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AnyUserName/imgforge/internal/hasher"
	"github.com/AnyUserName/imgforge/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a resource manifest's integrity",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	errors := validateManifest(&m)

	if len(errors) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d entries, %s of payload — all hashes match\n",
			m.Stats.TotalEntries, formatBytes(m.Stats.TotalPayloadBytes))
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func validateManifest(m *manifest.Manifest) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if m.Quality < 1 || m.Quality > 100 {
		errs = append(errs, fmt.Sprintf("quality %d outside 1-100", m.Quality))
	}

	seen := map[string]bool{}
	for i, e := range m.Entries {
		if e.Name == "" {
			errs = append(errs, fmt.Sprintf("entry[%d]: empty name", i))
			continue
		}
		if seen[e.Name] {
			errs = append(errs, fmt.Sprintf("entry[%d]: duplicate name %q", i, e.Name))
		}
		seen[e.Name] = true

		if e.Format == "" {
			errs = append(errs, fmt.Sprintf("entry %q: empty format", e.Name))
		}
		if e.Width <= 0 || e.Height <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid dimensions %dx%d", e.Name, e.Width, e.Height))
		}
		if len(e.Data) == 0 {
			errs = append(errs, fmt.Sprintf("entry %q: empty payload", e.Name))
			continue
		}
		if int64(len(e.Data)) != e.Size {
			errs = append(errs, fmt.Sprintf("entry %q: size mismatch: manifest=%d, payload=%d",
				e.Name, e.Size, len(e.Data)))
		}
		if got := hasher.ContentHash(e.Data, 16); got != e.Hash {
			errs = append(errs, fmt.Sprintf("entry %q: hash mismatch: manifest=%s, payload=%s",
				e.Name, e.Hash, got))
		}
	}

	// Verify stats consistency.
	var payloadBytes int64
	for _, e := range m.Entries {
		payloadBytes += e.Size
	}
	if m.Stats.TotalEntries != len(m.Entries) {
		errs = append(errs, fmt.Sprintf("stats.total_entries mismatch: %d != %d",
			m.Stats.TotalEntries, len(m.Entries)))
	}
	if m.Stats.TotalPayloadBytes != payloadBytes {
		errs = append(errs, fmt.Sprintf("stats.total_payload_bytes mismatch: %d != %d",
			m.Stats.TotalPayloadBytes, payloadBytes))
	}

	return errs
}

package respack

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/imgforge/internal/codec"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the slash-separated path relative to the scan root.
	RelPath string
	// Name is the logical resource name (RelPath without extension).
	Name string
	// Format is the normalized source format implied by the extension.
	Format string
	// Size is the file size in bytes.
	Size int64
}

// defaultIncludeFormats lists the formats scanned when the caller passes
// no include list.
var defaultIncludeFormats = []string{"png", "jpeg", "gif", "bmp", "tiff", "webp"}

// scan walks root and returns matching sources in lexicographic order by
// relative path, which makes repeated runs over unchanged input
// deterministic. skipped counts files seen but filtered out; filtering is
// silent, not an error.
func scan(root string, recursive bool, include, exclude []string) (sources []Source, skipped int, err error) {
	includeSet := make(map[string]bool, len(include))
	if len(include) == 0 {
		include = defaultIncludeFormats
	}
	for _, f := range include {
		includeSet[codec.NormalizeFormat(f)] = true
	}

	// Reject malformed globs before walking.
	for _, pat := range exclude {
		if _, err := path.Match(pat, "probe"); err != nil {
			return nil, 0, fmt.Errorf("exclude pattern %q: %w", pat, err)
		}
	}

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == root {
				return nil
			}
			// Skip hidden directories.
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		ext := filepath.Ext(p)
		format := codec.NormalizeFormat(ext)
		if !includeSet[format] {
			skipped++
			return nil
		}
		if excluded(rel, exclude) {
			skipped++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: p,
			RelPath: rel,
			Name:    strings.TrimSuffix(rel, ext),
			Format:  format,
			Size:    info.Size(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, 0, walkErr
	}
	return sources, skipped, nil
}

// excluded reports whether the slash-separated relative path, or its base
// name, matches any exclude glob.
func excluded(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
	}
	return false
}

// statRoot verifies the scan root exists and is a directory.
func statRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	return nil
}

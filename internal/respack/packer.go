// Package respack walks a directory of images and deterministically
// serializes them into a single loadable resource manifest.
package respack

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/AnyUserName/imgforge/internal/codec"
	"github.com/AnyUserName/imgforge/internal/hasher"
	"github.com/AnyUserName/imgforge/internal/manifest"
)

// ErrNameCollision is returned when two source files map to the same
// logical name (e.g. icons/a.png and icons/a.jpg). Manifest integrity
// cannot be repaired silently, so this is a hard error.
var ErrNameCollision = errors.New("logical name collision")

// ErrInvalidQuality is returned before any file work when quality is
// outside 1-100.
var ErrInvalidQuality = errors.New("quality outside 1-100")

// FileError records one failed source file. Per-file failures are
// collected, not fatal; the run fails only when nothing succeeds.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e FileError) Unwrap() error { return e.Err }

// Summary reports the outcome of one encoding run.
type Summary struct {
	Processed int // entries added to the manifest
	Skipped   int // files filtered out by format or exclude pattern
	Errored   int // files that failed to decode or encode
	Errors    []FileError
}

// Options holds all parameters for an encoding run.
type Options struct {
	Root            string
	Quality         int // 1-100; ignored by lossless target formats
	Recursive       bool
	IncludeFormats  []string // default: png, jpeg, gif, bmp, tiff, webp
	ExcludePatterns []string // globs against slash relpath or base name
	Workers         int      // 0 = NumCPU
	Verbose         bool
}

// Packer encodes a directory tree into a resource manifest.
type Packer struct {
	opts     Options
	registry *codec.Registry
}

// New creates a configured packer.
func New(opts Options) *Packer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Packer{
		opts:     opts,
		registry: codec.NewRegistry(),
	}
}

type packResult struct {
	entry manifest.Entry
	err   error
}

// Run executes the encoding run. Entries appear in the manifest in
// deterministic traversal order regardless of worker completion order.
func (p *Packer) Run() (*manifest.Manifest, *Summary, error) {
	if p.opts.Quality < 1 || p.opts.Quality > 100 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidQuality, p.opts.Quality)
	}
	if err := statRoot(p.opts.Root); err != nil {
		return nil, nil, err
	}

	if p.opts.Verbose {
		fmt.Fprintf(os.Stderr, "[imgforge] %s\n", p.registry.String())
	}

	sources, skipped, err := scan(p.opts.Root, p.opts.Recursive, p.opts.IncludeFormats, p.opts.ExcludePatterns)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no images found in %s", p.opts.Root)
	}

	// Name collisions are detected before any encode work starts.
	byName := make(map[string]string, len(sources))
	for _, src := range sources {
		if prev, ok := byName[src.Name]; ok {
			return nil, nil, fmt.Errorf("%w: %q maps to both %s and %s",
				ErrNameCollision, src.Name, prev, src.RelPath)
		}
		byName[src.Name] = src.RelPath
	}

	// Encode files in parallel; each file is independent.
	results := make([]packResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.opts.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if p.opts.Verbose {
				fmt.Fprintf(os.Stderr, "[imgforge] encoding: %s\n", s.RelPath)
			}
			results[idx] = p.packSource(s)
		}(i, src)
	}
	wg.Wait()

	// Merge in traversal order.
	m := manifest.New(p.opts.Quality)
	sum := &Summary{Skipped: skipped}
	for i, r := range results {
		if r.err != nil {
			sum.Errored++
			sum.Errors = append(sum.Errors, FileError{Path: sources[i].RelPath, Err: r.err})
			continue
		}
		m.Append(r.entry)
		sum.Processed++
	}

	if sum.Processed == 0 {
		return nil, sum, fmt.Errorf("all %d images failed to encode", sum.Errored)
	}
	if p.opts.Verbose && sum.Errored > 0 {
		fmt.Fprintf(os.Stderr, "[imgforge] warning: %d of %d images had errors\n",
			sum.Errored, len(sources))
	}

	m.ComputeStats()
	return m, sum, nil
}

// packSource decodes one file and re-encodes it at the configured
// quality. The source's own format is kept when an encoder for it is
// available; otherwise the payload falls back to lossless PNG.
func (p *Packer) packSource(src Source) packResult {
	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		return packResult{err: fmt.Errorf("read: %w", err)}
	}

	img, detected, err := codec.DecodeBytes(data)
	if err != nil {
		return packResult{err: err}
	}
	originalFormat := detected
	if originalFormat == "" {
		originalFormat = src.Format
	}

	enc := p.registry.Resolve(originalFormat)
	payload, err := enc.Encode(img, p.opts.Quality)
	if err != nil {
		return packResult{err: fmt.Errorf("encode as %s: %w", enc.Format(), err)}
	}

	b := img.Bounds()
	return packResult{entry: manifest.Entry{
		Name:           src.Name,
		Format:         enc.Format(),
		OriginalFormat: originalFormat,
		Width:          b.Dx(),
		Height:         b.Dy(),
		Quality:        p.opts.Quality,
		SourceSize:     src.Size,
		Size:           int64(len(payload)),
		Hash:           hasher.ContentHash(payload, 16),
		Data:           payload,
	}}
}

// Package render is the pipeline entry point: it resolves themes, derives
// stable source identities, and memoizes transform output in a bounded
// LRU cache.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/imgforge/internal/codec"
	"github.com/AnyUserName/imgforge/internal/hasher"
	"github.com/AnyUserName/imgforge/internal/manifest"
	"github.com/AnyUserName/imgforge/internal/rendercache"
	"github.com/AnyUserName/imgforge/internal/theme"
	"github.com/AnyUserName/imgforge/internal/transform"
)

// Target tags the representation handed to the GUI layer. It selects only
// the final buffer conversion, never pixel values, but is part of the
// cache key because callers may hold converted buffers.
type Target string

const (
	// TargetNRGBA is the native non-premultiplied representation.
	TargetNRGBA Target = "nrgba"
	// TargetRGBA is alpha-premultiplied, for frameworks that composite
	// premultiplied buffers.
	TargetRGBA Target = "rgba"
)

// Convert produces the frame representation for the target. TargetNRGBA
// returns the frame unchanged.
func (t Target) Convert(frame *image.NRGBA) image.Image {
	if t != TargetRGBA {
		return frame
	}
	dst := image.NewRGBA(frame.Bounds())
	draw.Draw(dst, frame.Bounds(), frame, frame.Bounds().Min, draw.Src)
	return dst
}

// Options configures a Renderer.
type Options struct {
	// CacheSize bounds the render cache entry count (0 = default).
	CacheSize int
	// Themes supplies the theme registry (nil = built-ins only).
	Themes *theme.Registry
}

// Renderer renders sources through the transform pipeline with caching
// and theme adaptation. Safe for concurrent use.
type Renderer struct {
	cache  *rendercache.Cache
	themes *theme.Registry
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	themes := opts.Themes
	if themes == nil {
		themes = theme.NewRegistry()
	}
	return &Renderer{
		cache:  rendercache.New(opts.CacheSize),
		themes: themes,
	}
}

// Themes exposes the renderer's theme registry for custom registration.
func (r *Renderer) Themes() *theme.Registry { return r.themes }

// RenderFile renders the image at path with the given parameters.
// Validation and theme resolution happen before any decode work, so
// invalid input has no side effects.
func (r *Renderer) RenderFile(path string, target Target, p transform.Params) (*transform.Rendered, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ov, err := r.themes.Resolve(p.Theme)
	if err != nil {
		return nil, err
	}

	sig, err := fileSignature(path)
	if err != nil {
		return nil, err
	}

	key := cacheKey(sig, p, target)
	return r.cache.GetOrCompute(key, func() (*transform.Rendered, error) {
		return renderPath(path, p, ov)
	})
}

// RenderResource renders an embedded resource from a loaded manifest.
// The entry's payload hash serves as the source identity.
func (r *Renderer) RenderResource(m *manifest.Manifest, name string, target Target, p transform.Params) (*transform.Rendered, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ov, err := r.themes.Resolve(p.Theme)
	if err != nil {
		return nil, err
	}

	entry, ok := m.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("resource %q not in manifest", name)
	}

	key := cacheKey("res:"+name+"@"+entry.Hash, p, target)
	return r.cache.GetOrCompute(key, func() (*transform.Rendered, error) {
		return renderBytes(entry.Data, entry.Format, p, ov)
	})
}

// InvalidateTheme drops every cached render tied to the named theme,
// returning the number of entries removed. Call after re-registering or
// changing theme semantics.
func (r *Renderer) InvalidateTheme(name string) int {
	needle := ";theme=" + name + ";"
	return r.cache.Invalidate(func(key string) bool {
		return strings.Contains(key, needle)
	})
}

// ClearCache removes every cached render.
func (r *Renderer) ClearCache() { r.cache.Clear() }

// CacheLen returns the number of cached renders.
func (r *Renderer) CacheLen() int { return r.cache.Len() }

// cacheKey combines source identity, the canonical parameter
// serialization and the target representation flag.
func cacheKey(sourceKey string, p transform.Params, target Target) string {
	return hasher.KeyHash(sourceKey) + "|" + p.Key() + ";target=" + string(target)
}

// fileSignature derives a stable content key from path, modification time
// and size. Content is not re-hashed per render; a touched file simply
// keys a fresh cache slot.
func fileSignature(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("file:%s?mtime=%d&size=%d", abs, info.ModTime().UnixNano(), info.Size()), nil
}

func renderPath(path string, p transform.Params, ov theme.Override) (*transform.Rendered, error) {
	if p.Animated && codec.FormatForPath(path) == "gif" {
		anim, err := codec.DecodeAnimationFile(path)
		if err != nil {
			return nil, err
		}
		return transform.RenderFrames(anim.Frames, anim.FrameDelay, anim.LoopCount, p, ov)
	}

	img, _, err := codec.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	if p.Animated {
		// Animated requested but the source is a still: a one-frame set.
		return transform.RenderFrames([]*image.NRGBA{img}, 0, 0, p, ov)
	}
	return transform.Render(img, p, ov)
}

func renderBytes(data []byte, format string, p transform.Params, ov theme.Override) (*transform.Rendered, error) {
	if p.Animated && format == "gif" {
		anim, err := codec.DecodeAnimationBytes(data)
		if err != nil {
			return nil, err
		}
		return transform.RenderFrames(anim.Frames, anim.FrameDelay, anim.LoopCount, p, ov)
	}

	img, _, err := codec.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	if p.Animated {
		return transform.RenderFrames([]*image.NRGBA{img}, 0, 0, p, ov)
	}
	return transform.Render(img, p, ov)
}

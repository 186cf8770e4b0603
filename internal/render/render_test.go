package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/imgforge/internal/fixture"
	"github.com/AnyUserName/imgforge/internal/respack"
	"github.com/AnyUserName/imgforge/internal/theme"
	"github.com/AnyUserName/imgforge/internal/transform"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.png")
	require.NoError(t, fixture.WritePNG(path, fixture.Gradient(40, 30)))
	return path
}

func TestRenderFileCached(t *testing.T) {
	r := New(Options{})
	path := writeSample(t)

	p := transform.Default()
	p.TargetWidth, p.TargetHeight = 20, 15

	first, err := r.RenderFile(path, TargetNRGBA, p)
	require.NoError(t, err)
	second, err := r.RenderFile(path, TargetNRGBA, p)
	require.NoError(t, err)

	// Identical request, identical source: the cached value comes back.
	assert.Same(t, first, second)
	assert.Equal(t, 1, r.CacheLen())
	assert.Equal(t, 20, first.Width())
	assert.Equal(t, 15, first.Height())
}

func TestRenderFileDistinctParamsDistinctEntries(t *testing.T) {
	r := New(Options{})
	path := writeSample(t)

	p1 := transform.Default()
	p2 := transform.Default()
	p2.Grayscale = true

	_, err := r.RenderFile(path, TargetNRGBA, p1)
	require.NoError(t, err)
	_, err = r.RenderFile(path, TargetNRGBA, p2)
	require.NoError(t, err)

	assert.Equal(t, 2, r.CacheLen())
}

func TestRenderFileTargetPartOfKey(t *testing.T) {
	r := New(Options{})
	path := writeSample(t)
	p := transform.Default()

	_, err := r.RenderFile(path, TargetNRGBA, p)
	require.NoError(t, err)
	_, err = r.RenderFile(path, TargetRGBA, p)
	require.NoError(t, err)

	assert.Equal(t, 2, r.CacheLen())
}

func TestRenderFileInvalidParams(t *testing.T) {
	r := New(Options{})
	p := transform.Default()
	p.Contrast = 50

	_, err := r.RenderFile("/irrelevant.png", TargetNRGBA, p)
	assert.ErrorIs(t, err, transform.ErrInvalidParameter)
	assert.Equal(t, 0, r.CacheLen())
}

func TestRenderFileUnknownTheme(t *testing.T) {
	r := New(Options{})
	p := transform.Default()
	p.Theme = "nonexistent"

	_, err := r.RenderFile("/irrelevant.png", TargetNRGBA, p)
	assert.ErrorIs(t, err, theme.ErrUnknownTheme)
}

func TestRenderFileCustomTheme(t *testing.T) {
	r := New(Options{})
	require.NoError(t, r.Themes().Register("sepia", theme.Override{
		TintColor:     color.NRGBA{R: 250, G: 240, B: 200, A: 255},
		TintIntensity: 0.25,
	}))

	path := writeSample(t)
	p := transform.Default()
	p.Theme = "sepia"

	plain, err := r.RenderFile(path, TargetNRGBA, transform.Default())
	require.NoError(t, err)
	themed, err := r.RenderFile(path, TargetNRGBA, p)
	require.NoError(t, err)

	assert.NotEqual(t, plain.Image().Pix, themed.Image().Pix)
}

func TestRenderFileAnimated(t *testing.T) {
	data, err := fixture.AnimatedGIF(16, 16, 3, 7)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "spinner.gif")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r := New(Options{})
	p := transform.Default()
	p.Animated = true

	res, err := r.RenderFile(path, TargetNRGBA, p)
	require.NoError(t, err)
	assert.True(t, res.Animated())
	assert.Len(t, res.Frames, 3)
	assert.Equal(t, 70*time.Millisecond, res.FrameDelay)
}

// A still source with Animated set renders as a single-frame animation
// rather than failing.
func TestRenderFileAnimatedStillSource(t *testing.T) {
	r := New(Options{})
	path := writeSample(t)

	p := transform.Default()
	p.Animated = true

	res, err := r.RenderFile(path, TargetNRGBA, p)
	require.NoError(t, err)
	assert.Len(t, res.Frames, 1)
	assert.Equal(t, 100*time.Millisecond, res.FrameDelay)
}

func TestRenderResource(t *testing.T) {
	dir := t.TempDir()
	_, err := fixture.WriteTree(dir)
	require.NoError(t, err)

	m, _, err := respack.New(respack.Options{Root: dir, Quality: 85, Recursive: true}).Run()
	require.NoError(t, err)

	r := New(Options{})
	p := transform.Default()
	p.TargetWidth, p.TargetHeight = 50, 50

	res, err := r.RenderResource(m, "logo", TargetNRGBA, p)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Width())
	assert.Equal(t, 1, r.CacheLen())

	again, err := r.RenderResource(m, "logo", TargetNRGBA, p)
	require.NoError(t, err)
	assert.Same(t, res, again)

	_, err = r.RenderResource(m, "missing", TargetNRGBA, p)
	assert.Error(t, err)
}

func TestInvalidateTheme(t *testing.T) {
	r := New(Options{})
	path := writeSample(t)

	dark := transform.Default()
	dark.Theme = "dark"
	light := transform.Default()
	light.Theme = "light"

	_, err := r.RenderFile(path, TargetNRGBA, dark)
	require.NoError(t, err)
	_, err = r.RenderFile(path, TargetNRGBA, light)
	require.NoError(t, err)
	require.Equal(t, 2, r.CacheLen())

	dropped := r.InvalidateTheme("dark")
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, r.CacheLen())
}

func TestClearCache(t *testing.T) {
	r := New(Options{})
	path := writeSample(t)

	_, err := r.RenderFile(path, TargetNRGBA, transform.Default())
	require.NoError(t, err)
	r.ClearCache()
	assert.Equal(t, 0, r.CacheLen())
}

func TestModifiedFileKeysNewEntry(t *testing.T) {
	r := New(Options{})
	path := writeSample(t)

	_, err := r.RenderFile(path, TargetNRGBA, transform.Default())
	require.NoError(t, err)

	// Rewrite with different content; mtime and size both shift.
	require.NoError(t, fixture.WritePNG(path, fixture.Gradient(41, 31)))
	res, err := r.RenderFile(path, TargetNRGBA, transform.Default())
	require.NoError(t, err)

	assert.Equal(t, 41, res.Width())
	assert.Equal(t, 2, r.CacheLen())
}

func TestTargetConvert(t *testing.T) {
	frame := fixture.AlphaGradient(8, 8)

	same := TargetNRGBA.Convert(frame)
	assert.Same(t, image.Image(frame), same)

	converted := TargetRGBA.Convert(frame)
	rgba, ok := converted.(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, frame.Bounds(), rgba.Bounds())

	// Premultiplied: color channels never exceed alpha.
	c := rgba.RGBAAt(4, 4)
	assert.LessOrEqual(t, c.R, c.A)
	assert.LessOrEqual(t, c.G, c.A)
	assert.LessOrEqual(t, c.B, c.A)
}

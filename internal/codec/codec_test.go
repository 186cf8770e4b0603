package codec

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/AnyUserName/imgforge/internal/fixture"
)

func TestDecodeBytesPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, fixture.Gradient(20, 10)); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	img, format, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" {
		t.Errorf("format: got %q", format)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("bounds: got %v", img.Bounds())
	}
}

func TestDecodeBytesUnsupported(t *testing.T) {
	_, _, err := DecodeBytes([]byte("not an image at all"))
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("err: got %v, want ErrUnsupportedSource", err)
	}

	_, _, err = DecodeBytes(nil)
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("empty input: got %v, want ErrUnsupportedSource", err)
	}
}

func TestNormalizeFormat(t *testing.T) {
	cases := map[string]string{
		".jpg":  "jpeg",
		".JPG":  "jpeg",
		"jpeg":  "jpeg",
		".tif":  "tiff",
		".png":  "png",
		".webp": "webp",
	}
	for in, want := range cases {
		if got := NormalizeFormat(in); got != want {
			t.Errorf("NormalizeFormat(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestHasAlpha(t *testing.T) {
	if HasAlpha(fixture.Solid(4, 4, color.NRGBA{R: 255, A: 255})) {
		t.Error("opaque image reported as having alpha")
	}
	if !HasAlpha(fixture.AlphaGradient(4, 4)) {
		t.Error("alpha gradient reported as opaque")
	}
}

func TestAnimationDecode(t *testing.T) {
	data, err := fixture.AnimatedGIF(16, 16, 3, 7)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}

	anim, err := DecodeAnimationBytes(data)
	if err != nil {
		t.Fatalf("decode animation: %v", err)
	}
	if len(anim.Frames) != 3 {
		t.Fatalf("frames: got %d, want 3", len(anim.Frames))
	}
	if anim.FrameDelay != 70*time.Millisecond {
		t.Errorf("delay: got %v, want 70ms", anim.FrameDelay)
	}
	for i, f := range anim.Frames {
		if f.Bounds().Dx() != 16 || f.Bounds().Dy() != 16 {
			t.Errorf("frame %d bounds: %v", i, f.Bounds())
		}
	}
}

func TestAnimationRoundtrip(t *testing.T) {
	data, err := fixture.AnimatedGIF(8, 8, 4, 5)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	anim, err := DecodeAnimationBytes(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	encoded, err := EncodeAnimation(anim.Frames, anim.FrameDelay, anim.LoopCount)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := DecodeAnimationBytes(encoded)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if len(again.Frames) != 4 {
		t.Fatalf("frames after roundtrip: got %d, want 4", len(again.Frames))
	}
	if again.FrameDelay != anim.FrameDelay {
		t.Errorf("delay after roundtrip: got %v, want %v", again.FrameDelay, anim.FrameDelay)
	}
}

func TestAnimationDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeAnimationBytes([]byte("GIF89a-but-not-really"))
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("err: got %v, want ErrUnsupportedSource", err)
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()

	if enc := r.Resolve("jpeg"); enc == nil || enc.Format() != "jpeg" {
		t.Error("jpeg should resolve to the jpeg encoder")
	}
	if enc := r.Resolve("png"); enc == nil || enc.Format() != "png" {
		t.Error("png should resolve to the png encoder")
	}
	// Formats without a native encoder fall back to lossless PNG.
	if enc := r.Resolve("bmp"); enc == nil || enc.Format() != "png" {
		t.Error("bmp should fall back to png")
	}
	if enc := r.Resolve("tiff"); enc == nil || enc.Format() != "png" {
		t.Error("tiff should fall back to png")
	}
}

func TestJPEGQualityRange(t *testing.T) {
	enc := &JPEGEncoder{}
	img := fixture.Gradient(8, 8)

	if _, err := enc.Encode(img, 1); err != nil {
		t.Errorf("quality 1: %v", err)
	}
	if _, err := enc.Encode(img, 100); err != nil {
		t.Errorf("quality 100: %v", err)
	}
	if _, err := enc.Encode(img, 0); err == nil {
		t.Error("quality 0 should be rejected")
	}
	if _, err := enc.Encode(img, 101); err == nil {
		t.Error("quality 101 should be rejected")
	}
}

// PNG is lossless: quality is accepted and ignored, so any value encodes
// identical bytes.
func TestPNGIgnoresQuality(t *testing.T) {
	enc := &PNGEncoder{}
	img := fixture.Gradient(8, 8)

	a, err := enc.Encode(img, 1)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := enc.Encode(img, 100)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("png output should not depend on quality")
	}
}

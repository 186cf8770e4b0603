// Package codec is the boundary to image decoding and encoding. Decoding
// accepts any format registered with the image package (png, jpeg, gif,
// plus bmp/tiff/webp via golang.org/x/image); encoding goes through a
// registry of per-format encoders.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedSource is returned when input bytes cannot be decoded:
// corrupt data, an empty file or an unrecognized format.
var ErrUnsupportedSource = errors.New("unsupported source")

// DecodeBytes decodes raw bytes into an NRGBA buffer and reports the
// detected format name ("png", "jpeg", ...).
func DecodeBytes(data []byte) (*image.NRGBA, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrUnsupportedSource)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	return ToNRGBA(img), format, nil
}

// DecodeFile decodes the file at path.
func DecodeFile(path string) (*image.NRGBA, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeBytes(data)
}

// ToNRGBA copies any image into a fresh zero-origin NRGBA buffer. The
// input is never aliased, so decoded sources stay immutable.
func ToNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// HasAlpha reports whether any pixel is not fully opaque.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}

// NormalizeFormat canonicalizes a file extension or format name:
// "jpg" → "jpeg", "tif" → "tiff", lowercased, no leading dot.
func NormalizeFormat(ext string) string {
	f := strings.ToLower(strings.TrimPrefix(ext, "."))
	switch f {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return f
}

// FormatForPath returns the normalized format implied by a file name.
func FormatForPath(path string) string {
	return NormalizeFormat(filepath.Ext(path))
}

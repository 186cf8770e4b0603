// Package fixture produces small, fully reproducible sample images for
// tests. Every generator is a pure function of its arguments, so fixtures
// written twice are byte-identical.
package fixture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

// Gradient returns a w×h opaque image with a horizontal red and vertical
// green ramp over a constant blue channel.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// Solid returns a w×h image filled with a single color.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// AlphaGradient returns a w×h image whose alpha ramps from 0 to 255
// left to right.
func AlphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

// AnimatedGIF returns the bytes of a w×h GIF with the given number of
// solid frames cycling through distinct colors, each with delay in
// hundredths of a second.
func AnimatedGIF(w, h, frames, delay int) ([]byte, error) {
	pal := color.Palette{
		color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		color.NRGBA{R: 255, G: 0, B: 0, A: 255},
		color.NRGBA{R: 0, G: 255, B: 0, A: 255},
		color.NRGBA{R: 0, G: 0, B: 255, A: 255},
		color.NRGBA{R: 255, G: 255, B: 0, A: 255},
	}
	g := &gif.GIF{LoopCount: 0}
	for i := 0; i < frames; i++ {
		p := image.NewPaletted(image.Rect(0, 0, w, h), pal)
		idx := uint8(1 + i%(len(pal)-1))
		for j := range p.Pix {
			p.Pix[j] = idx
		}
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, delay)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTree populates dir with a fixed set of sample files: a JPEG banner,
// three PNG cards in a subdirectory and one PNG with alpha. Returns the
// number of files written.
func WriteTree(dir string) (int, error) {
	if err := os.MkdirAll(filepath.Join(dir, "cards"), 0o755); err != nil {
		return 0, err
	}

	if err := WriteJPEG(filepath.Join(dir, "banner.jpg"), Gradient(400, 225), 85); err != nil {
		return 0, err
	}
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("card-%d.png", i)
		base := uint8(i * 60)
		img := Solid(200, 150, color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255})
		if err := WritePNG(filepath.Join(dir, "cards", name), img); err != nil {
			return 0, err
		}
	}
	if err := WritePNG(filepath.Join(dir, "logo.png"), AlphaGradient(100, 100)); err != nil {
		return 0, err
	}
	return 5, nil
}

// WritePNG writes img to path as PNG.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// WriteJPEG writes img to path as JPEG at the given quality.
func WriteJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
}

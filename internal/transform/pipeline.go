// Package transform applies an ordered, deterministic sequence of
// geometric and color operations to decoded image buffers.
//
// The stage order is fixed and part of the contract: rotation (with the
// canvas expanded to hold the rotated content) → size normalization →
// grayscale → theme tint → user tint → contrast → saturation →
// transparency. All color math is 8-bit non-linear sRGB:
//
//	grayscale     y = 0.299R + 0.587G + 0.114B          (BT.601)
//	tint (C, t)   out = in·(1−t) + C·t                  (alpha kept)
//	contrast m    out = (in − 128)·m + 128              (clamped)
//	saturation s  out = y + (in − y)·s                  (clamped)
//	transparency  A = A·(1 − t)
package transform

import (
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/imgforge/internal/theme"
)

// defaultFrameDelay applies when neither the caller nor the source
// supplies animation timing.
const defaultFrameDelay = 100 * time.Millisecond

// Rendered is the pipeline output: one frame for still sources, the full
// ordered frame set plus timing for animated ones. The caller owns it.
type Rendered struct {
	Frames     []*image.NRGBA
	FrameDelay time.Duration
	LoopCount  int
}

// Animated reports whether the output carries more than one frame.
func (r *Rendered) Animated() bool { return len(r.Frames) > 1 }

// Image returns the first (or only) frame.
func (r *Rendered) Image() *image.NRGBA { return r.Frames[0] }

// Width returns the pixel width of the output frames.
func (r *Rendered) Width() int { return r.Frames[0].Bounds().Dx() }

// Height returns the pixel height of the output frames.
func (r *Rendered) Height() int { return r.Frames[0].Bounds().Dy() }

// Render validates p, merges the theme override and applies the pipeline
// to a single still frame.
func Render(img image.Image, p Params, ov theme.Override) (*Rendered, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Rendered{Frames: []*image.NRGBA{apply(img, p, ov)}}, nil
}

// RenderFrames applies the same pipeline independently to every frame of
// an animated source. The output frame count always equals the input
// frame count. The output delay is the caller override when positive,
// else the source-embedded delay, else 100ms.
func RenderFrames(frames []*image.NRGBA, sourceDelay time.Duration, loopCount int, p Params, ov theme.Override) (*Rendered, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := &Rendered{
		Frames:     make([]*image.NRGBA, 0, len(frames)),
		FrameDelay: resolveDelay(p.FrameDelay, sourceDelay),
		LoopCount:  loopCount,
	}
	for _, f := range frames {
		out.Frames = append(out.Frames, apply(f, p, ov))
	}
	return out, nil
}

func resolveDelay(override, source time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if source > 0 {
		return source
	}
	return defaultFrameDelay
}

// apply runs the fixed stage order on one frame. Parameters are assumed
// validated. Every stage allocates a new buffer; the input is never
// mutated.
func apply(img image.Image, p Params, ov theme.Override) *image.NRGBA {
	out := imaging.Clone(img)

	if rot := p.NormalizedRotation(); rot != 0 {
		out = imaging.Rotate(out, rot, color.NRGBA{})
	}
	if p.TargetWidth > 0 {
		out = imaging.Resize(out, p.TargetWidth, p.TargetHeight, imaging.Lanczos)
	}
	if p.Grayscale {
		out = imaging.Grayscale(out)
	}
	if ov.TintIntensity > 0 {
		out = tint(out, ov.TintColor, ov.TintIntensity)
	}
	if p.Tint != nil && p.Tint.Intensity > 0 {
		out = tint(out, p.Tint.Color, p.Tint.Intensity)
	}
	if m := clampRange(p.Contrast+ov.ContrastDelta, MinContrast, MaxContrast); m != 1 {
		out = contrast(out, m)
	}
	if s := clampRange(p.Saturation+ov.SaturationDelta, 0, MaxSaturation); s != 1 {
		out = saturate(out, s)
	}
	if p.Transparency > 0 {
		out = fade(out, p.Transparency)
	}
	return out
}

// tint blends c into every pixel by intensity t, preserving alpha.
func tint(img image.Image, c color.NRGBA, t float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: blend8(px.R, c.R, t),
			G: blend8(px.G, c.G, t),
			B: blend8(px.B, c.B, t),
			A: px.A,
		}
	})
}

// contrast scales channel distance from mid-gray by multiplier m.
func contrast(img image.Image, m float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clamp8((float64(px.R)-128)*m + 128),
			G: clamp8((float64(px.G)-128)*m + 128),
			B: clamp8((float64(px.B)-128)*m + 128),
			A: px.A,
		}
	})
}

// saturate moves each channel toward (s < 1) or away from (s > 1) the
// pixel's BT.601 luma.
func saturate(img image.Image, s float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		y := 0.299*float64(px.R) + 0.587*float64(px.G) + 0.114*float64(px.B)
		return color.NRGBA{
			R: clamp8(y + (float64(px.R)-y)*s),
			G: clamp8(y + (float64(px.G)-y)*s),
			B: clamp8(y + (float64(px.B)-y)*s),
			A: px.A,
		}
	})
}

// fade removes fraction t of each pixel's opacity.
func fade(img image.Image, t float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		px.A = clamp8(float64(px.A) * (1 - t))
		return px
	})
}

func blend8(a, b uint8, t float64) uint8 {
	return clamp8(float64(a)*(1-t) + float64(b)*t)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"time"
)

// DefaultFrameDelay is used when an animated source carries no timing.
const DefaultFrameDelay = 100 * time.Millisecond

// Animation is a decoded multi-frame source: full coalesced frames, one
// delay for the whole animation and the source loop count (0 = forever).
type Animation struct {
	Frames     []*image.NRGBA
	FrameDelay time.Duration
	LoopCount  int
}

// DecodeAnimationBytes decodes an animated GIF into coalesced full
// frames. Partial frames are composited over the logical screen the way a
// viewer would, honoring background and previous disposal, so every
// returned frame stands alone.
func DecodeAnimationBytes(data []byte) (*Animation, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedSource)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: animation has no frames", ErrUnsupportedSource)
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}

	anim := &Animation{
		FrameDelay: sourceDelay(g),
		LoopCount:  g.LoopCount,
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, frame := range g.Image {
		var restore *image.NRGBA
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
			restore = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		anim.Frames = append(anim.Frames, cloneNRGBA(canvas))

		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				canvas = restore
			}
		}
	}
	return anim, nil
}

// DecodeAnimationFile decodes the animated GIF at path.
func DecodeAnimationFile(path string) (*Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeAnimationBytes(data)
}

// EncodeAnimation serializes frames as an animated GIF with a uniform
// per-frame delay. Frames are quantized to the Plan9 palette with
// Floyd–Steinberg dithering.
func EncodeAnimation(frames []*image.NRGBA, delay time.Duration, loopCount int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to encode")
	}
	centi := int(delay / (10 * time.Millisecond))
	if centi <= 0 {
		centi = int(DefaultFrameDelay / (10 * time.Millisecond))
	}

	g := &gif.GIF{LoopCount: loopCount}
	for _, frame := range frames {
		p := image.NewPaletted(frame.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(p, frame.Bounds(), frame, frame.Bounds().Min)
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, centi)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sourceDelay picks the animation's embedded delay: the first non-zero
// per-frame delay (GIF stores hundredths of a second), else the default.
func sourceDelay(g *gif.GIF) time.Duration {
	for _, d := range g.Delay {
		if d > 0 {
			return time.Duration(d) * 10 * time.Millisecond
		}
	}
	return DefaultFrameDelay
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

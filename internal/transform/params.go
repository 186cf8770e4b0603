package transform

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"time"
)

// MaxDimension bounds target sizes so a single render cannot allocate an
// unbounded buffer.
const MaxDimension = 5000

// Contrast and saturation multiplier ranges.
const (
	MinContrast   = 0.1
	MaxContrast   = 3.0
	MaxSaturation = 3.0
)

// ErrInvalidParameter is returned when any transform field is outside its
// declared range. Validation runs before any decode or pixel work.
var ErrInvalidParameter = errors.New("invalid parameter")

// Tint blends a color into every pixel. Intensity 0 leaves the image
// untouched, 1 replaces it with the tint color.
type Tint struct {
	Color     color.NRGBA
	Intensity float64
}

// Params holds every recognized transform dimension. The zero value is
// not valid (multipliers default to 1.0); construct with Default and
// override fields.
type Params struct {
	// TargetWidth/TargetHeight resize the output. Both zero = keep size;
	// otherwise both must be 1..MaxDimension.
	TargetWidth  int
	TargetHeight int

	// RotationDegrees rotates counter-clockwise; normalized modulo 360.
	RotationDegrees float64

	Grayscale bool
	Tint      *Tint

	// Contrast in [0.1, 3.0], Saturation in [0.0, 3.0]; 1.0 = unchanged.
	Contrast   float64
	Saturation float64

	// Transparency in [0.0, 1.0] is the fraction of opacity removed:
	// 0 = unchanged, 1 = fully transparent.
	Transparency float64

	// Theme names an override bundle resolved before rendering.
	Theme string

	// Animated switches the pipeline into multi-frame mode. FrameDelay,
	// when positive, overrides the delay embedded in the source.
	Animated   bool
	FrameDelay time.Duration
}

// Default returns the identity parameter set.
func Default() Params {
	return Params{Contrast: 1.0, Saturation: 1.0}
}

// Validate checks every field against its declared range and reports the
// first violation wrapped in ErrInvalidParameter.
func (p Params) Validate() error {
	if (p.TargetWidth != 0) != (p.TargetHeight != 0) {
		return fmt.Errorf("%w: target size requires both width and height", ErrInvalidParameter)
	}
	if p.TargetWidth != 0 {
		if p.TargetWidth < 1 || p.TargetWidth > MaxDimension {
			return fmt.Errorf("%w: target width %d outside 1-%d", ErrInvalidParameter, p.TargetWidth, MaxDimension)
		}
		if p.TargetHeight < 1 || p.TargetHeight > MaxDimension {
			return fmt.Errorf("%w: target height %d outside 1-%d", ErrInvalidParameter, p.TargetHeight, MaxDimension)
		}
	}
	if math.IsNaN(p.RotationDegrees) || math.IsInf(p.RotationDegrees, 0) {
		return fmt.Errorf("%w: rotation must be finite", ErrInvalidParameter)
	}
	if p.Tint != nil && (p.Tint.Intensity < 0 || p.Tint.Intensity > 1) {
		return fmt.Errorf("%w: tint intensity %s outside [0, 1]", ErrInvalidParameter, formatFloat(p.Tint.Intensity))
	}
	if p.Contrast < MinContrast || p.Contrast > MaxContrast {
		return fmt.Errorf("%w: contrast %s outside [%s, %s]", ErrInvalidParameter,
			formatFloat(p.Contrast), formatFloat(MinContrast), formatFloat(MaxContrast))
	}
	if p.Saturation < 0 || p.Saturation > MaxSaturation {
		return fmt.Errorf("%w: saturation %s outside [0, %s]", ErrInvalidParameter,
			formatFloat(p.Saturation), formatFloat(MaxSaturation))
	}
	if p.Transparency < 0 || p.Transparency > 1 {
		return fmt.Errorf("%w: transparency %s outside [0, 1]", ErrInvalidParameter, formatFloat(p.Transparency))
	}
	if p.FrameDelay < 0 {
		return fmt.Errorf("%w: frame delay must not be negative", ErrInvalidParameter)
	}
	return nil
}

// NormalizedRotation returns the rotation folded into [0, 360).
func (p Params) NormalizedRotation() float64 {
	r := math.Mod(p.RotationDegrees, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// Key serializes the parameter set into a canonical string. Field-wise
// equal parameter sets always produce the same key, which makes the key
// safe as cache-key material.
func (p Params) Key() string {
	tint := "none"
	if p.Tint != nil {
		c := p.Tint.Color
		tint = fmt.Sprintf("#%02x%02x%02x%02x:%s", c.R, c.G, c.B, c.A, formatFloat(p.Tint.Intensity))
	}
	return fmt.Sprintf("size=%dx%d;rot=%s;gray=%t;tint=%s;contrast=%s;sat=%s;alpha=%s;theme=%s;anim=%t;delay=%d",
		p.TargetWidth, p.TargetHeight,
		formatFloat(p.NormalizedRotation()),
		p.Grayscale,
		tint,
		formatFloat(p.Contrast),
		formatFloat(p.Saturation),
		formatFloat(p.Transparency),
		p.Theme,
		p.Animated,
		p.FrameDelay.Milliseconds(),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Package colormap maps series indices and scalar values to display colors.
package colormap

import (
	"fmt"
	"image/color"
	"math"
)

// RGB is a color with components in [0, 1].
type RGB [3]float64

// RGBA converts c to an 8-bit opaque color.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: 255}
}

// Hex formats c as #rrggbb.
func (c RGB) Hex() string {
	v := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", v.R, v.G, v.B)
}

// DefaultPalette is the categorical palette used for layers and groups.
var DefaultPalette = []string{
	"#06B6D4",
	"#7C3AED",
	"#F59E0B",
	"#10B981",
	"#3B82F6",
	"#EF4444",
}

// DefaultSeriesPalette colors metric lines in the layer chart.
var DefaultSeriesPalette = []string{
	"#60a5fa",
	"#34d399",
	"#f472b6",
	"#fbbf24",
	"#a78bfa",
	"#fb7185",
	"#22d3ee",
	"#f59e0b",
	"#4ade80",
	"#10b981",
}

// Gradient anchors for ColorForValue: blue (low), yellow (mid), red (high).
var (
	DefaultLow  = RGB{0.2, 0.4, 1}
	DefaultMid  = RGB{1, 0.9, 0}
	DefaultHigh = RGB{1, 0.2, 0.2}
)

// rangeFloor keeps a degenerate [min, max] from dividing by zero.
const rangeFloor = 1e-9

// midpoint splits the two gradient segments.
const midpoint = 0.5

// Palette cycles through a fixed list of categorical colors.
type Palette []string

// At returns the color for index i, wrapping in both directions.
// An empty palette returns "".
func (p Palette) At(i int) string {
	n := len(p)
	if n == 0 {
		return ""
	}
	return p[((i%n)+n)%n]
}

// Gradient is a two-segment diverging color ramp.
type Gradient struct {
	Low, Mid, High RGB
}

// DefaultGradient is the blue-yellow-red ramp.
var DefaultGradient = Gradient{Low: DefaultLow, Mid: DefaultMid, High: DefaultHigh}

// At maps v within [min, max] onto the ramp. Values outside the range clamp
// to the end colors; NaN clamps to Low.
func (g Gradient) At(v, min, max float64) RGB {
	t := clamp((v-min)/math.Max(max-min, rangeFloor), 0, 1)
	if t < midpoint {
		return lerpRGB(g.Low, g.Mid, t/midpoint)
	}
	return lerpRGB(g.Mid, g.High, (t-midpoint)/midpoint)
}

// ColorForIndex returns the DefaultPalette color for index i.
func ColorForIndex(i int) string {
	return Palette(DefaultPalette).At(i)
}

// ColorForValue maps v within [min, max] onto DefaultGradient.
func ColorForValue(v, min, max float64) RGB {
	return DefaultGradient.At(v, min, max)
}

// clamp mirrors max(lo, min(hi, x)); a NaN x falls through to lo.
func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpRGB(a, b RGB, t float64) RGB {
	return RGB{lerp(a[0], b[0], t), lerp(a[1], b[1], t), lerp(a[2], b[2], t)}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

// ParseHex parses a #rrggbb color.
func ParseHex(s string) (color.RGBA, error) {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

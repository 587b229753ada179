package beaker

import (
	"github.com/crazy3lf/colorconv"

	"github.com/pthm-cable/chemlab/config"
)

// PlumeStyle holds the visual defaults that new plume particles resolve
// against. Color and alpha bake into each particle at spawn, so a style
// change only affects particles spawned afterward.
type PlumeStyle struct {
	Opacity      float32 // base particle alpha in [0, 1]
	Saturation   float32 // HSV saturation multiplier
	Brightness   float32 // HSV value multiplier
	EdgeSoftness float32 // renderer hint: feathered fraction of radius
	Additive     bool    // renderer hint: additive vs alpha blending
	R, G, B      float32 // default dye color, linear RGB in [0, 1]
}

// StyleFromConfig converts the YAML style section to runtime form.
func StyleFromConfig(sc config.StyleConfig) PlumeStyle {
	st := PlumeStyle{
		Opacity:      float32(sc.Opacity),
		Saturation:   float32(sc.Saturation),
		Brightness:   float32(sc.Brightness),
		EdgeSoftness: float32(sc.EdgeSoftness),
		Additive:     sc.Additive,
		R:            1, G: 1, B: 1,
	}
	if len(sc.Color) == 3 {
		st.R = float32(sc.Color[0])
		st.G = float32(sc.Color[1])
		st.B = float32(sc.Color[2])
	}
	return st
}

// adjustColor pushes an RGB color through HSV saturation and brightness
// multipliers. Conversion runs per spawn, not per tick, so the float64
// round trip stays off the hot path.
func adjustColor(r, g, b, saturation, brightness float32) (float32, float32, float32) {
	if saturation == 1 && brightness == 1 {
		return r, g, b
	}

	h, s, v := colorconv.RGBToHSV(
		uint8(clamp01(r)*255),
		uint8(clamp01(g)*255),
		uint8(clamp01(b)*255),
	)
	s = float64(clamp01(float32(s) * saturation))
	v = float64(clamp01(float32(v) * brightness))

	rr, gg, bb, err := colorconv.HSVToRGB(h, s, v)
	if err != nil {
		return r, g, b
	}
	return float32(rr) / 255, float32(gg) / 255, float32(bb) / 255
}

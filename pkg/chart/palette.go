package chart

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Endpoints of the tier scale: best outcome to worst.
var (
	paletteBest  = colorful.Color{R: 0x1a / 255.0, G: 0x96 / 255.0, B: 0x41 / 255.0}
	paletteWorst = colorful.Color{R: 0xd7 / 255.0, G: 0x19 / 255.0, B: 0x1c / 255.0}
)

// TierColor assigns a display color to a tier label.
type TierColor struct {
	Tier  string `json:"tier" bson:"tier"`
	Color string `json:"color" bson:"color"`
}

// Palette spreads colors from green (first tier) to red (last tier) in
// CIE L*a*b* space so neighbouring tiers are evenly distinguishable.
func Palette(tiers []string) []TierColor {
	if len(tiers) == 0 {
		return nil
	}
	out := make([]TierColor, len(tiers))
	for i, t := range tiers {
		var f float64
		if len(tiers) > 1 {
			f = float64(i) / float64(len(tiers)-1)
		}
		out[i] = TierColor{Tier: t, Color: paletteBest.BlendLab(paletteWorst, f).Clamped().Hex()}
	}
	return out
}

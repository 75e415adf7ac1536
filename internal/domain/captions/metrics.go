package captions

import "strings"

// WidthEstimator approximates the rendered pixel width of a string. The
// estimate only needs to be deterministic and monotonic in font size; it is
// not expected to match real glyph metrics. Real font measurement is out of
// scope, so layouts built on this are approximate by design.
type WidthEstimator interface {
	Measure(text string, fontSize, letterSpacing float64, fontName string) float64
}

// HeuristicEstimator measures text with per-character width tables tuned for
// bold uppercase caption fonts. Fonts are split into two family classes:
// condensed display fonts (Impact and friends) and everything else, which is
// assumed wider.
type HeuristicEstimator struct{}

type fontFamily struct {
	defaultWidth float64 // default char width as a fraction of font size
	multiplier   float64 // family-level width multiplier
}

var (
	condensedFamily = fontFamily{defaultWidth: 0.50, multiplier: 1.0}
	wideFamily      = fontFamily{defaultWidth: 0.65, multiplier: 1.25}
)

var condensedFonts = map[string]bool{
	"impact":       true,
	"arial narrow": true,
	"bebas neue":   true,
	"oswald":       true,
	"anton":        true,
}

// Relative width of special characters against the family default.
var (
	narrowChars = map[rune]float64{
		'i': 0.55, 'l': 0.55, 'I': 0.55, 't': 0.55, 'f': 0.55, 'j': 0.55, 'r': 0.55,
	}
	wideChars = map[rune]float64{
		'm': 1.5, 'w': 1.5, 'M': 1.5, 'W': 1.5,
	}
)

func classifyFamily(fontName string) fontFamily {
	if condensedFonts[strings.ToLower(strings.TrimSpace(fontName))] {
		return condensedFamily
	}
	return wideFamily
}

func (HeuristicEstimator) Measure(text string, fontSize, letterSpacing float64, fontName string) float64 {
	fam := classifyFamily(fontName)
	runes := []rune(text)
	var units float64
	for _, r := range runes {
		switch {
		case narrowChars[r] > 0:
			units += narrowChars[r]
		case wideChars[r] > 0:
			units += wideChars[r]
		default:
			units += 1.0
		}
	}
	w := units * fam.defaultWidth * fam.multiplier * fontSize
	if n := len(runes); n > 1 {
		// Spacing applies between characters, not after the last one.
		w += letterSpacing * float64(n-1)
	}
	return w
}

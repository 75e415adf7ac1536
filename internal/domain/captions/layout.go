package captions

import "math"

// Position is a fixed word center in output-pixel space.
type Position struct {
	X int
	Y int
}

// LayoutParams describes the box the packer lays words into. Anchor
// coordinates are absolute pixels (already resolved from percentages).
type LayoutParams struct {
	FontSize      float64
	FontName      string
	LetterSpacing float64
	MaxWidth      float64
	LineHeight    float64
	AnchorX       float64
	AnchorY       float64
	WordGap       float64
}

// LayoutWords packs words into lines greedily, left to right, and returns a
// fixed center point per word index. A word is never split: if a single word
// is wider than MaxWidth it still occupies its own full line. The layout is
// independent of highlight state, so scaling the active word about its center
// never shifts its neighbours.
func LayoutWords(words []string, est WidthEstimator, p LayoutParams) []Position {
	if len(words) == 0 {
		return nil
	}

	type packed struct {
		idx   int
		width float64
	}

	var (
		lines   [][]packed
		current []packed
		lineW   float64
	)
	for i, text := range words {
		w := est.Measure(text, p.FontSize, p.LetterSpacing, p.FontName)
		needed := w
		if len(current) > 0 {
			needed += p.WordGap
		}
		if len(current) > 0 && lineW+needed > p.MaxWidth {
			lines = append(lines, current)
			current = []packed{{idx: i, width: w}}
			lineW = w
			continue
		}
		current = append(current, packed{idx: i, width: w})
		lineW += needed
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	blockHeight := float64(len(lines)) * p.LineHeight
	blockTop := p.AnchorY - blockHeight/2

	out := make([]Position, len(words))
	for li, line := range lines {
		lineCenterY := blockTop + float64(li)*p.LineHeight + p.LineHeight/2

		var totalW float64
		for _, pk := range line {
			totalW += pk.width
		}
		totalW += p.WordGap * float64(len(line)-1)

		cursor := p.AnchorX - totalW/2
		for _, pk := range line {
			out[pk.idx] = Position{
				X: int(math.Round(cursor + pk.width/2)),
				Y: int(math.Round(lineCenterY)),
			}
			cursor += pk.width + p.WordGap
		}
	}
	return out
}

package captions

import "fmt"

// ApplyGlow duplicates every event into a layered pair: a soft under-layer
// copy restyled with the glow color, a blur, and no regular outline/shadow,
// then the original sharp event on the layer drawn after it. The glow reads
// as sitting behind the text. Event count doubles.
func ApplyGlow(events []Event, s Style) []Event {
	s = s.Normalized()
	if s.GlowStrength <= 0 {
		return events
	}

	glow := ASSColor(s.GlowColor)
	glowTags := []string{
		"\\c" + glow,
		"\\4c" + glow,
		"\\bord0",
		fmt.Sprintf("\\blur%d", s.GlowStrength/2),
		"\\shad0",
	}

	out := make([]Event, 0, len(events)*2)
	for _, e := range events {
		under := e
		under.Layer = e.Layer
		// Appended tags win over the earlier color/outline directives.
		under.Tags = append(append([]string{}, e.Tags...), glowTags...)

		sharp := e
		sharp.Layer = e.Layer + 1
		sharp.Tags = append([]string{}, e.Tags...)

		out = append(out, under, sharp)
	}
	return out
}

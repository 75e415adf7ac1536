// Package captions compiles timestamped words plus a style configuration
// into an ASS subtitle document with word-synchronized animated events.
// Text widths come from a heuristic estimator, not real font metrics, so
// layout is deliberately approximate.
package captions

import (
	"fmt"
	"strings"

	"github.com/forPelevin/capgen/internal/types"
)

// GenerateASS compiles the full subtitle document: group events, optional
// glow duplication, script header, dialogue lines. An empty word list yields
// an empty document.
func GenerateASS(words []types.Word, groups []types.Group, width, height int, s Style, est WidthEstimator) string {
	if len(words) == 0 {
		return ""
	}
	s = s.Normalized()

	events := Compile(words, groups, width, height, s, est)
	if s.GlowStrength > 0 {
		events = ApplyGlow(events, s)
	}
	return renderDocument(events, width, height, s)
}

func renderDocument(events []Event, width, height int, s Style) string {
	var b strings.Builder
	writeHeader(&b, width, height, s)
	for _, e := range events {
		writeDialogue(&b, e)
	}
	return b.String()
}

// writeHeader emits the script info and the single Default style. The style
// anchors at \an5 because every event positions itself with \pos or \move
// about a center point.
func writeHeader(b *strings.Builder, width, height int, s Style) {
	shadow := ASSColor(s.ShadowColor)
	if s.ShadowColor == "" {
		shadow = "&H80000000&"
	}

	b.WriteString("[Script Info]\n")
	b.WriteString("Title: Dynamic Captions\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(b, "PlayResX: %d\n", width)
	fmt.Fprintf(b, "PlayResY: %d\n", height)
	b.WriteString("WrapStyle: 2\n")
	b.WriteString("ScaledBorderAndShadow: yes\n")
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, " +
		"OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, " +
		"ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, " +
		"Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(b, "Style: Default,%s,%d,%s,&H000000FF,%s,%s,%d,%d,0,0,100,100,%d,0,1,%d,%d,5,0,0,0,1\n",
		s.FontName, s.FontSize, ASSColor(s.NormalColor), ASSColor(s.OutlineColor), shadow,
		assBoolFlag(s.Bold), assBoolFlag(s.Italic), s.LetterSpacing, s.OutlineWidth, s.ShadowDepth)
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

func writeDialogue(b *strings.Builder, e Event) {
	fmt.Fprintf(b, "Dialogue: %d,%s,%s,Default,,0,0,0,,{%s}%s\n",
		e.Layer, ASSTime(e.Start), ASSTime(e.End), strings.Join(e.Tags, ""), e.Text)
}

// ASS encodes booleans as -1 (true) / 0 (false) in style lines.
func assBoolFlag(v bool) int {
	if v {
		return -1
	}
	return 0
}

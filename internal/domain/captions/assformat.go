package captions

import (
	"fmt"
	"math"
	"strings"
)

// ASSColor converts an RGB hex string (e.g. "FFD700", "#FFD700") to the ASS
// color token &H00BBGGRR&. ASS stores bytes in BGR order with a leading alpha.
// Malformed input falls back to white.
func ASSColor(rgbHex string) string {
	h := strings.TrimPrefix(strings.TrimSpace(rgbHex), "#")
	if len(h) != 6 {
		h = "FFFFFF"
	}
	r, g, b := h[0:2], h[2:4], h[4:6]
	return fmt.Sprintf("&H00%s%s%s&", b, g, r)
}

// ASSTime converts seconds to the ASS timestamp format H:MM:SS.cc
// (centisecond precision). Negative values clamp to zero.
func ASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	cs := int(math.Round(seconds * 100))
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// sanitizeText keeps dialogue text from breaking out of the override block.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

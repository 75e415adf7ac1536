// Package silence derives speech "keep" segments from word timestamps and
// remaps word timing onto the concatenated timeline after silent gaps are
// cut out of the video.
package silence

import (
	"time"

	"github.com/forPelevin/capgen/internal/types"
)

// Segment is a half-open span of source time, in seconds.
type Segment struct {
	Start float64
	End   float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// DetectSpeech converts word timestamps into padded speech segments. Any gap
// between consecutive words of at least minSilence becomes a cut boundary;
// each segment extends by padding on both sides so transitions keep their
// syllables.
func DetectSpeech(words []types.Word, minSilence, padding time.Duration) []Segment {
	if len(words) == 0 {
		return nil
	}

	pad := padding.Seconds()
	minGap := minSilence.Seconds()

	segStart := maxf(0, words[0].Start-pad)
	segEnd := words[0].End + pad

	var segments []Segment
	for _, w := range words[1:] {
		wStart := w.Start - pad
		wEnd := w.End + pad
		if wStart-segEnd < minGap {
			segEnd = maxf(segEnd, wEnd)
			continue
		}
		segments = append(segments, Segment{Start: maxf(0, segStart), End: segEnd})
		segStart = maxf(0, wStart)
		segEnd = wEnd
	}
	return append(segments, Segment{Start: maxf(0, segStart), End: segEnd})
}

// Clamp limits segments to [0, duration] and drops any that collapse.
func Clamp(segments []Segment, duration float64) []Segment {
	var out []Segment
	for _, s := range segments {
		s.Start = maxf(0, s.Start)
		if s.End > duration {
			s.End = duration
		}
		if s.End > s.Start {
			out = append(out, s)
		}
	}
	return out
}

// Words within this distance of a segment edge still count as inside it;
// ASR timing jitters slightly against the cut points.
const edgeTolerance = 0.05

// RemapWords shifts word timestamps onto the output timeline produced by
// concatenating the kept segments back to back. Words outside every kept
// segment are dropped. Input words are not mutated.
func RemapWords(words []types.Word, kept []Segment) []types.Word {
	var out []types.Word
	for _, w := range words {
		running := 0.0
		for _, seg := range kept {
			if w.Start >= seg.Start-edgeTolerance && w.Start <= seg.End+edgeTolerance {
				adj := w
				adj.Start = running + maxf(0, w.Start-seg.Start)
				adj.End = running + minf(seg.Duration(), w.End-seg.Start)
				if adj.End <= adj.Start {
					adj.End = adj.Start + (w.End - w.Start)
				}
				out = append(out, adj)
				break
			}
			running += seg.Duration()
		}
	}
	return out
}

// Removed reports how much source time the kept segments cut away.
func Removed(kept []Segment, duration float64) float64 {
	var keptTotal float64
	for _, s := range kept {
		keptTotal += s.Duration()
	}
	if removed := duration - keptTotal; removed > 0 {
		return removed
	}
	return 0
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

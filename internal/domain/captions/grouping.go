package captions

import (
	"sort"
	"strings"

	"github.com/forPelevin/capgen/internal/types"
)

const (
	// Words further apart than this never share a chunk.
	groupGapSeconds = 1.0
	// Hard cap on words per chunk, regardless of what a suggester asked for.
	maxGroupWords = 12
	// Minimum fraction of kept words a suggestion set must cover to be used.
	minSuggestionCoverage = 0.8
)

func endsWithClausePunct(text string) bool {
	t := strings.TrimSpace(text)
	for _, p := range []string{".", "?", "!", ","} {
		if strings.HasSuffix(t, p) {
			return true
		}
	}
	return false
}

// BuildGroups partitions the non-excluded words into display chunks. If the
// suggestions survive validation they are used (repaired as needed); anything
// malformed or under-covering degrades silently to deterministic grouping.
func BuildGroups(words []types.Word, suggestions []types.GroupSuggestion, excluded map[int]bool, wordsPerGroup int) []types.Group {
	if len(words) == 0 {
		return nil
	}
	if groups, ok := validateSuggestions(suggestions, words, excluded); ok {
		return attachTiming(groups, words)
	}
	return attachTiming(AutoGroup(words, excluded, wordsPerGroup), words)
}

// AutoGroup is the deterministic fallback: walk words in order and close the
// current chunk on the configured word count, clause punctuation, or a large
// time gap, whichever comes first. The remainder always flushes as a final
// (possibly shorter) chunk.
func AutoGroup(words []types.Word, excluded map[int]bool, wordsPerGroup int) []types.Group {
	if wordsPerGroup <= 0 {
		wordsPerGroup = DefaultStyle().WordsPerGroup
	}

	var groups []types.Group
	var current []int
	for i := range words {
		if excluded[i] {
			continue
		}
		if len(current) > 0 {
			prev := current[len(current)-1]
			if words[i].Start-words[prev].End >= groupGapSeconds {
				groups = append(groups, types.Group{WordIndices: current})
				current = nil
			}
		}
		current = append(current, i)
		if len(current) >= wordsPerGroup || endsWithClausePunct(words[i].Text) {
			groups = append(groups, types.Group{WordIndices: current})
			current = nil
		}
	}
	if len(current) > 0 {
		groups = append(groups, types.Group{WordIndices: current})
	}
	return groups
}

// validateSuggestions runs the repair pipeline over untrusted candidates:
// drop invalid and already-claimed indices (first claim wins), reject the set
// under 80% coverage, fill gaps, sort, re-split oversized or straddling
// chunks, then merge isolated singletons. ok=false means fall back.
func validateSuggestions(suggestions []types.GroupSuggestion, words []types.Word, excluded map[int]bool) ([]types.Group, bool) {
	if len(suggestions) == 0 {
		return nil, false
	}

	validWords := make(map[int]bool, len(words))
	for i := range words {
		if !excluded[i] {
			validWords[i] = true
		}
	}
	if len(validWords) == 0 {
		return nil, false
	}

	seen := make(map[int]bool)
	var validated [][]int
	for _, sg := range suggestions {
		var indices []int
		for _, idx := range sg.WordIndices {
			if !validWords[idx] || seen[idx] {
				continue
			}
			seen[idx] = true
			indices = append(indices, idx)
		}
		if len(indices) > 0 {
			validated = append(validated, indices)
		}
	}

	if float64(len(seen)) < float64(len(validWords))*minSuggestionCoverage {
		return nil, false
	}

	// Fill coverage gaps: attach a missing index to the group it directly
	// extends, otherwise give it a singleton.
	var missing []int
	for idx := range validWords {
		if !seen[idx] {
			missing = append(missing, idx)
		}
	}
	sort.Ints(missing)
	for _, idx := range missing {
		placed := false
		for gi := range validated {
			g := validated[gi]
			if g[len(g)-1] == idx-1 {
				validated[gi] = append(g, idx)
				placed = true
				break
			}
		}
		if !placed {
			validated = append(validated, []int{idx})
		}
	}

	sort.Slice(validated, func(i, j int) bool { return validated[i][0] < validated[j][0] })

	resplit := resplitGroups(validated, words)
	merged := mergeSingletons(resplit, words)

	groups := make([]types.Group, 0, len(merged))
	for _, indices := range merged {
		groups = append(groups, types.Group{WordIndices: indices})
	}
	return groups, true
}

// resplitGroups breaks each group on large time gaps, the word cap, and
// clause punctuation.
func resplitGroups(groups [][]int, words []types.Word) [][]int {
	var out [][]int
	for _, indices := range groups {
		var chunk []int
		for _, idx := range indices {
			if len(chunk) > 0 {
				prev := chunk[len(chunk)-1]
				if words[idx].Start-words[prev].End >= groupGapSeconds {
					out = append(out, chunk)
					chunk = nil
				}
			}
			chunk = append(chunk, idx)
			if endsWithClausePunct(words[idx].Text) || len(chunk) >= maxGroupWords {
				out = append(out, chunk)
				chunk = nil
			}
		}
		if len(chunk) > 0 {
			out = append(out, chunk)
		}
	}
	return out
}

// mergeSingletons eliminates isolated one-word groups: a trailing singleton
// merges backward into the previous group, a leading singleton merges forward
// into the next multi-word group, as long as the neighbour is close in time
// and the merged group stays within the word cap.
func mergeSingletons(groups [][]int, words []types.Word) [][]int {
	var out [][]int
	for _, indices := range groups {
		if len(indices) == 0 {
			continue
		}

		if len(indices) == 1 {
			idx := indices[0]
			if len(out) > 0 {
				prev := out[len(out)-1]
				prevIdx := prev[len(prev)-1]
				gap := words[idx].Start - words[prevIdx].End
				if gap < groupGapSeconds && len(prev) < maxGroupWords {
					out[len(out)-1] = append(prev, idx)
					continue
				}
			}
			out = append(out, indices)
			continue
		}

		if len(out) > 0 && len(out[len(out)-1]) == 1 {
			prevIdx := out[len(out)-1][0]
			gap := words[indices[0]].Start - words[prevIdx].End
			if gap < groupGapSeconds && 1+len(indices) <= maxGroupWords {
				out[len(out)-1] = append(out[len(out)-1], indices...)
				continue
			}
		}
		out = append(out, indices)
	}
	return out
}

// attachTiming derives each group's start/end and speaker from its resolved
// words and drops any group left without valid indices.
func attachTiming(groups []types.Group, words []types.Word) []types.Group {
	out := groups[:0]
	for _, g := range groups {
		var resolved []int
		for _, idx := range g.WordIndices {
			if idx >= 0 && idx < len(words) {
				resolved = append(resolved, idx)
			}
		}
		if len(resolved) == 0 {
			continue
		}
		g.WordIndices = resolved
		g.Start = words[resolved[0]].Start
		g.End = words[resolved[len(resolved)-1]].End
		if g.Speaker == "" {
			g.Speaker = words[resolved[0]].Speaker
		}
		out = append(out, g)
	}
	return out
}

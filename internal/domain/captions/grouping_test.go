package captions

import (
	"reflect"
	"testing"

	"github.com/forPelevin/capgen/internal/types"
)

// evenWords builds n words, 0.4s long, 0.1s apart, starting at t=0.
func evenWords(n int) []types.Word {
	words := make([]types.Word, n)
	for i := range words {
		start := float64(i) * 0.5
		words[i] = types.Word{Text: "word", Start: start, End: start + 0.4}
	}
	return words
}

func indicesOf(groups []types.Group) [][]int {
	out := make([][]int, len(groups))
	for i, g := range groups {
		out[i] = g.WordIndices
	}
	return out
}

func TestAutoGroupByCount(t *testing.T) {
	groups := AutoGroup(evenWords(7), nil, 3)
	want := [][]int{{0, 1, 2}, {3, 4, 5}, {6}}
	if got := indicesOf(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestAutoGroupClosesOnPunctuation(t *testing.T) {
	words := evenWords(5)
	words[1].Text = "done."
	groups := AutoGroup(words, nil, 4)
	want := [][]int{{0, 1}, {2, 3, 4}}
	if got := indicesOf(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestAutoGroupClosesOnTimeGap(t *testing.T) {
	words := evenWords(4)
	// Push a 2s pause between words 1 and 2.
	for i := 2; i < 4; i++ {
		words[i].Start += 2
		words[i].End += 2
	}
	groups := AutoGroup(words, nil, 4)
	want := [][]int{{0, 1}, {2, 3}}
	if got := indicesOf(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestAutoGroupSkipsExcluded(t *testing.T) {
	groups := AutoGroup(evenWords(5), map[int]bool{2: true}, 10)
	want := [][]int{{0, 1, 3, 4}}
	if got := indicesOf(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestBuildGroupsUsesValidSuggestions(t *testing.T) {
	words := evenWords(6)
	suggestions := []types.GroupSuggestion{
		{WordIndices: []int{0, 1, 2}},
		{WordIndices: []int{3, 4, 5}},
	}
	groups := BuildGroups(words, suggestions, nil, 4)
	want := [][]int{{0, 1, 2}, {3, 4, 5}}
	if got := indicesOf(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
	if groups[0].Start != words[0].Start || groups[0].End != words[2].End {
		t.Errorf("group timing = [%v, %v], want [%v, %v]",
			groups[0].Start, groups[0].End, words[0].Start, words[2].End)
	}
}

func TestBuildGroupsRejectsLowCoverage(t *testing.T) {
	words := evenWords(6)
	// 2 of 6 words covered: 33%, far below the threshold.
	suggestions := []types.GroupSuggestion{{WordIndices: []int{0, 5}}}
	groups := BuildGroups(words, suggestions, nil, 3)
	fallback := BuildGroups(words, nil, nil, 3)
	if !reflect.DeepEqual(indicesOf(groups), indicesOf(fallback)) {
		t.Errorf("low-coverage suggestions not discarded: %v", indicesOf(groups))
	}
}

func TestBuildGroupsIgnoresInvalidIndices(t *testing.T) {
	words := evenWords(4)
	suggestions := []types.GroupSuggestion{
		{WordIndices: []int{-3, 0, 1, 99}},
		{WordIndices: []int{2, 3}},
	}
	groups := BuildGroups(words, suggestions, nil, 4)
	for _, g := range groups {
		for _, idx := range g.WordIndices {
			if idx < 0 || idx >= len(words) {
				t.Fatalf("out-of-range index %d survived validation", idx)
			}
		}
	}
}

func TestBuildGroupsFirstClaimWins(t *testing.T) {
	words := evenWords(3)
	suggestions := []types.GroupSuggestion{
		{WordIndices: []int{0, 1}},
		{WordIndices: []int{1, 2}},
	}
	groups := BuildGroups(words, suggestions, nil, 4)
	seen := map[int]int{}
	for _, g := range groups {
		for _, idx := range g.WordIndices {
			seen[idx]++
		}
	}
	for idx, n := range seen {
		if n != 1 {
			t.Errorf("word %d appears in %d groups", idx, n)
		}
	}
	if len(seen) != 3 {
		t.Errorf("covered %d of 3 words", len(seen))
	}
}

func TestBuildGroupsFillsGaps(t *testing.T) {
	words := evenWords(5)
	// Word 2 missing: coverage 4/5 = 80%, accepted; the hole is repaired by
	// appending to the group that ends right before it.
	suggestions := []types.GroupSuggestion{
		{WordIndices: []int{0, 1}},
		{WordIndices: []int{3, 4}},
	}
	groups := BuildGroups(words, suggestions, nil, 4)
	want := [][]int{{0, 1, 2}, {3, 4}}
	if got := indicesOf(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestBuildGroupsResplitsOversized(t *testing.T) {
	words := evenWords(13)
	all := make([]int, 13)
	for i := range all {
		all[i] = i
	}
	groups := BuildGroups(words, []types.GroupSuggestion{{WordIndices: all}}, nil, 4)
	for _, g := range groups {
		if len(g.WordIndices) > maxGroupWords {
			t.Errorf("group of %d words exceeds the cap", len(g.WordIndices))
		}
	}
}

func TestBuildGroupsMergesTrailingSingleton(t *testing.T) {
	words := evenWords(4)
	suggestions := []types.GroupSuggestion{
		{WordIndices: []int{0, 1, 2}},
		{WordIndices: []int{3}},
	}
	groups := BuildGroups(words, suggestions, nil, 4)
	want := [][]int{{0, 1, 2, 3}}
	if got := indicesOf(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestBuildGroupsKeepsDistantSingleton(t *testing.T) {
	words := evenWords(4)
	// Isolate the last word by 3 seconds.
	words[3].Start += 3
	words[3].End += 3
	suggestions := []types.GroupSuggestion{
		{WordIndices: []int{0, 1, 2}},
		{WordIndices: []int{3}},
	}
	groups := BuildGroups(words, suggestions, nil, 4)
	want := [][]int{{0, 1, 2}, {3}}
	if got := indicesOf(groups); !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestBuildGroupsEmptyWords(t *testing.T) {
	if groups := BuildGroups(nil, nil, nil, 4); groups != nil {
		t.Errorf("expected nil groups, got %v", groups)
	}
}

func TestEndsWithClausePunct(t *testing.T) {
	tests := map[string]bool{
		"word":   false,
		"word.":  true,
		"word?":  true,
		"word!":  true,
		"word,":  true,
		"word. ": true,
		"w.ord":  false,
	}
	for in, want := range tests {
		if got := endsWithClausePunct(in); got != want {
			t.Errorf("endsWithClausePunct(%q) = %v, want %v", in, got, want)
		}
	}
}

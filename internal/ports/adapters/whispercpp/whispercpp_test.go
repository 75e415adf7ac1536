package whispercpp

import (
	"testing"

	"github.com/forPelevin/capgen/internal/types"
)

func TestFlattenWords(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{
		{Words: []types.Word{{Text: "a", Start: 0, End: 0.2}, {Text: "b", Start: 0.3, End: 0.5}}},
		{Words: []types.Word{{Text: "c", Start: 1.0, End: 1.2}}},
		{}, // segment without word timestamps contributes nothing
	}}
	words := FlattenWords(tr)
	if len(words) != 3 {
		t.Fatalf("words = %d, want 3", len(words))
	}
	if words[2].Text != "c" || words[2].Start != 1.0 {
		t.Errorf("flatten order broken: %+v", words[2])
	}
}

func TestFlattenWordsEmpty(t *testing.T) {
	if words := FlattenWords(types.Transcript{}); words != nil {
		t.Errorf("expected nil, got %v", words)
	}
}

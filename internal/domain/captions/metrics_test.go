package captions

import "testing"

func TestMeasureMonotonicInFontSize(t *testing.T) {
	est := HeuristicEstimator{}
	small := est.Measure("HELLO", 40, 0, "Impact")
	big := est.Measure("HELLO", 80, 0, "Impact")
	if big <= small {
		t.Errorf("width at 80pt (%v) not greater than at 40pt (%v)", big, small)
	}
}

func TestMeasureCharacterClasses(t *testing.T) {
	est := HeuristicEstimator{}
	narrow := est.Measure("ill", 80, 0, "Impact")
	normal := est.Measure("abc", 80, 0, "Impact")
	wide := est.Measure("mmw", 80, 0, "Impact")
	if !(narrow < normal && normal < wide) {
		t.Errorf("expected narrow < normal < wide, got %v, %v, %v", narrow, normal, wide)
	}
}

func TestMeasureCondensedVsWideFamily(t *testing.T) {
	est := HeuristicEstimator{}
	// All-default characters: condensed = 5*0.50*1.0*80, wide = 5*0.65*1.25*80.
	if got := est.Measure("HELLO", 80, 0, "Impact"); got != 200 {
		t.Errorf("condensed width = %v, want 200", got)
	}
	if got := est.Measure("HELLO", 80, 0, "Comic Sans MS"); got != 325 {
		t.Errorf("wide-family width = %v, want 325", got)
	}
}

func TestMeasureFontNameNormalization(t *testing.T) {
	est := HeuristicEstimator{}
	a := est.Measure("HELLO", 80, 0, "Impact")
	b := est.Measure("HELLO", 80, 0, "  IMPACT ")
	if a != b {
		t.Errorf("case/space-insensitive lookup broken: %v != %v", a, b)
	}
	c := est.Measure("HELLO", 80, 0, "Bebas Neue")
	if a != c {
		t.Errorf("all condensed fonts should share the family table: %v != %v", a, c)
	}
}

func TestMeasureLetterSpacing(t *testing.T) {
	est := HeuristicEstimator{}
	base := est.Measure("abcd", 80, 0, "Impact")
	spaced := est.Measure("abcd", 80, 10, "Impact")
	if spaced != base+30 { // spacing between characters only: 3 gaps
		t.Errorf("spaced width = %v, want %v", spaced, base+30)
	}
	// A single character has no inter-character gaps.
	if est.Measure("a", 80, 10, "Impact") != est.Measure("a", 80, 0, "Impact") {
		t.Error("letter spacing applied to a single character")
	}
}

func TestMeasureDeterministic(t *testing.T) {
	est := HeuristicEstimator{}
	a := est.Measure("SOMETHING", 72, 2, "Oswald")
	b := est.Measure("SOMETHING", 72, 2, "Oswald")
	if a != b {
		t.Errorf("measure not deterministic: %v != %v", a, b)
	}
}

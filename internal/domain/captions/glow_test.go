package captions

import (
	"strings"
	"testing"
)

func TestApplyGlowDisabled(t *testing.T) {
	events := []Event{{Start: 0, End: 1, Text: "HI", Tags: []string{"\\pos(5,5)"}}}
	s := DefaultStyle() // glow off by default
	got := ApplyGlow(events, s)
	if len(got) != 1 {
		t.Fatalf("events = %d, want unchanged", len(got))
	}
}

func TestApplyGlowDuplicatesOntoLayers(t *testing.T) {
	events := []Event{
		{Start: 0, End: 1, Layer: 0, Text: "HI", Tags: []string{"\\pos(5,5)", "\\c&H00FFFFFF&"}},
		{Start: 1, End: 2, Layer: 2, Text: "YO", Tags: []string{"\\pos(9,9)"}},
	}
	s := DefaultStyle()
	s.GlowStrength = 10

	got := ApplyGlow(events, s)
	if len(got) != 4 {
		t.Fatalf("events = %d, want doubled", len(got))
	}

	for i := 0; i < len(got); i += 2 {
		under, sharp := got[i], got[i+1]
		orig := events[i/2]

		if sharp.Layer != under.Layer+1 {
			t.Errorf("pair %d: sharp layer %d not above glow layer %d", i/2, sharp.Layer, under.Layer)
		}
		if under.Start != orig.Start || under.End != orig.End || under.Text != orig.Text {
			t.Errorf("pair %d: glow copy changed timing or text", i/2)
		}

		underTags := strings.Join(under.Tags, "")
		if !strings.Contains(underTags, "\\blur5") {
			t.Errorf("pair %d: glow blur missing (strength/2): %q", i/2, underTags)
		}
		if !strings.Contains(underTags, "\\shad0") {
			t.Errorf("pair %d: glow copy keeps its shadow: %q", i/2, underTags)
		}
		if !strings.Contains(underTags, "\\bord0") {
			t.Errorf("pair %d: glow copy keeps its outline: %q", i/2, underTags)
		}
		if !strings.Contains(underTags, ASSColor(s.GlowColor)) {
			t.Errorf("pair %d: glow color missing: %q", i/2, underTags)
		}

		sharpTags := strings.Join(sharp.Tags, "")
		if strings.Contains(sharpTags, "\\shad0") || strings.Contains(sharpTags, "\\blur5") || strings.Contains(sharpTags, "\\bord0") {
			t.Errorf("pair %d: sharp copy picked up glow tags: %q", i/2, sharpTags)
		}
	}
}

func TestApplyGlowLeavesInputAlone(t *testing.T) {
	events := []Event{{Start: 0, End: 1, Text: "HI", Tags: []string{"\\pos(5,5)"}}}
	s := DefaultStyle()
	s.GlowStrength = 8
	_ = ApplyGlow(events, s)
	if len(events[0].Tags) != 1 {
		t.Errorf("input event mutated: %v", events[0].Tags)
	}
}

package types

// Transcript is the raw ASR output: segments with optional word-level timing.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Word is one timestamped word. Indices into the word list are the stable
// identity used by groups; the structs themselves are immutable inputs.
type Word struct {
	Text    string     `json:"text"`
	Start   float64    `json:"start"`
	End     float64    `json:"end"`
	Speaker string     `json:"speaker,omitempty"`
	Style   *WordStyle `json:"style,omitempty"`
}

// WordStyle is a sparse per-word override. Unset fields inherit the group or
// global style at emission time; the base style is never mutated.
type WordStyle struct {
	HighlightColor string `json:"highlight_color,omitempty"`
	NormalColor    string `json:"normal_color,omitempty"`
	FontSize       *int   `json:"font_size,omitempty"`
	FontName       string `json:"font_name,omitempty"`
	Bold           *bool  `json:"bold,omitempty"`
	Italic         *bool  `json:"italic,omitempty"`
	ScaleHighlight *int   `json:"scale_highlight,omitempty"`
	OutlineColor   string `json:"outline_color,omitempty"`
	OutlineWidth   *int   `json:"outline_width,omitempty"`
}

// Group is one caption chunk: strictly increasing word indices plus derived
// timing taken from the first and last resolved words.
type Group struct {
	WordIndices []int   `json:"word_indices"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Speaker     string  `json:"speaker,omitempty"`
}

// GroupSuggestion is an externally suggested (untrusted) group candidate,
// e.g. from an LLM. It must pass validation before use.
type GroupSuggestion struct {
	WordIndices []int `json:"word_indices"`
}

// Manifest describes one completed caption run.
type Manifest struct {
	Input           string  `json:"input"`
	Video           string  `json:"video,omitempty"`
	Subtitles       string  `json:"subtitles"`
	WordCount       int     `json:"word_count"`
	GroupCount      int     `json:"group_count"`
	SilenceRemovedS float64 `json:"silence_removed_s,omitempty"`
}

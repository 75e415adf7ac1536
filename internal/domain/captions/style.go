package captions

import "github.com/forPelevin/capgen/internal/types"

// WordAnimation is the per-word highlight animation used in dynamic mode.
type WordAnimation string

const (
	WordAnimNone      WordAnimation = "none"
	WordAnimScale     WordAnimation = "scale"
	WordAnimBounce    WordAnimation = "bounce"
	WordAnimColorOnly WordAnimation = "color-only"
)

// GroupAnimation is the one-time group entrance played on a dynamic group's
// first highlight window.
type GroupAnimation string

const (
	GroupAnimNone       GroupAnimation = "none"
	GroupAnimFadeIn     GroupAnimation = "fade-in"
	GroupAnimSlideUp    GroupAnimation = "slide-up"
	GroupAnimSlideDown  GroupAnimation = "slide-down"
	GroupAnimSlideLeft  GroupAnimation = "slide-left"
	GroupAnimSlideRight GroupAnimation = "slide-right"
	GroupAnimPopIn      GroupAnimation = "pop-in"
	GroupAnimBounce     GroupAnimation = "bounce"
	GroupAnimBlurIn     GroupAnimation = "blur-in"
	GroupAnimStretch    GroupAnimation = "stretch"
	GroupAnimZoomDrop   GroupAnimation = "zoom-drop"
	GroupAnimFlipIn     GroupAnimation = "flip-in"
	GroupAnimTypewriter GroupAnimation = "typewriter"
)

// SentenceAnimation is the whole-chunk entrance used in static mode.
type SentenceAnimation string

const (
	SentenceAnimNone       SentenceAnimation = "none"
	SentenceAnimFadeIn     SentenceAnimation = "fade-in"
	SentenceAnimPopIn      SentenceAnimation = "pop-in"
	SentenceAnimSlideUp    SentenceAnimation = "slide-up"
	SentenceAnimSlideDown  SentenceAnimation = "slide-down"
	SentenceAnimSlideLeft  SentenceAnimation = "slide-left"
	SentenceAnimSlideRight SentenceAnimation = "slide-right"
	SentenceAnimBounce     SentenceAnimation = "bounce"
	SentenceAnimBlurIn     SentenceAnimation = "blur-in"
	SentenceAnimStretch    SentenceAnimation = "stretch"
	SentenceAnimZoomDrop   SentenceAnimation = "zoom-drop"
	SentenceAnimFlipIn     SentenceAnimation = "flip-in"
	SentenceAnimTypewriter SentenceAnimation = "typewriter"
	SentenceAnimCascade    SentenceAnimation = "cascade"
)

// Style is the flat caption style configuration. It is a pure value object:
// read during compilation, never mutated. Colors are RGB hex strings.
type Style struct {
	FontName          string            `json:"font_name" yaml:"font_name"`
	FontSize          int               `json:"font_size" yaml:"font_size"`
	Bold              bool              `json:"bold" yaml:"bold"`
	Italic            bool              `json:"italic" yaml:"italic"`
	HighlightColor    string            `json:"highlight_color" yaml:"highlight_color"`
	NormalColor       string            `json:"normal_color" yaml:"normal_color"`
	OutlineColor      string            `json:"outline_color" yaml:"outline_color"`
	ShadowColor       string            `json:"shadow_color" yaml:"shadow_color"`
	OutlineWidth      int               `json:"outline_width" yaml:"outline_width"`
	ShadowDepth       int               `json:"shadow_depth" yaml:"shadow_depth"`
	GlowStrength      int               `json:"glow_strength" yaml:"glow_strength"`
	GlowColor         string            `json:"glow_color" yaml:"glow_color"`
	MarginH           int               `json:"margin_h" yaml:"margin_h"`
	MarginV           int               `json:"margin_v" yaml:"margin_v"`
	LetterSpacing     int               `json:"letter_spacing" yaml:"letter_spacing"`
	WordGap           int               `json:"word_gap" yaml:"word_gap"`
	PosX              int               `json:"pos_x" yaml:"pos_x"`
	PosY              int               `json:"pos_y" yaml:"pos_y"`
	ScaleHighlight    int               `json:"scale_highlight" yaml:"scale_highlight"`
	WordsPerGroup     int               `json:"words_per_group" yaml:"words_per_group"`
	DynamicMode       bool              `json:"dynamic_mode" yaml:"dynamic_mode"`
	Uppercase         bool              `json:"uppercase" yaml:"uppercase"`
	WordAnimation     WordAnimation     `json:"animation" yaml:"animation"`
	GroupAnimation    GroupAnimation    `json:"group_animation" yaml:"group_animation"`
	SentenceAnimation SentenceAnimation `json:"sentence_animation" yaml:"sentence_animation"`
	AnimSpeed         int               `json:"anim_speed" yaml:"anim_speed"`
	AnimIntensity     int               `json:"anim_intensity" yaml:"anim_intensity"`
	StaticAnimSpeed   int               `json:"static_anim_speed" yaml:"static_anim_speed"`
}

// DefaultStyle returns the global defaults: bold uppercase Impact with a gold
// highlight, anchored at (50%, 85%).
func DefaultStyle() Style {
	return Style{
		FontName:          "Impact",
		FontSize:          80,
		Bold:              true,
		HighlightColor:    "FFD700",
		NormalColor:       "FFFFFF",
		OutlineColor:      "000000",
		ShadowColor:       "000000",
		OutlineWidth:      4,
		ShadowDepth:       2,
		GlowColor:         "FFD700",
		MarginH:           10,
		MarginV:           60,
		PosX:              50,
		PosY:              85,
		ScaleHighlight:    115,
		WordsPerGroup:     4,
		DynamicMode:       true,
		Uppercase:         true,
		WordAnimation:     WordAnimColorOnly,
		GroupAnimation:    GroupAnimNone,
		SentenceAnimation: SentenceAnimFadeIn,
		AnimSpeed:         200,
		AnimIntensity:     100,
		StaticAnimSpeed:   200,
	}
}

// Normalized fills zero-value fields that have no meaningful zero with the
// global defaults, so a sparse style deserialized from JSON or YAML still
// compiles to something sensible.
func (s Style) Normalized() Style {
	d := DefaultStyle()
	if s.FontName == "" {
		s.FontName = d.FontName
	}
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if s.HighlightColor == "" {
		s.HighlightColor = d.HighlightColor
	}
	if s.NormalColor == "" {
		s.NormalColor = d.NormalColor
	}
	if s.OutlineColor == "" {
		s.OutlineColor = d.OutlineColor
	}
	if s.GlowColor == "" {
		s.GlowColor = d.GlowColor
	}
	if s.PosX <= 0 {
		s.PosX = d.PosX
	}
	if s.PosY <= 0 {
		s.PosY = d.PosY
	}
	if s.ScaleHighlight <= 0 {
		s.ScaleHighlight = d.ScaleHighlight
	}
	if s.WordsPerGroup <= 0 {
		s.WordsPerGroup = d.WordsPerGroup
	}
	if s.WordAnimation == "" {
		s.WordAnimation = d.WordAnimation
	}
	if s.GroupAnimation == "" {
		s.GroupAnimation = d.GroupAnimation
	}
	if s.SentenceAnimation == "" {
		s.SentenceAnimation = d.SentenceAnimation
	}
	if s.AnimSpeed <= 0 {
		s.AnimSpeed = d.AnimSpeed
	}
	if s.AnimIntensity <= 0 {
		s.AnimIntensity = d.AnimIntensity
	}
	if s.StaticAnimSpeed <= 0 {
		s.StaticAnimSpeed = d.StaticAnimSpeed
	}
	return s
}

// resolvedWordStyle is the effective style for one word after merging the
// sparse per-word override onto the group style onto the global defaults,
// field by field.
type resolvedWordStyle struct {
	highlightColor string
	normalColor    string
	scaleHighlight int

	// Optional override tags; nil means "inherit the base style" and emits
	// no directive at all.
	fontSize     *int
	fontName     string
	bold         *bool
	italic       *bool
	outlineColor string
	outlineWidth *int
}

func resolveWordStyle(ws *types.WordStyle, group Style) resolvedWordStyle {
	r := resolvedWordStyle{
		highlightColor: group.HighlightColor,
		normalColor:    group.NormalColor,
		scaleHighlight: group.ScaleHighlight,
	}
	if ws == nil {
		return r
	}
	if ws.HighlightColor != "" {
		r.highlightColor = ws.HighlightColor
	}
	if ws.NormalColor != "" {
		r.normalColor = ws.NormalColor
	}
	if ws.ScaleHighlight != nil {
		r.scaleHighlight = *ws.ScaleHighlight
	}
	r.fontSize = ws.FontSize
	r.fontName = ws.FontName
	r.bold = ws.Bold
	r.italic = ws.Italic
	r.outlineColor = ws.OutlineColor
	r.outlineWidth = ws.OutlineWidth
	return r
}

package captions

import (
	"fmt"
	"strings"

	"github.com/forPelevin/capgen/internal/types"
)

// Event is one timed, styled, positioned unit of visible text handed to the
// renderer. Events may overlap freely; lower layers draw first.
type Event struct {
	Start float64
	End   float64
	Layer int
	Text  string
	Tags  []string
}

// A highlight window shorter than this is stretched to stay visible.
const minWordDuration = 0.15

// Compile turns (words, groups, style) into a flat ordered event list. It is
// a pure function: no shared state, safe to call concurrently for independent
// requests.
func Compile(words []types.Word, groups []types.Group, width, height int, s Style, est WidthEstimator) []Event {
	if len(words) == 0 {
		return nil
	}
	s = s.Normalized()
	if est == nil {
		est = HeuristicEstimator{}
	}

	var events []Event
	for _, g := range groups {
		c, ok := newGroupContext(g, words, width, height, s, est)
		if !ok {
			continue
		}
		if s.DynamicMode {
			events = append(events, c.emitDynamic()...)
		} else {
			events = append(events, c.emitStatic()...)
		}
	}
	return events
}

type groupContext struct {
	group  types.Group
	words  []types.Word // resolved group words, in order
	texts  []string     // display text per word (case already applied)
	s      Style
	width  int
	height int
	est    WidthEstimator
	cx     int // anchor center, pixels
	cy     int
}

func newGroupContext(g types.Group, words []types.Word, width, height int, s Style, est WidthEstimator) (groupContext, bool) {
	c := groupContext{
		group:  g,
		s:      s,
		width:  width,
		height: height,
		est:    est,
		cx:     width * s.PosX / 100,
		cy:     height * s.PosY / 100,
	}
	for _, idx := range g.WordIndices {
		if idx < 0 || idx >= len(words) {
			continue
		}
		w := words[idx]
		text := sanitizeText(w.Text)
		if s.Uppercase {
			text = strings.ToUpper(text)
		}
		c.words = append(c.words, w)
		c.texts = append(c.texts, text)
	}
	if len(c.words) == 0 {
		return groupContext{}, false
	}
	return c, true
}

func (c groupContext) sentence() string {
	return strings.Join(c.texts, " ")
}

// layout computes the fixed center point for every word of the group once;
// all highlight states reuse it so the active-word scale never reflows text.
func (c groupContext) layout() []Position {
	fontSize := float64(c.s.FontSize)
	spaceW := c.est.Measure(" ", fontSize, 0, c.s.FontName)
	return LayoutWords(c.texts, c.est, LayoutParams{
		FontSize:      fontSize,
		FontName:      c.s.FontName,
		LetterSpacing: float64(c.s.LetterSpacing),
		MaxWidth:      float64(c.width - 2*c.s.MarginH),
		LineHeight:    fontSize * 1.25,
		AnchorX:       float64(c.cx),
		AnchorY:       float64(c.cy),
		WordGap:       spaceW * (1 + float64(c.s.WordGap)*0.6),
	})
}

// ---- tag builders ----

func posTag(cx, cy int) string {
	return fmt.Sprintf("\\q2\\an5\\pos(%d,%d)", cx, cy)
}

func moveTag(fromX, fromY, toX, toY, durMs int) string {
	return fmt.Sprintf("\\q2\\an5\\move(%d,%d,%d,%d,0,%d)", fromX, fromY, toX, toY, durMs)
}

func colorTag(rgbHex string) string {
	return "\\c" + ASSColor(rgbHex)
}

// wordAnimTags maps the per-word highlight animation onto its override tags.
// Only the active word of a highlight window gets these.
var wordAnimTags = map[WordAnimation]func(scale int) string{
	WordAnimNone:      func(int) string { return "" },
	WordAnimColorOnly: func(int) string { return "" },
	WordAnimScale: func(scale int) string {
		return fmt.Sprintf("\\fscx%d\\fscy%d", scale, scale)
	},
	WordAnimBounce: func(scale int) string {
		return fmt.Sprintf("\\fscx%d\\fscy%d\\fry-5", scale, scale)
	},
}

// groupEntrance is the directive a group-level entrance contributes to each
// event of the group's first highlight window. Move entrances replace the
// \pos tag; the rest are appended after it.
type groupEntrance struct {
	tag  string
	move bool
}

var groupAnimCatalog = map[GroupAnimation]func(c groupContext, cx, cy int) groupEntrance{
	GroupAnimNone: func(groupContext, int, int) groupEntrance { return groupEntrance{} },
	GroupAnimFadeIn: func(c groupContext, _, _ int) groupEntrance {
		return groupEntrance{tag: fmt.Sprintf("\\fad(%d,0)", c.s.AnimSpeed)}
	},
	GroupAnimSlideUp: func(c groupContext, cx, cy int) groupEntrance {
		offset := (c.s.FontSize / 2) * c.s.AnimIntensity / 100
		return groupEntrance{tag: fmt.Sprintf("\\move(%d,%d,%d,%d,0,%d)", cx, cy+offset, cx, cy, c.s.AnimSpeed), move: true}
	},
	GroupAnimSlideDown: func(c groupContext, cx, cy int) groupEntrance {
		offset := (c.s.FontSize / 2) * c.s.AnimIntensity / 100
		return groupEntrance{tag: fmt.Sprintf("\\move(%d,%d,%d,%d,0,%d)", cx, cy-offset, cx, cy, c.s.AnimSpeed), move: true}
	},
	GroupAnimSlideLeft: func(c groupContext, cx, cy int) groupEntrance {
		offset := (c.width / 3) * c.s.AnimIntensity / 100
		return groupEntrance{tag: fmt.Sprintf("\\move(%d,%d,%d,%d,0,%d)", cx-offset, cy, cx, cy, c.s.AnimSpeed), move: true}
	},
	GroupAnimSlideRight: func(c groupContext, cx, cy int) groupEntrance {
		offset := (c.width / 3) * c.s.AnimIntensity / 100
		return groupEntrance{tag: fmt.Sprintf("\\move(%d,%d,%d,%d,0,%d)", cx+offset, cy, cx, cy, c.s.AnimSpeed), move: true}
	},
	GroupAnimPopIn: func(c groupContext, _, _ int) groupEntrance {
		start := max(0, 100-c.s.AnimIntensity)
		return groupEntrance{tag: fmt.Sprintf("\\fscx%d\\fscy%d\\t(0,%d,\\fscx100\\fscy100)", start, start, c.s.AnimSpeed)}
	},
	GroupAnimBounce: func(c groupContext, cx, cy int) groupEntrance {
		offset := c.s.FontSize * c.s.AnimIntensity / 100
		return groupEntrance{tag: fmt.Sprintf("\\move(%d,%d,%d,%d,0,%d)", cx, cy-offset, cx, cy, c.s.AnimSpeed), move: true}
	},
	GroupAnimBlurIn: func(c groupContext, _, _ int) groupEntrance {
		blur := 20 * c.s.AnimIntensity / 100
		return groupEntrance{tag: fmt.Sprintf("\\blur%d\\t(0,%d,\\blur0)", blur, c.s.AnimSpeed)}
	},
	GroupAnimStretch: func(c groupContext, _, _ int) groupEntrance {
		start := max(0, 100-c.s.AnimIntensity)
		return groupEntrance{tag: fmt.Sprintf("\\fscx%d\\fscy100\\t(0,%d,\\fscx100\\fscy100)", start, c.s.AnimSpeed)}
	},
	GroupAnimZoomDrop: func(c groupContext, cx, cy int) groupEntrance {
		offset := (c.s.FontSize / 2) * c.s.AnimIntensity / 100
		zoom := 100 + 30*c.s.AnimIntensity/100
		tag := fmt.Sprintf("\\move(%d,%d,%d,%d,0,%d)", cx, cy-offset, cx, cy, c.s.AnimSpeed) +
			fmt.Sprintf("\\fscx%d\\fscy%d\\t(0,%d,\\fscx100\\fscy100)", zoom, zoom, c.s.AnimSpeed) +
			fmt.Sprintf("\\fad(%d,0)", c.s.AnimSpeed/2)
		return groupEntrance{tag: tag, move: true}
	},
	GroupAnimFlipIn: func(c groupContext, _, _ int) groupEntrance {
		return groupEntrance{tag: fmt.Sprintf("\\fscx0\\t(0,%d,\\fscx100)\\fad(%d,0)", c.s.AnimSpeed, c.s.AnimSpeed/3)}
	},
	GroupAnimTypewriter: func(groupContext, int, int) groupEntrance {
		// The reveal itself happens by suppressing not-yet-active words;
		// each word only needs a short fade as it appears.
		return groupEntrance{tag: "\\fad(50,0)"}
	},
}

func (c groupContext) entrance(cx, cy int) groupEntrance {
	fn, ok := groupAnimCatalog[c.s.GroupAnimation]
	if !ok {
		return groupEntrance{}
	}
	return fn(c, cx, cy)
}

// ---- dynamic mode ----

// highlightWindow is the time span during which word i is the active one:
// from its own start until the next word starts (or its own end for the last
// word), coerced positive and clamped to the group bounds.
func (c groupContext) highlightWindow(i int) (float64, float64) {
	start := c.words[i].Start
	var end float64
	if i+1 < len(c.words) {
		end = c.words[i+1].Start
	} else {
		end = c.words[i].End
	}
	if end <= start {
		end = start + minWordDuration
	}
	start = maxf(start, c.group.Start)
	end = minf(end, c.group.End)
	if end <= start {
		end = start + minWordDuration
	}
	return start, end
}

func (c groupContext) emitDynamic() []Event {
	positions := c.layout()
	var events []Event

	for i := range c.words {
		start, end := c.highlightWindow(i)

		for j := range c.words {
			// Typewriter reveal: words after the active one stay hidden.
			if c.s.GroupAnimation == GroupAnimTypewriter && j > i {
				continue
			}

			pos := positions[j]
			rs := resolveWordStyle(c.words[j].Style, c.s)

			active := j == i
			color := rs.normalColor
			if active {
				color = rs.highlightColor
			}

			var tags []string
			entranceApplied := false
			if i == 0 {
				if ent := c.entrance(pos.X, pos.Y); ent.move {
					tags = append(tags, "\\q2\\an5"+ent.tag, colorTag(color))
					entranceApplied = true
				}
			}
			if !entranceApplied {
				tags = append(tags, posTag(pos.X, pos.Y), colorTag(color))
				if i == 0 {
					if ent := c.entrance(pos.X, pos.Y); ent.tag != "" && !ent.move {
						tags = append(tags, ent.tag)
					}
				}
			}

			tags = append(tags, overrideTags(rs)...)

			if active {
				if fn, ok := wordAnimTags[c.s.WordAnimation]; ok {
					if t := fn(rs.scaleHighlight); t != "" {
						tags = append(tags, t)
					}
				}
			}

			events = append(events, Event{
				Start: start,
				End:   end,
				Text:  c.texts[j],
				Tags:  tags,
			})
		}
	}
	return events
}

// overrideTags emits directives only for the fields the word actually
// overrides; everything else inherits the document style.
func overrideTags(rs resolvedWordStyle) []string {
	var tags []string
	if rs.fontSize != nil {
		tags = append(tags, fmt.Sprintf("\\fs%d", *rs.fontSize))
	}
	if rs.fontName != "" {
		tags = append(tags, "\\fn"+rs.fontName)
	}
	if rs.bold != nil {
		tags = append(tags, "\\b"+boolFlag(*rs.bold))
	}
	if rs.italic != nil {
		tags = append(tags, "\\i"+boolFlag(*rs.italic))
	}
	if rs.outlineColor != "" {
		tags = append(tags, "\\3c"+ASSColor(rs.outlineColor))
	}
	if rs.outlineWidth != nil {
		tags = append(tags, fmt.Sprintf("\\bord%d", *rs.outlineWidth))
	}
	return tags
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ---- static mode ----

var sentenceAnimCatalog = map[SentenceAnimation]func(c groupContext) []Event{
	SentenceAnimNone:       func(c groupContext) []Event { return c.staticEvent(nil) },
	SentenceAnimFadeIn:     staticFadeIn,
	SentenceAnimPopIn:      staticPopIn,
	SentenceAnimSlideUp:    staticSlide(0, 1),
	SentenceAnimSlideDown:  staticSlide(0, -1),
	SentenceAnimSlideLeft:  staticSlide(-1, 0),
	SentenceAnimSlideRight: staticSlide(1, 0),
	SentenceAnimBounce:     staticBounce,
	SentenceAnimBlurIn:     staticBlurIn,
	SentenceAnimStretch:    staticStretch,
	SentenceAnimZoomDrop:   staticZoomDrop,
	SentenceAnimFlipIn:     staticFlipIn,
	SentenceAnimTypewriter: staticTypewriter,
	SentenceAnimCascade:    staticCascade,
}

func (c groupContext) emitStatic() []Event {
	fn, ok := sentenceAnimCatalog[c.s.SentenceAnimation]
	if !ok {
		fn = sentenceAnimCatalog[SentenceAnimNone]
	}
	return fn(c)
}

// staticEvent emits the whole joined chunk for the group's full window with
// the base position/color tags plus any extra animation directives.
func (c groupContext) staticEvent(extra []string) []Event {
	tags := append([]string{posTag(c.cx, c.cy), colorTag(c.s.NormalColor)}, extra...)
	return []Event{{
		Start: c.group.Start,
		End:   c.group.End,
		Text:  c.sentence(),
		Tags:  tags,
	}}
}

func staticFadeIn(c groupContext) []Event {
	return c.staticEvent([]string{fmt.Sprintf("\\fad(%d,0)", c.s.StaticAnimSpeed)})
}

func staticPopIn(c groupContext) []Event {
	return c.staticEvent([]string{fmt.Sprintf("\\fscx0\\fscy0\\t(0,%d,\\fscx100\\fscy100)", c.s.StaticAnimSpeed)})
}

// staticSlide builds the four slide directions from a unit vector. Vertical
// slides offset by the font size, horizontal ones by a third of the canvas.
func staticSlide(dx, dy int) func(c groupContext) []Event {
	return func(c groupContext) []Event {
		var offX, offY int
		if dx != 0 {
			offX = dx * (c.width / 3) * c.s.AnimIntensity / 100
		}
		if dy != 0 {
			offY = dy * c.s.FontSize * c.s.AnimIntensity / 100
		}
		move := moveTag(c.cx+offX, c.cy+offY, c.cx, c.cy, c.s.StaticAnimSpeed)
		return []Event{{
			Start: c.group.Start,
			End:   c.group.End,
			Text:  c.sentence(),
			Tags:  []string{move, colorTag(c.s.NormalColor)},
		}}
	}
}

// staticBounce needs two sequential events because \move interpolates
// linearly: an overshoot phase dropping past the anchor, then a settle phase
// returning to it.
func staticBounce(c groupContext) []Event {
	speed := c.s.StaticAnimSpeed
	drop := c.s.FontSize * 2 * c.s.AnimIntensity / 100
	overshoot := (c.s.FontSize / 3) * c.s.AnimIntensity / 100
	midMs := speed * 65 / 100
	mid := c.group.Start + float64(midMs)/1000.0

	overshootTags := []string{
		moveTag(c.cx, c.cy-drop, c.cx, c.cy+overshoot, midMs),
		colorTag(c.s.NormalColor),
		fmt.Sprintf("\\fad(%d,0)", speed/4),
	}
	if mid >= c.group.End {
		// Group ends inside the overshoot phase: no room for a settle event.
		return []Event{{Start: c.group.Start, End: c.group.End, Text: c.sentence(), Tags: overshootTags}}
	}

	settleTags := []string{
		moveTag(c.cx, c.cy+overshoot, c.cx, c.cy, speed-midMs),
		colorTag(c.s.NormalColor),
	}
	return []Event{
		{Start: c.group.Start, End: mid, Text: c.sentence(), Tags: overshootTags},
		{Start: mid, End: c.group.End, Text: c.sentence(), Tags: settleTags},
	}
}

func staticBlurIn(c groupContext) []Event {
	return c.staticEvent([]string{fmt.Sprintf("\\blur20\\t(0,%d,\\blur0)", c.s.StaticAnimSpeed)})
}

func staticStretch(c groupContext) []Event {
	return c.staticEvent([]string{fmt.Sprintf("\\fscx0\\fscy100\\t(0,%d,\\fscx100\\fscy100)", c.s.StaticAnimSpeed)})
}

func staticZoomDrop(c groupContext) []Event {
	speed := c.s.StaticAnimSpeed
	offset := (c.s.FontSize / 2) * c.s.AnimIntensity / 100
	zoom := 100 + 30*c.s.AnimIntensity/100
	tags := []string{
		moveTag(c.cx, c.cy-offset, c.cx, c.cy, speed),
		colorTag(c.s.NormalColor),
		fmt.Sprintf("\\fscx%d\\fscy%d\\t(0,%d,\\fscx100\\fscy100)", zoom, zoom, speed),
		fmt.Sprintf("\\fad(%d,0)", speed/2),
	}
	return []Event{{Start: c.group.Start, End: c.group.End, Text: c.sentence(), Tags: tags}}
}

func staticFlipIn(c groupContext) []Event {
	speed := c.s.StaticAnimSpeed
	return c.staticEvent([]string{fmt.Sprintf("\\fscx0\\t(0,%d,\\fscx100)\\fad(%d,0)", speed, speed/3)})
}

// staticTypewriter reveals one positioned word at a time with staggered start
// offsets; every word stays visible until the group ends.
func staticTypewriter(c groupContext) []Event {
	positions := c.layout()
	interval := minf(float64(c.s.StaticAnimSpeed)/float64(len(c.texts))/1000.0, 0.1)

	var events []Event
	for i, text := range c.texts {
		appear := c.group.Start + float64(i)*interval
		if appear >= c.group.End {
			appear = c.group.Start
		}
		tags := []string{
			posTag(positions[i].X, positions[i].Y),
			colorTag(c.s.NormalColor),
			"\\fad(40,0)",
		}
		events = append(events, Event{Start: appear, End: c.group.End, Text: text, Tags: tags})
	}
	return events
}

// staticCascade pops every positioned word in with a per-word delay; unlike
// typewriter, all events share the group's start so the pops are pure
// transform staggering.
func staticCascade(c groupContext) []Event {
	positions := c.layout()
	stagger := float64(c.s.StaticAnimSpeed) / float64(len(c.texts)) / 1000.0
	popDur := max(80, c.s.StaticAnimSpeed/3)
	startScale := max(0, 100-c.s.AnimIntensity)

	var events []Event
	for i, text := range c.texts {
		delay := int(float64(i) * stagger * 1000)
		tags := []string{
			posTag(positions[i].X, positions[i].Y),
			colorTag(c.s.NormalColor),
			fmt.Sprintf("\\fscx%d\\fscy%d\\t(%d,%d,\\fscx100\\fscy100)", startScale, startScale, delay, delay+popDur),
		}
		events = append(events, Event{Start: c.group.Start, End: c.group.End, Text: text, Tags: tags})
	}
	return events
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

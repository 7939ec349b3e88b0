package text

import (
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

// Direction is the base direction of a paragraph.
type Direction uint8

const (
	// DirectionAuto takes the direction of the first strong character and
	// falls back to left-to-right.
	DirectionAuto Direction = iota

	// DirectionLTR is left-to-right.
	DirectionLTR

	// DirectionRTL is right-to-left.
	DirectionRTL
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionAuto:
		return "Auto"
	case DirectionLTR:
		return "LTR"
	case DirectionRTL:
		return "RTL"
	default:
		return "Unknown"
	}
}

// run is a piece of text with one direction, in visual order.
type run struct {
	text []rune
	rtl  bool
}

// segment normalizes s to NFC and splits it into directional runs in
// visual order.
func segment(s string, base Direction) []run {
	s = norm.NFC.String(s)
	if s == "" {
		return nil
	}

	var opts []bidi.Option
	switch base {
	case DirectionLTR:
		opts = append(opts, bidi.DefaultDirection(bidi.LeftToRight))
	case DirectionRTL:
		opts = append(opts, bidi.DefaultDirection(bidi.RightToLeft))
	}

	var p bidi.Paragraph
	if _, err := p.SetString(s, opts...); err != nil {
		return []run{{text: []rune(s), rtl: base == DirectionRTL}}
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return []run{{text: []rune(s), rtl: base == DirectionRTL}}
	}

	runs := make([]run, 0, ordering.NumRuns())
	for i := range ordering.NumRuns() {
		r := ordering.Run(i)
		runs = append(runs, run{
			text: []rune(r.String()),
			rtl:  r.Direction() == bidi.RightToLeft,
		})
	}
	return runs
}

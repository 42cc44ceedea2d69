package dsl

import (
	"html"
	"regexp"
	"sort"
	"strings"

	nethtml "golang.org/x/net/html"
)

// StyledText is inline-formatted text kept as HTML-like markup: the source
// characters are HTML-escaped and emphasis is marked with <strong>, <em> and
// <code>. The markup can be handed to an HTML preview as-is; layout consumers
// use Plain, Spans or Runs instead.
type StyledText string

// Style is one inline emphasis kind.
type Style int

const (
	Bold Style = iota
	Italic
	Code
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Code:
		return "code"
	default:
		return "unknown"
	}
}

// Span marks a styled byte range [Start, End) of the plain text.
type Span struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Style Style `json:"style"`
}

// Run is a maximal piece of plain text sharing the same emphasis flags.
type Run struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Code   bool   `json:"code,omitempty"`
}

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	codePattern   = regexp.MustCompile("`(.*?)`")
)

// Format applies the inline emphasis passes to a single line.
//
// The passes run in a fixed order (bold, italic, inline code), each on the
// output of the previous one, so `**a*b*c**` becomes bold "a*b*c" with an
// italic "b" nested inside. Unmatched delimiters stay literal and there is no
// escape syntax.
func Format(line string) StyledText {
	s := html.EscapeString(line)
	s = boldPattern.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicPattern.ReplaceAllString(s, "<em>$1</em>")
	s = codePattern.ReplaceAllString(s, "<code>$1</code>")
	return StyledText(s)
}

// Markup returns the marked-up form.
func (t StyledText) Markup() string { return string(t) }


// Plain strips the emphasis markers and returns the visible characters.
func (t StyledText) Plain() string {
	plain, _ := t.decode()
	return plain
}

// Spans returns the emphasis spans over Plain(), ordered by start offset.
func (t StyledText) Spans() []Span {
	_, spans := t.decode()
	return spans
}

// Runs splits Plain() at every span boundary.
func (t StyledText) Runs() []Run {
	plain, spans := t.decode()
	if plain == "" {
		return nil
	}

	cuts := map[int]struct{}{0: {}, len(plain): {}}
	for _, sp := range spans {
		cuts[sp.Start] = struct{}{}
		cuts[sp.End] = struct{}{}
	}
	bounds := make([]int, 0, len(cuts))
	for c := range cuts {
		bounds = append(bounds, c)
	}
	sort.Ints(bounds)

	runs := make([]Run, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		run := Run{Text: plain[start:end]}
		for _, sp := range spans {
			if sp.Start > start || sp.End < end {
				continue
			}
			switch sp.Style {
			case Bold:
				run.Bold = true
			case Italic:
				run.Italic = true
			case Code:
				run.Code = true
			}
		}
		if n := len(runs); n > 0 && runs[n-1].Bold == run.Bold && runs[n-1].Italic == run.Italic && runs[n-1].Code == run.Code {
			runs[n-1].Text += run.Text
			continue
		}
		runs = append(runs, run)
	}
	return runs
}

// decode walks the markup once. Open positions are tracked per style so
// that crossing markers (possible because the passes are independent) still
// close the right span.
func (t StyledText) decode() (string, []Span) {
	if t == "" {
		return "", nil
	}
	var (
		plain strings.Builder
		spans []Span
		open  = map[Style][]int{}
	)
	z := nethtml.NewTokenizer(strings.NewReader(string(t)))
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			sort.SliceStable(spans, func(i, j int) bool {
				if spans[i].Start != spans[j].Start {
					return spans[i].Start < spans[j].Start
				}
				return spans[i].End > spans[j].End
			})
			return plain.String(), spans
		case nethtml.TextToken:
			plain.Write(z.Text())
		case nethtml.StartTagToken:
			name, _ := z.TagName()
			if style, ok := tagStyle(string(name)); ok {
				open[style] = append(open[style], plain.Len())
			}
		case nethtml.EndTagToken:
			name, _ := z.TagName()
			style, ok := tagStyle(string(name))
			if !ok || len(open[style]) == 0 {
				continue
			}
			stack := open[style]
			start := stack[len(stack)-1]
			open[style] = stack[:len(stack)-1]
			if end := plain.Len(); end > start {
				spans = append(spans, Span{Start: start, End: end, Style: style})
			}
		}
	}
}

func tagStyle(name string) (Style, bool) {
	switch name {
	case "strong":
		return Bold, true
	case "em":
		return Italic, true
	case "code":
		return Code, true
	default:
		return 0, false
	}
}

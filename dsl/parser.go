package dsl

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'slidescript.dsl'.
func tracer() tracing.Trace {
	return tracing.Select("slidescript.dsl")
}

// DiagramLanguage is the fence tag that turns a fenced region into a diagram.
const DiagramLanguage = "mermaid"

// Compile turns raw SlideScript markup into a Document. It is a pure
// function of its input: malformed markup is recovered, never reported.
func Compile(raw string) Document {
	blocks := Split(raw)
	doc := Document{Slides: make([]Slide, 0, len(blocks))}
	for _, block := range blocks {
		doc.Slides = append(doc.Slides, ParseSlide(block))
	}
	return doc
}

// Parse reads markup from r and compiles it.
func Parse(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read markup: %w", err)
	}
	return Compile(string(data)), nil
}

// fence accumulates the lines of an open fenced region.
type fence struct {
	lang string
	body strings.Builder
}

func (f *fence) item() ContentItem {
	raw := strings.TrimRightFunc(f.body.String(), unicode.IsSpace)
	if strings.EqualFold(f.lang, DiagramLanguage) {
		return ContentItem{Kind: KindDiagram, Raw: raw}
	}
	return ContentItem{Kind: KindCode, Raw: raw, Language: f.lang}
}

// ParseSlide classifies the lines of one block into a Slide.
//
// Blank lines are skipped everywhere, including inside fences. Title and
// subtitle are last-one-wins. An ordered item loses its numeric prefix. A
// fence still open at the end of the block is closed with what it holds.
func ParseSlide(block string) Slide {
	var (
		slide Slide
		open  *fence
	)

	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if open != nil {
			if strings.HasPrefix(trimmed, fenceMarker) {
				slide.Content = append(slide.Content, open.item())
				open = nil
				continue
			}
			open.body.WriteString(line)
			open.body.WriteByte('\n')
			continue
		}

		kind, body := classifyLine(trimmed)
		switch kind {
		case lineFence:
			open = &fence{lang: strings.TrimSpace(body)}
		case lineTitle:
			slide.Title = Format(body)
		case lineSubtitle:
			slide.Subtitle = Format(body)
		case lineBullet:
			slide.Bullets = append(slide.Bullets, Format(body))
		case lineQuote:
			slide.Content = append(slide.Content, ContentItem{Kind: KindQuote, Text: Format(body)})
		case lineOrdered:
			slide.Content = append(slide.Content, ContentItem{Kind: KindOrdered, Text: Format(body)})
		default:
			slide.Content = append(slide.Content, ContentItem{Kind: KindText, Text: Format(body)})
		}
	}

	if open != nil {
		tracer().Debugf("unterminated fence %q closed at end of slide", open.lang)
		slide.Content = append(slide.Content, open.item())
	}
	return slide
}

package dsl_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/slidescript/dsl"
)

const sampleDeck = `{
# Welcome to **SlideScript**
## The fastest way to create presentations

- Use "{" to separate slides
- Use *italic* text
}

{
# Getting Started

1. **Write** your content
2. Preview your slides

> Pro tip: keep it short

` + "```go" + `
func main() {
}
` + "```" + `

Perfect for technical talks!
}

{
# Flow
` + "```mermaid" + `
graph TD
  A --> B
` + "```" + `
}`

func TestCompileEndToEnd(t *testing.T) {
	doc := dsl.Compile("{\n# Hi\n- one\n- two\n}")
	if doc.Len() != 1 {
		t.Fatalf("expected 1 slide, got %d", doc.Len())
	}
	slide := doc.Slides[0]
	if slide.Title.Plain() != "Hi" {
		t.Fatalf("expected title Hi, got %q", slide.Title.Plain())
	}
	if len(slide.Bullets) != 2 || slide.Bullets[0] != "one" || slide.Bullets[1] != "two" {
		t.Fatalf("unexpected bullets: %q", slide.Bullets)
	}
	if len(slide.Content) != 0 {
		t.Fatalf("expected empty content, got %+v", slide.Content)
	}
}

func TestCompileSampleDeck(t *testing.T) {
	doc := dsl.Compile(sampleDeck)
	if doc.Len() != 3 {
		t.Fatalf("expected 3 slides, got %d", doc.Len())
	}

	first := doc.Slides[0]
	if first.Title.Markup() != "Welcome to <strong>SlideScript</strong>" {
		t.Fatalf("unexpected title markup: %q", first.Title.Markup())
	}
	if first.Subtitle.Plain() != "The fastest way to create presentations" {
		t.Fatalf("unexpected subtitle: %q", first.Subtitle.Plain())
	}
	if len(first.Bullets) != 2 || first.Bullets[0].Plain() != `Use "{" to separate slides` {
		t.Fatalf("unexpected bullets: %q", first.Bullets)
	}

	second := doc.Slides[1]
	kinds := make([]dsl.ContentKind, 0, len(second.Content))
	for _, item := range second.Content {
		kinds = append(kinds, item.Kind)
	}
	wantKinds := []dsl.ContentKind{dsl.KindOrdered, dsl.KindOrdered, dsl.KindQuote, dsl.KindCode, dsl.KindText}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("content order mismatch: got=%v want=%v", kinds, wantKinds)
	}
	if got := second.Content[0].Text.Plain(); got != "Write your content" {
		t.Fatalf("ordinal prefix should be dropped, got %q", got)
	}
	code := second.Content[3]
	if code.Language != "go" || code.Raw != "func main() {\n}" {
		t.Fatalf("unexpected code item: %+v", code)
	}

	third := doc.Slides[2]
	if len(third.Content) != 1 || third.Content[0].Kind != dsl.KindDiagram {
		t.Fatalf("expected one diagram item, got %+v", third.Content)
	}
	if def := third.Content[0].Definition(); def != "graph TD\n  A --> B" {
		t.Fatalf("unexpected diagram definition: %q", def)
	}
}

func TestTitleLastOneWins(t *testing.T) {
	slide := dsl.ParseSlide("# First\n## Sub one\n# Second\n## Sub two")
	if slide.Title.Plain() != "Second" {
		t.Fatalf("expected last title to win, got %q", slide.Title.Plain())
	}
	if slide.Subtitle.Plain() != "Sub two" {
		t.Fatalf("expected last subtitle to win, got %q", slide.Subtitle.Plain())
	}
}

func TestUnterminatedFenceIsForceClosed(t *testing.T) {
	slide := dsl.ParseSlide("# Code\n```python\nprint('hi')   \n\nx = 1\n")
	if len(slide.Content) != 1 {
		t.Fatalf("expected 1 content item, got %+v", slide.Content)
	}
	item := slide.Content[0]
	if item.Kind != dsl.KindCode || item.Language != "python" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Raw != "print('hi')   \nx = 1" {
		t.Fatalf("unexpected code body: %q", item.Raw)
	}
}

func TestFencedLinesAreNotClassified(t *testing.T) {
	slide := dsl.ParseSlide("```\n# not a title\n- not a bullet\n**raw**\n```")
	if slide.Title != "" || len(slide.Bullets) != 0 {
		t.Fatalf("fenced lines must not be classified: %+v", slide)
	}
	if slide.Content[0].Raw != "# not a title\n- not a bullet\n**raw**" {
		t.Fatalf("fenced text must stay verbatim, got %q", slide.Content[0].Raw)
	}
}

func TestDiagramTagIsCaseInsensitive(t *testing.T) {
	slide := dsl.ParseSlide("``` Mermaid\nflowchart LR\n```")
	if slide.Content[0].Kind != dsl.KindDiagram {
		t.Fatalf("expected diagram, got %v", slide.Content[0].Kind)
	}
}

func TestMarkerLookalikesAreText(t *testing.T) {
	slide := dsl.ParseSlide("#hashtag\n-dash\n>arrow\n3.14 is pi\n12. twelve")
	if slide.Title != "" || len(slide.Bullets) != 0 {
		t.Fatalf("markers need a trailing space: %+v", slide)
	}
	var texts []string
	for _, item := range slide.Content {
		texts = append(texts, item.Kind.String()+":"+item.Text.Plain())
	}
	want := []string{"text:#hashtag", "text:-dash", "text:>arrow", "text:3.14 is pi", "ordered:twelve"}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("unexpected classification: got=%q want=%q", texts, want)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	a := dsl.Compile(sampleDeck)
	b := dsl.Compile(sampleDeck)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("compiling the same text twice must yield identical documents")
	}
}

func TestParseReader(t *testing.T) {
	doc, err := dsl.Parse(strings.NewReader(sampleDeck))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Len() != 3 {
		t.Fatalf("expected 3 slides, got %d", doc.Len())
	}
}

func TestClampIndex(t *testing.T) {
	cases := []struct {
		index, count, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{-1, 4, 0},
		{2, 4, 2},
		{7, 4, 3},
	}
	for _, c := range cases {
		if got := dsl.ClampIndex(c.index, c.count); got != c.want {
			t.Fatalf("ClampIndex(%d, %d) = %d, want %d", c.index, c.count, got, c.want)
		}
	}
}

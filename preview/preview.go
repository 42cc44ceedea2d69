// Package preview renders a document as a standalone HTML page.
//
// Diagrams are not rasterized here: their definitions are written into
// <pre class="mermaid"> blocks and rendered live by the browser each time
// the page is shown.
package preview

import (
	"bytes"
	"html/template"
	"io"

	"github.com/ByLCY/slidescript/dsl"
)

// MermaidScript is the module loaded when a deck contains diagrams.
const MermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs"

// Options controls the page.
type Options struct {
	Title   string
	Current int // slide marked as current, clamped to the deck
}

type page struct {
	Title       string
	Slides      []slideView
	HasDiagrams bool
	Script      string
}

type slideView struct {
	Number   int
	Current  bool
	Title    template.HTML
	Subtitle template.HTML
	Bullets  []template.HTML
	Content  []contentView
}

type contentView struct {
	Kind     string
	HTML     template.HTML
	Raw      string
	Language string
}

var pageTemplate = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background: #f3f4f6; font-family: sans-serif; }
.slide { background: #fff; width: 960px; height: 540px; margin: 24px auto; padding: 40px; box-sizing: border-box; overflow: hidden; }
.slide.current { outline: 3px solid #6366f1; }
.slide h1, .slide h2 { text-align: center; }
.slide blockquote { font-style: italic; color: #666; }
.slide pre code { display: block; background: #1a1a1a; color: #00ff00; padding: 12px; }
</style>
</head>
<body>
{{- range .Slides}}
<section class="slide{{if .Current}} current{{end}}" data-slide="{{.Number}}">
{{- if .Title}}
<h1>{{.Title}}</h1>
{{- end}}
{{- if .Subtitle}}
<h2>{{.Subtitle}}</h2>
{{- end}}
{{- if .Bullets}}
<ul>
{{- range .Bullets}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- range .Content}}
{{- if eq .Kind "diagram"}}
<pre class="mermaid">{{.Raw}}</pre>
{{- else if eq .Kind "code"}}
<pre><code{{if .Language}} class="language-{{.Language}}"{{end}}>{{.Raw}}</code></pre>
{{- else if eq .Kind "quote"}}
<blockquote>{{.HTML}}</blockquote>
{{- else if eq .Kind "ordered"}}
<p class="ordered">{{.HTML}}</p>
{{- else}}
<p>{{.HTML}}</p>
{{- end}}
{{- end}}
</section>
{{- end}}
{{- if .HasDiagrams}}
<script type="module">
import mermaid from "{{.Script}}";
mermaid.initialize({ startOnLoad: true });
</script>
{{- end}}
</body>
</html>
`))

// Render writes doc as HTML to w.
func Render(w io.Writer, doc dsl.Document, opts Options) error {
	p := page{Title: opts.Title, Script: MermaidScript}
	if p.Title == "" {
		p.Title = "SlideScript"
		for _, s := range doc.Slides {
			if t := s.Title.Plain(); t != "" {
				p.Title = t
				break
			}
		}
	}
	current := dsl.ClampIndex(opts.Current, doc.Len())
	for i, s := range doc.Slides {
		view := slideView{
			Number:   i + 1,
			Current:  i == current,
			Title:    trusted(s.Title),
			Subtitle: trusted(s.Subtitle),
		}
		for _, b := range s.Bullets {
			view.Bullets = append(view.Bullets, trusted(b))
		}
		for _, item := range s.Content {
			if item.Kind == dsl.KindDiagram {
				p.HasDiagrams = true
			}
			view.Content = append(view.Content, contentView{
				Kind:     item.Kind.String(),
				HTML:     trusted(item.Text),
				Raw:      item.Raw,
				Language: item.Language,
			})
		}
		p.Slides = append(p.Slides, view)
	}
	return pageTemplate.Execute(w, p)
}

// RenderString is Render into a string.
func RenderString(doc dsl.Document, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, doc, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// trusted marks styled text as safe HTML: its characters were escaped when
// it was formatted and only <strong>, <em> and <code> tags were added.
func trusted(s dsl.StyledText) template.HTML {
	return template.HTML(s.Markup())
}

package dsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Line markers are lexed in Root; once a marker matched, the lexer switches
// to Body so the remainder of the line is captured verbatim as Rest.
var (
	lineLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Fence", Pattern: "```", Action: lexer.Push("Body")},
			{Name: "Subtitle", Pattern: `## `, Action: lexer.Push("Body")},
			{Name: "Title", Pattern: `# `, Action: lexer.Push("Body")},
			{Name: "Bullet", Pattern: `- `, Action: lexer.Push("Body")},
			{Name: "Quote", Pattern: `> `, Action: lexer.Push("Body")},
			{Name: "Ordinal", Pattern: `\d+\.\s`, Action: lexer.Push("Body")},
			lexer.Include("Body"),
		},
		"Body": {
			{Name: "Rest", Pattern: `[^\n]+`, Action: nil},
		},
	})

	lineParser = participle.MustBuild[lineAST](
		participle.Lexer(lineLexer),
	)
)

// lineAST is one trimmed, non-blank source line.
type lineAST struct {
	Marker *markerAST `parser:"@@?"`
	Body   string     `parser:"@Rest?"`
}

// markerAST records which structural prefix opened the line.
type markerAST struct {
	Fence    bool `parser:"  @Fence"`
	Subtitle bool `parser:"| @Subtitle"`
	Title    bool `parser:"| @Title"`
	Bullet   bool `parser:"| @Bullet"`
	Quote    bool `parser:"| @Quote"`
	Ordinal  bool `parser:"| @Ordinal"`
}

type lineKind int

const (
	lineText lineKind = iota
	lineFence
	lineTitle
	lineSubtitle
	lineBullet
	lineQuote
	lineOrdered
)

// classifyLine returns the structural role of a trimmed line and the text
// following its marker. Anything the grammar rejects is plain text.
func classifyLine(trimmed string) (lineKind, string) {
	ast, err := lineParser.ParseString("", trimmed)
	if err != nil || ast == nil {
		return lineText, trimmed
	}
	m := ast.Marker
	switch {
	case m == nil:
		return lineText, ast.Body
	case m.Fence:
		return lineFence, ast.Body
	case m.Subtitle:
		return lineSubtitle, ast.Body
	case m.Title:
		return lineTitle, ast.Body
	case m.Bullet:
		return lineBullet, ast.Body
	case m.Quote:
		return lineQuote, ast.Body
	case m.Ordinal:
		return lineOrdered, ast.Body
	default:
		return lineText, trimmed
	}
}

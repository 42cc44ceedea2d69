package dsl

// Document is the compiled form of a SlideScript source. Slide order is
// presentation order; an empty Document is valid.
type Document struct {
	Slides []Slide `json:"slides"`
}

// Len returns the number of slides.
func (d Document) Len() int { return len(d.Slides) }

// Slide is one parsed slide block.
type Slide struct {
	Title    StyledText    `json:"title"`
	Subtitle StyledText    `json:"subtitle"`
	Bullets  []StyledText  `json:"bullets"`
	Content  []ContentItem `json:"content"`
}

// ContentKind tags a ContentItem.
type ContentKind int

const (
	KindText ContentKind = iota
	KindQuote
	KindOrdered
	KindCode
	KindDiagram
)

func (k ContentKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindQuote:
		return "quote"
	case KindOrdered:
		return "ordered"
	case KindCode:
		return "code"
	case KindDiagram:
		return "diagram"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind appear by name in JSON dumps.
func (k ContentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ContentItem is one ordered unit of slide body content.
//
// Text, Quote and Ordered items carry inline-formatted Text. Code items carry
// the verbatim fenced Raw text plus its Language tag; Diagram items carry the
// opaque definition in Raw and are never inline-formatted.
type ContentItem struct {
	Kind     ContentKind `json:"kind"`
	Text     StyledText  `json:"text,omitempty"`
	Raw      string      `json:"raw,omitempty"`
	Language string      `json:"language,omitempty"`
}

// Definition returns the diagram source of a Diagram item.
func (c ContentItem) Definition() string {
	if c.Kind != KindDiagram {
		return ""
	}
	return c.Raw
}

// ClampIndex keeps a slide cursor inside [0, count-1]. A deck without slides
// always yields 0.
func ClampIndex(index, count int) int {
	if count <= 0 || index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

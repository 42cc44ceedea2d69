// Package manifest writes a deck as JSON box-placement instructions for an
// external presentation writer. Images travel base64-encoded, SVG included.
package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/ByLCY/slidescript/layout"
	"github.com/ByLCY/slidescript/renderer"
)

// Version is bumped whenever the manifest layout changes incompatibly.
const Version = 1

// Manifest is the document written by Renderer.
type Manifest struct {
	Version int    `json:"version"`
	Unit    string `json:"unit"`
	*layout.Deck
}

// Renderer encodes decks as manifests.
type Renderer struct {
	Indent bool
}

var (
	_ renderer.Renderer       = (*Renderer)(nil)
	_ renderer.VectorEmbedder = (*Renderer)(nil)
)

// AcceptsVector reports true: SVG diagrams are embedded as they are.
func (r *Renderer) AcceptsVector() bool { return true }

// Render encodes deck. An empty deck is valid and yields no slides.
func (r *Renderer) Render(deck *layout.Deck) ([]byte, error) {
	if deck == nil {
		return nil, fmt.Errorf("manifest: deck is nil")
	}
	m := Manifest{Version: Version, Unit: "mm", Deck: deck}
	if r.Indent {
		return json.MarshalIndent(m, "", "  ")
	}
	return json.Marshal(m)
}


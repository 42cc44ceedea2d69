// Package export turns a compiled document into an output file.
//
// Layout heights are fixed per box kind, so the deck is laid out once up
// front; diagrams are then resolved concurrently and their results replayed
// into the deck in document order before the writer sees it.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/slidescript/diagram"
	"github.com/ByLCY/slidescript/dsl"
	"github.com/ByLCY/slidescript/layout"
	"github.com/ByLCY/slidescript/renderer"
)

// tracer traces with key 'slidescript.export'.
func tracer() tracing.Trace {
	return tracing.Select("slidescript.export")
}

// DefaultConcurrency bounds the number of diagrams resolved at once.
const DefaultConcurrency = 4

// Exporter runs one export per call to Export. It holds no per-run state and
// may be reused.
type Exporter struct {
	Chain       *diagram.Chain
	Renderer    renderer.Renderer
	Options     layout.Options
	Concurrency int
}

// New creates an exporter with the default canvas.
func New(chain *diagram.Chain, r renderer.Renderer) *Exporter {
	return &Exporter{Chain: chain, Renderer: r, Options: layout.DefaultOptions(), Concurrency: DefaultConcurrency}
}

// Export lays out doc, resolves its diagrams and hands the deck to the
// renderer. Diagram failures end up as placeholder boxes; only a failing
// renderer makes the export fail.
func (e *Exporter) Export(ctx context.Context, doc dsl.Document) ([]byte, error) {
	if e.Renderer == nil {
		return nil, errors.New("export: no renderer configured")
	}
	deck := e.Layout(ctx, doc)
	data, err := e.Renderer.Render(deck)
	if err != nil {
		return nil, fmt.Errorf("export: write %d slides: %w", len(deck.Slides), err)
	}
	tracer().Infof("exported %d slides", len(deck.Slides))
	return data, nil
}

// Layout builds the deck for doc with every diagram box resolved to an image
// or a placeholder.
func (e *Exporter) Layout(ctx context.Context, doc dsl.Document) *layout.Deck {
	deck := layout.Build(doc, e.Options)
	e.resolveDiagrams(ctx, deck)
	return deck
}

type boxRef struct {
	slide, box int
}

func (e *Exporter) resolveDiagrams(ctx context.Context, deck *layout.Deck) {
	var refs []boxRef
	for si, slide := range deck.Slides {
		for bi, box := range slide.Boxes {
			if box.Kind == layout.BoxDiagram {
				refs = append(refs, boxRef{si, bi})
			}
		}
	}
	if len(refs) == 0 {
		return
	}

	accepts := e.Renderer != nil && renderer.AcceptsVector(e.Renderer)
	results := make([]diagram.Result, len(refs))
	workers := e.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	// plain Group: a failing diagram must not cancel its siblings
	var g errgroup.Group
	g.SetLimit(workers)
	for i, ref := range refs {
		box := deck.Slides[ref.slide].Boxes[ref.box]
		g.Go(func() error {
			results[i] = e.resolve(ctx, box, accepts)
			return nil
		})
	}
	_ = g.Wait()

	// replay in document order
	for i, ref := range refs {
		apply(&deck.Slides[ref.slide].Boxes[ref.box], results[i])
	}
}

func (e *Exporter) resolve(ctx context.Context, box layout.Box, accepts bool) diagram.Result {
	if e.Chain == nil {
		return diagram.Result{Kind: diagram.ResultPlaceholder, Err: errors.New("export: no diagram chain configured")}
	}
	return e.Chain.Resolve(ctx, box.Definition, box.Width, box.Height, accepts)
}

func apply(box *layout.Box, res diagram.Result) {
	if res.Kind == diagram.ResultPlaceholder {
		tracer().Infof("diagram at y=%.1fmm replaced by placeholder: %v", box.Y, res.Err)
		*box = layout.PlaceholderBox(*box)
		return
	}
	box.Image = &layout.ImageBox{
		Format: res.Format,
		Data:   res.Data,
		X:      box.X + res.OffsetX,
		Y:      box.Y,
		Width:  res.Width,
		Height: res.Height,
	}
}

// Package diagram turns diagram definitions into embeddable images.
//
// The pixels come from an external rendering collaborator (see Renderer);
// this package only drives it through a fixed fallback chain: render to a
// vector image, embed the vector when the target accepts it, otherwise
// rasterize it, otherwise hand back a placeholder. A failing diagram never
// becomes an error for the caller.
package diagram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/npillmayer/schuko/tracing"
	"github.com/srwiley/oksvg"
)

// tracer traces with key 'slidescript.diagram'.
func tracer() tracing.Trace {
	return tracing.Select("slidescript.diagram")
}

// Vector is a rendered SVG document with its intrinsic size in pixels.
// Definition is the source it was rendered from, if the renderer keeps it.
type Vector struct {
	SVG        []byte
	Width      float64
	Height     float64
	Definition string
}

// Renderer is the diagram-rendering collaborator. Both calls may be slow and
// may fail; callers bound them with their own timeouts.
type Renderer interface {
	Render(ctx context.Context, definition string) (Vector, error)
	Rasterize(ctx context.Context, v Vector, width, height int) (image.Image, error)
}

var (
	// ErrVectorRejected is reported by the embed step when the output format
	// cannot carry vector images.
	ErrVectorRejected = errors.New("diagram: target does not accept vector images")
	// ErrEmptyVector means the collaborator returned an SVG without a usable size.
	ErrEmptyVector = errors.New("diagram: vector image has no size")
)

// ParseVector reads the intrinsic size of an SVG document from its view box.
func ParseVector(svg []byte) (Vector, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return Vector{}, fmt.Errorf("diagram: parse svg: %w", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return Vector{}, ErrEmptyVector
	}
	return Vector{SVG: svg, Width: icon.ViewBox.W, Height: icon.ViewBox.H}, nil
}

// Fit scales (w, h) down to fit inside (maxW, maxH) keeping the aspect ratio.
// Images that already fit keep their size.
func Fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := 1.0
	if w > maxW {
		scale = maxW / w
	}
	if h*scale > maxH {
		scale = maxH / h
	}
	return w * scale, h * scale
}

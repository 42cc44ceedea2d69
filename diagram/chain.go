package diagram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"math"
	"time"

	"github.com/ByLCY/slidescript/layout"
)

// ResultKind tells which step of the chain produced a Result.
type ResultKind int

const (
	ResultPlaceholder ResultKind = iota
	ResultVector
	ResultRaster
)

func (k ResultKind) String() string {
	switch k {
	case ResultVector:
		return "vector"
	case ResultRaster:
		return "raster"
	default:
		return "placeholder"
	}
}

// Result is the outcome of resolving one diagram. Sizes are in millimeters;
// OffsetX centers the image horizontally inside the slot it was fitted to.
type Result struct {
	Kind    ResultKind
	Format  string // "svg" or "png"
	Data    []byte
	Width   float64
	Height  float64
	OffsetX float64
	Err     error // last failure, set for placeholders
}

// Timeouts bounds each step of the chain independently.
type Timeouts struct {
	Render    time.Duration
	Embed     time.Duration
	Rasterize time.Duration
}

// DefaultTimeouts returns 10s for rendering, 2s for embedding and 5s for
// rasterizing.
func DefaultTimeouts() Timeouts {
	return Timeouts{Render: 10 * time.Second, Embed: 2 * time.Second, Rasterize: 5 * time.Second}
}

// DefaultPixelsPerMM is the raster resolution, 192 dpi.
const DefaultPixelsPerMM = 192 / 25.4

// Chain drives a Renderer through render → embed → rasterize → placeholder.
// It is safe for concurrent use when the Renderer is.
type Chain struct {
	Renderer    Renderer
	Timeouts    Timeouts
	PixelsPerMM float64
}

// NewChain creates a chain with default timeouts and resolution.
func NewChain(r Renderer) *Chain {
	return &Chain{Renderer: r, Timeouts: DefaultTimeouts(), PixelsPerMM: DefaultPixelsPerMM}
}

// Resolve turns a diagram definition into an image fitted into a
// maxW×maxH millimeter slot. It never fails: when every step fails the
// result is a placeholder carrying the last error.
func (c *Chain) Resolve(ctx context.Context, definition string, maxW, maxH float64, acceptsVector bool) Result {
	if c.Renderer == nil {
		return placeholder(errors.New("diagram: no renderer configured"))
	}
	t := c.Timeouts
	if t == (Timeouts{}) {
		t = DefaultTimeouts()
	}

	vec, err := runStep(ctx, t.Render, func(ctx context.Context) (Vector, error) {
		return c.Renderer.Render(ctx, definition)
	})
	if err != nil {
		tracer().Infof("diagram render failed: %v", err)
		return placeholder(err)
	}
	w, h := Fit(layout.Px(vec.Width).ToMM(), layout.Px(vec.Height).ToMM(), maxW, maxH)
	offset := (maxW - w) / 2

	res, err := runStep(ctx, t.Embed, func(ctx context.Context) (Result, error) {
		if !acceptsVector {
			return Result{}, ErrVectorRejected
		}
		if len(vec.SVG) == 0 {
			return Result{}, ErrEmptyVector
		}
		return Result{Kind: ResultVector, Format: "svg", Data: vec.SVG, Width: w, Height: h, OffsetX: offset}, nil
	})
	if err == nil {
		return res
	}
	tracer().Debugf("diagram not embedded as vector: %v", err)

	res, err = runStep(ctx, t.Rasterize, func(ctx context.Context) (Result, error) {
		return c.rasterize(ctx, vec, w, h)
	})
	if err != nil {
		tracer().Infof("diagram rasterize failed: %v", err)
		return placeholder(err)
	}
	res.OffsetX = offset
	return res
}

func (c *Chain) rasterize(ctx context.Context, vec Vector, w, h float64) (Result, error) {
	ppmm := c.PixelsPerMM
	if ppmm <= 0 {
		ppmm = DefaultPixelsPerMM
	}
	pw := int(math.Round(w * ppmm))
	ph := int(math.Round(h * ppmm))
	img, err := c.Renderer.Rasterize(ctx, vec, pw, ph)
	if err != nil {
		return Result{}, err
	}
	if img == nil {
		return Result{}, errors.New("diagram: rasterizer returned no image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("diagram: encode png: %w", err)
	}
	return Result{Kind: ResultRaster, Format: "png", Data: buf.Bytes(), Width: w, Height: h}, nil
}

func placeholder(err error) Result {
	return Result{Kind: ResultPlaceholder, Err: err}
}

// runStep runs fn under its own deadline. A collaborator that ignores its
// context is abandoned once the deadline passes.
func runStep[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()
	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

package diagram

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boxSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="384" height="192" viewBox="0 0 384 192">` +
	`<rect x="96" y="48" width="192" height="96" fill="#ff0000"/></svg>`

// stubRenderer answers with fixed values, or blocks until its context is done.
type stubRenderer struct {
	vec       Vector
	renderErr error
	rasterErr error
	hang      bool
	sizes     [][2]int
}

func (s *stubRenderer) Render(ctx context.Context, def string) (Vector, error) {
	if s.hang {
		<-ctx.Done()
		return Vector{}, ctx.Err()
	}
	return s.vec, s.renderErr
}

func (s *stubRenderer) Rasterize(ctx context.Context, v Vector, w, h int) (image.Image, error) {
	s.sizes = append(s.sizes, [2]int{w, h})
	if s.rasterErr != nil {
		return nil, s.rasterErr
	}
	return RasterizeSVG(ctx, v, w, h)
}

func okVector(t *testing.T) Vector {
	v, err := ParseVector([]byte(boxSVG))
	require.NoError(t, err)
	return v
}

func TestResolveEmbedsVector(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "slidescript.diagram")
	defer teardown()
	//
	chain := NewChain(&stubRenderer{vec: okVector(t)})
	res := chain.Resolve(context.Background(), "graph TD", 200, 50, true)
	require.Equal(t, ResultVector, res.Kind)
	assert.Equal(t, "svg", res.Format)
	// 384px = 101.6mm wide, 50.8mm high; height limits the scale
	assert.InDelta(t, 50, res.Height, 1e-6)
	assert.InDelta(t, 100, res.Width, 1e-6)
	assert.InDelta(t, 50, res.OffsetX, 1e-6)
}

func TestResolveFallsBackToRaster(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "slidescript.diagram")
	defer teardown()
	//
	stub := &stubRenderer{vec: okVector(t)}
	chain := NewChain(stub)
	chain.PixelsPerMM = 1
	res := chain.Resolve(context.Background(), "graph TD", 228.6, 76.2, false)
	require.Equal(t, ResultRaster, res.Kind, "err: %v", res.Err)
	assert.Equal(t, "png", res.Format)
	// intrinsic size fits the slot and is kept
	assert.InDelta(t, 101.6, res.Width, 1e-6)
	assert.InDelta(t, 50.8, res.Height, 1e-6)
	assert.InDelta(t, (228.6-101.6)/2, res.OffsetX, 1e-6)

	img, err := png.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{102, 51}}, stub.sizes)
	assert.Equal(t, image.Rect(0, 0, 102, 51), img.Bounds())
}

func TestResolvePlaceholderOnRenderError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "slidescript.diagram")
	defer teardown()
	//
	boom := errors.New("boom")
	stub := &stubRenderer{renderErr: boom}
	res := NewChain(stub).Resolve(context.Background(), "graph TD", 100, 50, false)
	assert.Equal(t, ResultPlaceholder, res.Kind)
	assert.ErrorIs(t, res.Err, boom)
	assert.Empty(t, stub.sizes, "rasterizer must not run after a failed render")
}

func TestResolvePlaceholderOnRasterError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "slidescript.diagram")
	defer teardown()
	//
	boom := errors.New("no pixels")
	res := NewChain(&stubRenderer{vec: okVector(t), rasterErr: boom}).
		Resolve(context.Background(), "graph TD", 100, 50, false)
	assert.Equal(t, ResultPlaceholder, res.Kind)
	assert.ErrorIs(t, res.Err, boom)
}

func TestResolveRenderTimeout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "slidescript.diagram")
	defer teardown()
	//
	chain := &Chain{
		Renderer: &stubRenderer{hang: true},
		Timeouts: Timeouts{Render: 20 * time.Millisecond, Embed: time.Second, Rasterize: time.Second},
	}
	start := time.Now()
	res := chain.Resolve(context.Background(), "graph TD", 100, 50, true)
	assert.Equal(t, ResultPlaceholder, res.Kind)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResolveWithoutRenderer(t *testing.T) {
	res := (&Chain{}).Resolve(context.Background(), "graph TD", 100, 50, true)
	assert.Equal(t, ResultPlaceholder, res.Kind)
	assert.Error(t, res.Err)
}

func TestFit(t *testing.T) {
	w, h := Fit(50, 20, 100, 100)
	assert.Equal(t, [2]float64{50, 20}, [2]float64{w, h}, "small images are not enlarged")
	w, h = Fit(200, 100, 100, 100)
	assert.InDelta(t, 100, w, 1e-9)
	assert.InDelta(t, 50, h, 1e-9)
	w, h = Fit(100, 400, 100, 100)
	assert.InDelta(t, 25, w, 1e-9)
	assert.InDelta(t, 100, h, 1e-9)
}

func TestResultKindString(t *testing.T) {
	assert.Equal(t, "vector", ResultVector.String())
	assert.Equal(t, "raster", ResultRaster.String())
	assert.Equal(t, "placeholder", ResultPlaceholder.String())
}

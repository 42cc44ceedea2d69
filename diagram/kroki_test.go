package diagram

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func TestKrokiRender(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "slidescript.diagram")
	defer teardown()
	//
	var gotPath, gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = io.WriteString(w, boxSVG)
	}))
	defer srv.Close()

	k := NewKrokiRenderer(srv.URL+"/", srv.Client())
	v, err := k.Render(context.Background(), "graph TD\n  A-->B")
	require.NoError(t, err)
	assert.Equal(t, "/mermaid/svg", gotPath)
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, "graph TD\n  A-->B", gotBody)
	assert.Equal(t, 384.0, v.Width)
	assert.Equal(t, 192.0, v.Height)
}

func TestKrokiRenderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Syntax error in graph", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewKrokiRenderer(srv.URL, srv.Client()).Render(context.Background(), "graph ???")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "Syntax error")
}

func TestKrokiRenderRejectsSizelessSVG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	}))
	defer srv.Close()

	_, err := NewKrokiRenderer(srv.URL, nil).Render(context.Background(), "graph TD")
	assert.Error(t, err)
}

func TestRasterizeSVG(t *testing.T) {
	v := Vector{SVG: []byte(boxSVG), Width: 384, Height: 192}
	img, err := RasterizeSVG(context.Background(), v, 384, 192)
	require.NoError(t, err)

	r, g, b, _ := img.At(192, 96).RGBA()
	assert.Greater(t, r>>8, uint32(200), "center should be red")
	assert.Less(t, g>>8, uint32(50))
	assert.Less(t, b>>8, uint32(50))

	r, g, b, _ = img.At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{255, 255, 255}, [3]uint32{r >> 8, g >> 8, b >> 8}, "background should be white")

	_, err = RasterizeSVG(context.Background(), v, 0, 10)
	assert.Error(t, err)
}

const styledSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100" width="200" height="100">
<style>.node rect{fill:#ECECFF;stroke:#9370DB}</style>
<g class="node"><rect x="10" y="10" width="180" height="80"/></g>
<text x="100" y="55" text-anchor="middle">Start</text>
</svg>`

func TestKrokiRasterizeKeepsStyledFill(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "slidescript.diagram")
	defer teardown()
	//
	nodeFill := color.RGBA{R: 0xEC, G: 0xEC, B: 0xFF, A: 0xFF}
	var pngBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/mermaid/svg":
			_, _ = io.WriteString(w, styledSVG)
		case "/mermaid/png":
			pngBody = string(b)
			img := image.NewRGBA(image.Rect(0, 0, 100, 50))
			draw.Draw(img, img.Bounds(), image.NewUniform(nodeFill), image.Point{}, draw.Src)
			w.Header().Set("Content-Type", "image/png")
			_ = png.Encode(w, img)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	k := NewKrokiRenderer(srv.URL, srv.Client())
	v, err := k.Render(context.Background(), "graph TD\n  A[Start]")
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n  A[Start]", v.Definition)

	img, err := k.Rasterize(context.Background(), v, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n  A[Start]", pngBody)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
	r, g, b, _ := img.At(100, 50).RGBA()
	assert.Equal(t, [3]uint32{0xEC, 0xEC, 0xFF}, [3]uint32{r >> 8, g >> 8, b >> 8}, "node keeps its css fill")

	// the whole chain, for a target that only takes pixels
	res := NewChain(k).Resolve(context.Background(), "graph TD\n  A[Start]", 100, 50, false)
	require.Equal(t, ResultRaster, res.Kind, "unexpected placeholder: %v", res.Err)
	decoded, err := png.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	c := decoded.Bounds().Max
	r, g, b, _ = decoded.At(c.X/2, c.Y/2).RGBA()
	assert.Equal(t, [3]uint32{0xEC, 0xEC, 0xFF}, [3]uint32{r >> 8, g >> 8, b >> 8})
}

func TestKrokiRasterizePNGError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "png unsupported", http.StatusBadRequest)
	}))
	defer srv.Close()

	k := NewKrokiRenderer(srv.URL, srv.Client())
	_, err := k.Rasterize(context.Background(), Vector{Definition: "graph TD", Width: 10, Height: 10}, 10, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "png status 400")
}

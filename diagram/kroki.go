package diagram

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultKrokiURL is the public Kroki instance.
const DefaultKrokiURL = "https://kroki.io"

// maxResponseBytes caps the size of a rendered diagram.
const maxResponseBytes = 8 << 20

// KrokiRenderer renders diagrams through a Kroki HTTP service. Both the
// vector and the pixel form come from the service, so the diagram's CSS and
// labels survive rasterization.
type KrokiRenderer struct {
	BaseURL string
	Type    string // kroki diagram type, "mermaid" when empty
	Client  *http.Client
}

var _ Renderer = (*KrokiRenderer)(nil)

// NewKrokiRenderer creates a renderer for baseURL; an empty URL selects the
// public instance and a nil client selects http.DefaultClient.
func NewKrokiRenderer(baseURL string, client *http.Client) *KrokiRenderer {
	if baseURL == "" {
		baseURL = DefaultKrokiURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &KrokiRenderer{BaseURL: baseURL, Client: client}
}

// Render posts the definition as plain text and parses the SVG reply.
func (k *KrokiRenderer) Render(ctx context.Context, definition string) (Vector, error) {
	body, err := k.post(ctx, "svg", definition)
	if err != nil {
		return Vector{}, err
	}
	tracer().Debugf("kroki rendered %d bytes of svg", len(body))
	v, err := ParseVector(body)
	if err != nil {
		return Vector{}, err
	}
	v.Definition = definition
	return v, nil
}

// Rasterize asks the service for a PNG of the same definition and scales it
// onto a white width×height buffer. Vectors without a definition are drawn
// locally with RasterizeSVG.
func (k *KrokiRenderer) Rasterize(ctx context.Context, v Vector, width, height int) (image.Image, error) {
	if v.Definition == "" {
		return RasterizeSVG(ctx, v, width, height)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("diagram: invalid raster size %dx%d", width, height)
	}
	body, err := k.post(ctx, "png", v.Definition)
	if err != nil {
		return nil, err
	}
	src, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("diagram: decode kroki png: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}

// post sends definition to {base}/{type}/{format} and returns the body of a
// 2xx reply.
func (k *KrokiRenderer) post(ctx context.Context, format, definition string) ([]byte, error) {
	kind := k.Type
	if kind == "" {
		kind = "mermaid"
	}
	url := strings.TrimRight(k.BaseURL, "/") + "/" + kind + "/" + format

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(definition))
	if err != nil {
		return nil, fmt.Errorf("diagram: build kroki request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	if format == "svg" {
		req.Header.Set("Accept", "image/svg+xml")
	} else {
		req.Header.Set("Accept", "image/"+format)
	}

	client := k.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diagram: kroki request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("diagram: read kroki response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("diagram: kroki %s status %d: %s", format, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

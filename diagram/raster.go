package diagram

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// RasterizeSVG draws v onto an off-screen width×height RGBA buffer with a
// white background. The drawing is stretched to the buffer; callers pass a
// size that already respects the aspect ratio.
func RasterizeSVG(ctx context.Context, v Vector, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("diagram: invalid raster size %dx%d", width, height)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(v.SVG), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("diagram: parse svg: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

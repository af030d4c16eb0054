// Package imaging provides the raster operations the matching pipeline
// needs: decoding uploads, exact rectangular crops, and alpha flattening
// ahead of embedding.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // decoder registration for jpeg uploads
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"github.com/figmatch/figmatch/pkg/parts"
)

// Decode reads a raster image from r. PNG and JPEG are registered; anything
// else fails with the decoder's format error.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// Crop returns the sub-image of img covered by the region, copied into a new
// image so the result is independent of the source. The color model is
// preserved; alpha, if present, survives the crop and is only flattened later
// by the encoder preprocessing.
//
// The region must lie within img's bounds (caller contract).
func Crop(img image.Image, region parts.Region) image.Image {
	src := img.Bounds()
	rect := region.Rect().Add(src.Min)

	out := image.NewNRGBA(image.Rect(0, 0, region.Width, region.Height))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}

// Flatten composites img onto an opaque white background and returns an
// RGB-only image. Dropping an alpha channel without compositing corrupts
// edge pixels, so every image headed for the encoder goes through here,
// opaque or not.
func Flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Over)
	return out
}

// Scale resizes img to width x height using Catmull-Rom resampling.
func Scale(img image.Image, width, height int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}

// EncodePNG serializes img as lossless PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

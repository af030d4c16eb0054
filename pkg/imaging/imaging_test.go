package imaging_test

import (
	"bytes"
	"image"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/figmatch/figmatch/pkg/imaging"
	"github.com/figmatch/figmatch/pkg/parts"
)

// gradient builds a w x h image whose pixel at (x, y) encodes its own
// coordinates, so crops can be checked pixel-for-pixel.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	return img
}

var _ = Describe("Crop", func() {
	It("copies exactly the region's pixels", func() {
		src := gradient(64, 48)
		region := parts.Region{X: 10, Y: 20, Width: 16, Height: 8}

		cropped := imaging.Crop(src, region)
		Expect(cropped.Bounds().Dx()).To(Equal(16))
		Expect(cropped.Bounds().Dy()).To(Equal(8))

		for j := 0; j < region.Height; j++ {
			for i := 0; i < region.Width; i++ {
				want := src.NRGBAAt(region.X+i, region.Y+j)
				got := cropped.(*image.NRGBA).NRGBAAt(i, j)
				Expect(got).To(Equal(want))
			}
		}
	})

	It("is independent of the source image", func() {
		src := gradient(32, 32)
		cropped := imaging.Crop(src, parts.Region{X: 0, Y: 0, Width: 8, Height: 8})

		src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		Expect(cropped.(*image.NRGBA).NRGBAAt(0, 0)).To(Equal(color.NRGBA{R: 0, G: 0, B: 0, A: 255}))
	})

	It("preserves transparency through the crop", func() {
		src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		src.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 0, B: 0, A: 128})

		cropped := imaging.Crop(src, parts.Region{X: 0, Y: 0, Width: 4, Height: 4})
		Expect(cropped.(*image.NRGBA).NRGBAAt(1, 1).A).To(Equal(uint8(128)))
	})
})

var _ = Describe("Flatten", func() {
	It("leaves opaque pixels unchanged", func() {
		src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
		src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

		flat := imaging.Flatten(src)
		r, g, b, a := flat.At(0, 0).RGBA()
		Expect(uint8(r >> 8)).To(Equal(uint8(10)))
		Expect(uint8(g >> 8)).To(Equal(uint8(20)))
		Expect(uint8(b >> 8)).To(Equal(uint8(30)))
		Expect(uint8(a >> 8)).To(Equal(uint8(255)))
	})

	It("turns fully transparent pixels white", func() {
		src := image.NewNRGBA(image.Rect(0, 0, 2, 2))

		flat := imaging.Flatten(src)
		r, g, b, _ := flat.At(0, 0).RGBA()
		Expect(uint8(r >> 8)).To(Equal(uint8(255)))
		Expect(uint8(g >> 8)).To(Equal(uint8(255)))
		Expect(uint8(b >> 8)).To(Equal(uint8(255)))
	})

	It("blends semi-transparent pixels against white rather than dropping alpha", func() {
		src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		src.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 128})

		flat := imaging.Flatten(src)
		r, _, _, a := flat.At(0, 0).RGBA()
		// Half-opaque black over white should land near mid-grey, far
		// from either the naive-dropped value (0) or the background (255).
		Expect(uint8(r >> 8)).To(BeNumerically("~", 127, 2))
		Expect(uint8(a >> 8)).To(Equal(uint8(255)))
	})

	It("always produces an opaque image", func() {
		src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
		src.SetNRGBA(2, 2, color.NRGBA{R: 50, G: 60, B: 70, A: 40})

		flat := imaging.Flatten(src)
		bounds := flat.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := flat.At(x, y).RGBA()
				Expect(uint8(a >> 8)).To(Equal(uint8(255)))
			}
		}
	})
})

var _ = Describe("Decode", func() {
	It("round-trips a PNG", func() {
		src := gradient(8, 8)
		data, err := imaging.EncodePNG(src)
		Expect(err).NotTo(HaveOccurred())

		decoded, err := imaging.Decode(bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.Bounds()).To(Equal(src.Bounds()))
	})

	It("rejects non-image bytes", func() {
		_, err := imaging.Decode(bytes.NewReader([]byte("definitely not pixels")))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Scale", func() {
	It("resizes to the requested dimensions", func() {
		src := gradient(64, 64)
		scaled := imaging.Scale(src, 16, 16)
		Expect(scaled.Bounds().Dx()).To(Equal(16))
		Expect(scaled.Bounds().Dy()).To(Equal(16))
	})
})

package parts_test

import (
	"image"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/figmatch/figmatch/pkg/parts"
)

var _ = Describe("Category", func() {
	Describe("ParseCategory", func() {
		It("accepts the three known categories", func() {
			for _, name := range []string{"head", "torso", "legs"} {
				cat, err := parts.ParseCategory(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(cat)).To(Equal(name))
			}
		})

		It("rejects unknown categories", func() {
			_, err := parts.ParseCategory("arms")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Next", func() {
		It("walks head to torso to legs", func() {
			next, ok := parts.Head.Next()
			Expect(ok).To(BeTrue())
			Expect(next).To(Equal(parts.Torso))

			next, ok = parts.Torso.Next()
			Expect(ok).To(BeTrue())
			Expect(next).To(Equal(parts.Legs))
		})

		It("ends after legs", func() {
			_, ok := parts.Legs.Next()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Identifier", func() {
		It("strips the head prefix and extension", func() {
			id, err := parts.Head.Identifier("head_3001.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("3001"))
		})

		It("strips the longer torso prefix", func() {
			id, err := parts.Torso.Identifier("torso_973pb1.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("973pb1"))
		})

		It("strips the legs prefix", func() {
			id, err := parts.Legs.Identifier("legs_970c00.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("970c00"))
		})

		It("rejects a filename from another category", func() {
			_, err := parts.Head.Identifier("torso_973pb1.png")
			Expect(err).To(HaveOccurred())
		})

		It("rejects a filename without the extension", func() {
			_, err := parts.Head.Identifier("head_3001.jpg")
			Expect(err).To(HaveOccurred())
		})

		It("rejects an empty identifier", func() {
			_, err := parts.Head.Identifier("head_.png")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ExternalImageURL", func() {
		It("substitutes the bare identifier into the hosting template", func() {
			Expect(parts.ExternalImageURL("3001")).To(
				Equal("https://img.bricklink.com/ItemImage/MN/0/3001.png"))
		})
	})
})

var _ = Describe("Region", func() {
	bounds := image.Rect(0, 0, 100, 80)

	It("accepts a region fully inside the image", func() {
		r := parts.Region{X: 10, Y: 10, Width: 30, Height: 30}
		Expect(r.In(bounds)).To(BeTrue())
	})

	It("accepts a region touching the far edges", func() {
		r := parts.Region{X: 70, Y: 50, Width: 30, Height: 30}
		Expect(r.In(bounds)).To(BeTrue())
	})

	It("rejects a region crossing the right edge", func() {
		r := parts.Region{X: 80, Y: 0, Width: 30, Height: 30}
		Expect(r.In(bounds)).To(BeFalse())
	})

	It("rejects negative origins", func() {
		r := parts.Region{X: -1, Y: 0, Width: 10, Height: 10}
		Expect(r.In(bounds)).To(BeFalse())
	})

	It("rejects empty regions", func() {
		r := parts.Region{X: 10, Y: 10, Width: 0, Height: 10}
		Expect(r.In(bounds)).To(BeFalse())
	})
})

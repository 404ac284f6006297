package qa

import (
	"image"
	"image/draw"
)

// ConcatVertical stacks two images top-aligned on a shared canvas whose
// width is the wider of the two and whose height is the sum of both.
// Either argument may be nil, in which case the other is returned as is.
func ConcatVertical(img1, img2 image.Image) image.Image {
	if img1 == nil {
		return img2
	}
	if img2 == nil {
		return img1
	}

	b1, b2 := img1.Bounds(), img2.Bounds()
	w := max(b1.Dx(), b2.Dx())
	h := b1.Dy() + b2.Dy()

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, image.Rect(0, 0, b1.Dx(), b1.Dy()), img1, b1.Min, draw.Src)
	draw.Draw(canvas, image.Rect(0, b1.Dy(), b2.Dx(), h), img2, b2.Min, draw.Src)
	return canvas
}

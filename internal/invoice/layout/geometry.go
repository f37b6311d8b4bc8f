package layout

// Box is a placed rectangle; X/Y is its bottom-left corner.
type Box struct {
	X, Y, Width, Height float64
}

// FitSquare scales a width x height image into a size x size square keeping
// its aspect ratio, centered inside the square whose bottom-left corner is
// (x, y).
func FitSquare(width, height int, x, y, size float64) Box {
	if width <= 0 || height <= 0 || size <= 0 {
		return Box{X: x, Y: y}
	}
	scale := size / float64(width)
	if height > width {
		scale = size / float64(height)
	}
	w := float64(width) * scale
	h := float64(height) * scale
	return Box{
		X:      x + (size-w)/2,
		Y:      y + (size-h)/2,
		Width:  w,
		Height: h,
	}
}

// CenterX returns the x that horizontally centers an item of the given
// width on a page.
func CenterX(pageWidth, width float64) float64 {
	return (pageWidth - width) / 2
}

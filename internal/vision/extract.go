package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// PlatePadding is the margin kept around the located quadrilateral.
const PlatePadding = 5

// PlateRegion expands the contour's bounding rectangle by padding on every
// side and clamps it to bounds. An empty rectangle means nothing to crop.
func PlateRegion(c Contour, bounds image.Rectangle, padding int) image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	return c.BoundingRect().Inset(-padding).Intersect(bounds)
}

// ExtractPlate crops img to the padded region around c. The returned Mat is
// an independent copy owned by the caller.
func ExtractPlate(img gocv.Mat, c Contour) (gocv.Mat, bool) {
	if img.Empty() || len(c) == 0 {
		return gocv.NewMat(), false
	}

	rect := PlateRegion(c, image.Rect(0, 0, img.Cols(), img.Rows()), PlatePadding)
	if rect.Empty() {
		return gocv.NewMat(), false
	}

	region := img.Region(rect)
	defer region.Close()
	return region.Clone(), true
}

package vision

import (
	"image"
	"sort"

	"gocv.io/x/gocv"
)

const (
	// MaxCandidates is how many of the largest contours are examined.
	MaxCandidates = 10
	// ApproxEpsilonRatio is the polygon approximation tolerance as a fraction of the perimeter.
	ApproxEpsilonRatio = 0.018
)

// Contour is an ordered outline of points in image coordinates.
type Contour []image.Point

type candidate struct {
	points gocv.PointVector
	area   float64
}

// LocatePlate returns the first contour, in area-descending order among the
// MaxCandidates largest, whose polygon approximation has exactly four vertices.
// The returned contour is the approximated quadrilateral.
func LocatePlate(edges gocv.Mat) (Contour, bool) {
	if edges.Empty() {
		return nil, false
	}

	contours := gocv.FindContours(edges, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	candidates := make([]candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		candidates = append(candidates, candidate{points: pv, area: gocv.ContourArea(pv)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}

	for _, c := range candidates {
		perimeter := gocv.ArcLength(c.points, true)
		approx := gocv.ApproxPolyDP(c.points, ApproxEpsilonRatio*perimeter, true)
		if approx.Size() == 4 {
			quad := Contour(approx.ToPoints())
			approx.Close()
			return quad, true
		}
		approx.Close()
	}
	return nil, false
}

// BoundingRect is the smallest axis-aligned rectangle containing every point,
// with the same inclusive extent OpenCV's boundingRect reports.
func (c Contour) BoundingRect() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0]}
	for _, p := range c[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

package vision

import (
	"gocv.io/x/gocv"
)

// Edge-preserving smoothing and Canny parameters.
const (
	BilateralDiameter   = 11
	BilateralSigmaColor = 17
	BilateralSigmaSpace = 17
	CannyLowThreshold   = 30
	CannyHighThreshold  = 200
)

// Preprocessed is the output of Preprocess. Close releases both buffers.
type Preprocessed struct {
	Gray  gocv.Mat
	Edges gocv.Mat
}

func (p *Preprocessed) Close() {
	p.Gray.Close()
	p.Edges.Close()
}

// Preprocess converts a BGR image to a denoised grayscale image and its edge map.
func Preprocess(img gocv.Mat) (*Preprocessed, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	gray := gocv.NewMat()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}

	// bilateralFilter cannot run in place
	smoothed := gocv.NewMat()
	gocv.BilateralFilter(gray, &smoothed, BilateralDiameter, BilateralSigmaColor, BilateralSigmaSpace)
	gray.Close()

	edges := gocv.NewMat()
	gocv.Canny(smoothed, &edges, CannyLowThreshold, CannyHighThreshold)

	return &Preprocessed{Gray: smoothed, Edges: edges}, nil
}

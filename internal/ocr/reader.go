// Package ocr reads plate text from a cropped plate image.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"
)

// UpscaleFactor enlarges the crop before binarization; small glyphs read poorly.
const UpscaleFactor = 2.0

var ErrNoText = errors.New("no plate text recognized")

// Recognizer turns a binarized single-line plate image (PNG bytes) into raw text.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
	Close() error
}

// Reader prepares a cropped plate for OCR and normalizes the result.
type Reader struct {
	recognizer Recognizer
	normalizer Normalizer
}

func NewReader(recognizer Recognizer, normalizer Normalizer) *Reader {
	return &Reader{recognizer: recognizer, normalizer: normalizer}
}

// Read returns ErrNoText without calling the recognizer when plate is empty,
// and ErrNoText when the normalized result is too short.
func (r *Reader) Read(ctx context.Context, plate gocv.Mat) (string, error) {
	if plate.Empty() || plate.Rows() == 0 || plate.Cols() == 0 {
		return "", ErrNoText
	}

	binary := Binarize(plate)
	defer binary.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return "", fmt.Errorf("failed to encode plate: %w", err)
	}
	defer buf.Close()

	raw, err := r.recognizer.Recognize(ctx, buf.GetBytes())
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text, ok := r.normalizer.Normalize(raw)
	if !ok {
		log.Printf("OCR: rejected raw text %q", raw)
		return "", ErrNoText
	}
	return text, nil
}

func (r *Reader) Close() error {
	return r.recognizer.Close()
}

// Binarize upscales the crop with cubic interpolation, converts it to gray
// and applies Otsu's global threshold.
func Binarize(plate gocv.Mat) gocv.Mat {
	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(plate, &scaled, image.Point{}, UpscaleFactor, UpscaleFactor, gocv.InterpolationCubic)

	gray := gocv.NewMat()
	defer gray.Close()
	if scaled.Channels() == 1 {
		scaled.CopyTo(&gray)
	} else {
		gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	}

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return binary
}

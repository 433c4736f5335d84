// Package vision holds the classical plate-finding pipeline: decoding the
// uploaded frame, edge extraction, quadrilateral search and cropping.
package vision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gocv.io/x/gocv"
)

var (
	ErrEmptyImage   = errors.New("empty image")
	ErrInvalidImage = errors.New("invalid image")
)

// DecodeBase64Image decodes a base64 payload, optionally carrying a
// data URL prefix, into a BGR Mat. The caller owns the returned Mat.
func DecodeBase64Image(payload string) (gocv.Mat, error) {
	raw, err := base64.StdEncoding.DecodeString(stripDataURL(strings.TrimSpace(payload)))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: base64: %v", ErrInvalidImage, err)
	}
	return DecodeImage(raw)
}

// DecodeImage decodes encoded image bytes into a BGR Mat. OpenCV is tried
// first; formats it was not built with fall back to the Go decoders.
func DecodeImage(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err == nil {
		if !mat.Empty() {
			return mat, nil
		}
		mat.Close()
	}

	img, err := decodeGo(data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	mat, err = gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: convert: %v", ErrInvalidImage, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), ErrInvalidImage
	}
	return mat, nil
}

func decodeGo(data []byte) (image.Image, error) {
	if isHEIC(data) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	// imaging applies the EXIF orientation phone cameras write into JPEGs.
	if img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, errors.New("unknown or unsupported format")
}

// stripDataURL removes a "data:image/...;base64," prefix if present.
func stripDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, "base64,"); i >= 0 {
		return s[i+len("base64,"):]
	}
	return s
}

// isHEIC checks the ISO BMFF ftyp box for a HEIF brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "heim", "heis", "mif1", "msf1":
		return true
	}
	return false
}

package service

import (
	"context"
	"errors"
	"log"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
	"github.com/asmitabhandari/smart-parking-system/internal/ocr"
	"github.com/asmitabhandari/smart-parking-system/internal/vision"

	"gocv.io/x/gocv"
)

// Messages returned to the kiosk.
const (
	MsgNoImageProvided = "No image provided"
	MsgInvalidRequest  = "Invalid request body"
	MsgInvalidImage    = "Invalid image"
	MsgCouldNotDetect  = "Could not detect plate"
	MsgFailedToSaveDB  = "Failed to save to database"
	MsgFailedToSave    = "Failed to save"
)

// PlateReader reads normalized plate text from a cropped plate image.
type PlateReader interface {
	Read(ctx context.Context, plate gocv.Mat) (string, error)
}

// LPRService runs the classical plate pipeline: decode, preprocess, locate,
// extract, read. It keeps no state between calls.
type LPRService struct {
	reader PlateReader
}

func NewLPRService(reader PlateReader) *LPRService {
	return &LPRService{reader: reader}
}

// DetectPlate returns the plate text found in a base64 encoded frame.
// Errors are *domain.Error: validation for an undecodable frame, detection
// when no plate text is produced, unexpected for OCR engine failures.
func (s *LPRService) DetectPlate(ctx context.Context, imageBase64 string) (string, error) {
	if imageBase64 == "" {
		return "", domain.NewValidationError(MsgNoImageProvided, nil)
	}

	img, err := vision.DecodeBase64Image(imageBase64)
	if err != nil {
		log.Printf("LPRService: failed to decode image: %v", err)
		return "", domain.NewValidationError(MsgInvalidImage, err)
	}
	defer img.Close()
	log.Printf("LPRService: decoded %dx%d frame", img.Cols(), img.Rows())

	pre, err := vision.Preprocess(img)
	if err != nil {
		return "", domain.NewValidationError(MsgInvalidImage, err)
	}
	defer pre.Close()

	contour, found := vision.LocatePlate(pre.Edges)
	if !found {
		log.Println("LPRService: no quadrilateral contour among the largest candidates")
		return "", domain.NewDetectionError(MsgCouldNotDetect, nil)
	}

	plate, ok := vision.ExtractPlate(img, contour)
	defer plate.Close()
	if !ok {
		return "", domain.NewDetectionError(MsgCouldNotDetect, nil)
	}

	text, err := s.reader.Read(ctx, plate)
	if err != nil {
		if errors.Is(err, ocr.ErrNoText) {
			return "", domain.NewDetectionError(MsgCouldNotDetect, err)
		}
		log.Printf("LPRService: OCR error: %v", err)
		return "", domain.NewUnexpectedError(err.Error(), err)
	}

	log.Printf("LPRService: detected plate %q", text)
	return text, nil
}

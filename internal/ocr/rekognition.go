package ocr

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// DetectTextAPI is the part of the Rekognition client used here.
type DetectTextAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// Rekognition reads the plate with AWS Rekognition DetectText and keeps the
// most confident LINE detection.
type Rekognition struct {
	client DetectTextAPI
}

func NewRekognition(client DetectTextAPI) *Rekognition {
	return &Rekognition{client: client}
}

func (r *Rekognition) Recognize(ctx context.Context, png []byte) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("rekognition client is not initialized")
	}

	result, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: png},
	})
	if err != nil {
		return "", fmt.Errorf("rekognition: %w", err)
	}

	var best string
	var bestConfidence float32
	for _, d := range result.TextDetections {
		if d.Type != types.TextTypesLine || d.DetectedText == nil || d.Confidence == nil {
			continue
		}
		if *d.Confidence > bestConfidence {
			best = *d.DetectedText
			bestConfidence = *d.Confidence
		}
	}
	log.Printf("Rekognition: %d detections, chose %q (%.2f)", len(result.TextDetections), best, bestConfidence)
	return best, nil
}

func (r *Rekognition) Close() error { return nil }

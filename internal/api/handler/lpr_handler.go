package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
	"github.com/asmitabhandari/smart-parking-system/internal/repository"
	"github.com/asmitabhandari/smart-parking-system/internal/service"

	"github.com/gin-gonic/gin"
)

// PlateDetector finds plate text in a base64 encoded frame.
type PlateDetector interface {
	DetectPlate(ctx context.Context, imageBase64 string) (string, error)
}

// AssignmentRecorder forwards a parking assignment to the recording service.
type AssignmentRecorder interface {
	Park(ctx context.Context, assignment domain.ParkingAssignment) error
}

type LPRHandler struct {
	lprService     PlateDetector
	parkingService AssignmentRecorder
}

func NewLPRHandler(lprService PlateDetector, parkingService AssignmentRecorder) *LPRHandler {
	return &LPRHandler{lprService: lprService, parkingService: parkingService}
}

// POST /detect-plate
func (h *LPRHandler) DetectPlate(c *gin.Context) {
	var req domain.DetectPlateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, domain.NewValidationError(service.MsgInvalidRequest, err))
		return
	}
	if req.Image == "" {
		respondError(c, domain.NewValidationError(service.MsgNoImageProvided, nil))
		return
	}

	plate, err := h.lprService.DetectPlate(c.Request.Context(), req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	assignment := domain.NewParkingAssignment(plate, req.Floor, req.Spot)
	if err := h.parkingService.Park(c.Request.Context(), assignment); err != nil {
		if errors.Is(err, repository.ErrRecordRejected) {
			err = domain.NewUpstreamError(service.MsgFailedToSaveDB, err)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.DetectPlateResponse{
		Success: true,
		Plate:   assignment.Plate,
		Floor:   assignment.Floor,
		Spot:    assignment.Spot,
	})
}

func respondError(c *gin.Context, err error) {
	appErr := domain.AsError(err)
	log.Printf("%s %s: %s error: %v", c.Request.Method, c.FullPath(), appErr.Kind, err)
	c.JSON(appErr.Kind.StatusCode(), domain.ErrorResponse{Success: false, Error: appErr.Message})
}

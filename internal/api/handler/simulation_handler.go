package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
	"github.com/asmitabhandari/smart-parking-system/internal/service"

	"github.com/gin-gonic/gin"
)

type SimulationHandler struct {
	parkingService AssignmentRecorder
}

func NewSimulationHandler(parkingService AssignmentRecorder) *SimulationHandler {
	return &SimulationHandler{parkingService: parkingService}
}

// POST /simulate-detection
// Skips the camera pipeline; an empty body parks the default plate.
func (h *SimulationHandler) SimulateDetection(c *gin.Context) {
	var req domain.SimulateDetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, domain.NewValidationError(service.MsgInvalidRequest, err))
		return
	}

	assignment := req.Assignment()
	if err := h.parkingService.Park(c.Request.Context(), assignment); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.DetectPlateResponse{
		Success:   true,
		Plate:     assignment.Plate,
		Floor:     assignment.Floor,
		Spot:      assignment.Spot,
		Simulated: true,
	})
}

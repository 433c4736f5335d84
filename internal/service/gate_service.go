package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
)

// GateService handles frames pushed by gate cameras through the event queue.
// Each event is a DetectPlateRequest and runs the same flow as POST /detect-plate.
type GateService struct {
	lprService     *LPRService
	parkingService *ParkingService
}

func NewGateService(lprService *LPRService, parkingService *ParkingService) *GateService {
	return &GateService{lprService: lprService, parkingService: parkingService}
}

// HandleGateEvent returns the recorded assignment, or a *domain.Error.
func (s *GateService) HandleGateEvent(ctx context.Context, body string) (*domain.ParkingAssignment, error) {
	var req domain.DetectPlateRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return nil, domain.NewValidationError(MsgInvalidRequest, fmt.Errorf("decode gate event: %w", err))
	}

	plate, err := s.lprService.DetectPlate(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	assignment := domain.NewParkingAssignment(plate, req.Floor, req.Spot)
	if err := s.parkingService.Park(ctx, assignment); err != nil {
		return nil, err
	}
	log.Printf("GateService: plate %s parked from gate event", plate)
	return &assignment, nil
}

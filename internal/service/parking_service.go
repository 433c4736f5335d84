package service

import (
	"context"
	"errors"
	"log"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
	"github.com/asmitabhandari/smart-parking-system/internal/repository"
)

// ParkingService relays parking assignments to the recording service.
type ParkingService struct {
	records repository.ParkingRecordRepository
}

func NewParkingService(records repository.ParkingRecordRepository) *ParkingService {
	return &ParkingService{records: records}
}

// Park records the assignment. A rejected write and a transport failure are
// both upstream errors; a rejection still matches repository.ErrRecordRejected.
func (s *ParkingService) Park(ctx context.Context, assignment domain.ParkingAssignment) error {
	err := s.records.Save(ctx, assignment)
	if err == nil {
		log.Printf("ParkingService: recorded plate %s at floor %s spot %s", assignment.Plate, assignment.Floor, assignment.Spot)
		return nil
	}

	log.Printf("ParkingService: failed to record plate %s: %v", assignment.Plate, err)
	if errors.Is(err, repository.ErrRecordRejected) {
		return domain.NewUpstreamError(MsgFailedToSave, err)
	}
	return domain.NewUpstreamError(err.Error(), err)
}

package repository

import (
	"context"
	"errors"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
)

// ErrRecordRejected is returned when the recording service answers with a non-2xx status.
var ErrRecordRejected = errors.New("recording service rejected the parking assignment")

// ParkingRecordRepository stores a parking assignment in the recording service.
// The service itself owns persistence; this side only consumes its POST /park contract.
type ParkingRecordRepository interface {
	Save(ctx context.Context, assignment domain.ParkingAssignment) error
}

package domain

import "encoding/json"

// Floor and spot are relayed to the recording service exactly as the caller sent them,
// so a numeric floor stays numeric and a string spot stays a string.
var (
	DefaultSimulatedPlate = "ABC1234"
	DefaultSimulatedFloor = json.RawMessage(`1`)
	DefaultSimulatedSpot  = json.RawMessage(`"A1"`)
)

// DetectPlateRequest is sent by the kiosk camera with a base64 encoded frame.
type DetectPlateRequest struct {
	Image string          `json:"image"`
	Floor json.RawMessage `json:"floor"`
	Spot  json.RawMessage `json:"spot"`
}

// SimulateDetectionRequest skips the vision pipeline; used for testing the kiosk flow.
type SimulateDetectionRequest struct {
	Plate *string         `json:"plate"`
	Floor json.RawMessage `json:"floor"`
	Spot  json.RawMessage `json:"spot"`
}

// ParkingAssignment is the unit accepted by the recording service at POST /park.
type ParkingAssignment struct {
	Plate string          `json:"plate"`
	Floor json.RawMessage `json:"floor"`
	Spot  json.RawMessage `json:"spot"`
}

// NewParkingAssignment fills an absent floor or spot with JSON null.
func NewParkingAssignment(plate string, floor, spot json.RawMessage) ParkingAssignment {
	return ParkingAssignment{
		Plate: plate,
		Floor: orNull(floor),
		Spot:  orNull(spot),
	}
}

// Assignment applies the simulation defaults to the fields the caller left out.
// An explicit JSON null is kept as null.
func (r SimulateDetectionRequest) Assignment() ParkingAssignment {
	plate := DefaultSimulatedPlate
	if r.Plate != nil {
		plate = *r.Plate
	}
	floor := r.Floor
	if len(floor) == 0 {
		floor = DefaultSimulatedFloor
	}
	spot := r.Spot
	if len(spot) == 0 {
		spot = DefaultSimulatedSpot
	}
	return ParkingAssignment{Plate: plate, Floor: floor, Spot: spot}
}

// DetectPlateResponse is returned on a recorded detection.
type DetectPlateResponse struct {
	Success   bool            `json:"success"`
	Plate     string          `json:"plate"`
	Floor     json.RawMessage `json:"floor"`
	Spot      json.RawMessage `json:"spot"`
	Simulated bool            `json:"simulated,omitempty"`
}

// ErrorResponse is the body of every failed detect or simulate call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func orNull(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return json.RawMessage(`null`)
	}
	return v
}

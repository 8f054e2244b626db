package events

// GridPlacedPayload carries the one-time placement anchor
type GridPlacedPayload struct {
	OriginX float64
	OriginY float64 // Floor height
	OriginZ float64
	Yaw     float64 // Grid rotation around the vertical axis, radians
}

// NarrationDonePayload identifies the finished line
type NarrationDonePayload struct {
	Line string
}

// CountdownTickPayload carries the remaining count (3, 2, 1)
type CountdownTickPayload struct {
	Remaining int
}

// TilePayload identifies a single grid cell
type TilePayload struct {
	X int
	Z int
}

// StepPayload reports an accepted step with progress
type StepPayload struct {
	X        int
	Z        int
	Progress int // Correctly consumed path steps so far
	Total    int // Active path length
}

// WrongStepPayload reports a mismatch with the expected cell
type WrongStepPayload struct {
	ExpectedX int
	ExpectedZ int
	ActualX   int
	ActualZ   int
	Progress  int // Frozen progress at the time of the mistake
}

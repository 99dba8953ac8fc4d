package blink

// Optometry guidelines for healthy blinking (blinks per minute).
const (
	MinHealthyRate = 12
	MaxHealthyRate = 20
	OptimalRate    = 16
)

// Status is the health band a blink rate falls into.
type Status int

const (
	StatusTooLow Status = iota
	StatusHealthy
	StatusTooHigh
)

func (s Status) String() string {
	switch s {
	case StatusTooLow:
		return "TOO_LOW"
	case StatusTooHigh:
		return "TOO_HIGH"
	default:
		return "HEALTHY"
	}
}

// Label returns the user-facing message shown on the dashboard and stored
// in persisted records.
func (s Status) Label() string {
	switch s {
	case StatusTooLow:
		return "TOO LOW - Increase blinking!"
	case StatusTooHigh:
		return "TOO HIGH - Relax your eyes"
	default:
		return "HEALTHY RATE - Keep it up!"
	}
}

// Classify maps a blinks-per-minute rate onto a health band.
func Classify(rate int) Status {
	switch {
	case rate < MinHealthyRate:
		return StatusTooLow
	case rate > MaxHealthyRate:
		return StatusTooHigh
	default:
		return StatusHealthy
	}
}

// Package telemetry provides windowed simulation stats, event logs, and CSV output.
package telemetry

// Event kinds written to events.csv.
const (
	EventPour       = "pour"
	EventSwirlStart = "swirl_start"
	EventSwirlStop  = "swirl_stop"
	EventBurst      = "burst"
	EventDrop       = "drop"
	EventFade       = "fade"
	EventDissolved  = "dissolved"
)

// Event is a single timestamped simulation event.
// X and Z are beaker-local coordinates where the event occurred; Value carries
// an event-specific magnitude (grain count, burst size, dissolved mass).
type Event struct {
	Tick    int32   `csv:"tick"`
	TimeSec float64 `csv:"time"`
	Kind    string  `csv:"kind"`
	X       float32 `csv:"x"`
	Z       float32 `csv:"z"`
	Value   float64 `csv:"value"`
}

// NewEvent creates an event at the given tick.
func NewEvent(tick int32, dt float32, kind string, x, z float32, value float64) Event {
	return Event{
		Tick:    tick,
		TimeSec: float64(tick) * float64(dt),
		Kind:    kind,
		X:       x,
		Z:       z,
		Value:   value,
	}
}

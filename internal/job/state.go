package job

// State is the lifecycle position of the supervisor's current run.
type State int32

const (
	StateIdle State = iota
	StateProbing
	StateEncoding
	StateStopping
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProbing:
		return "probing"
	case StateEncoding:
		return "encoding"
	case StateStopping:
		return "stopping"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Active reports whether a run is in flight.
func (s State) Active() bool {
	return s == StateProbing || s == StateEncoding || s == StateStopping
}

// Terminal reports whether s is a final outcome.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

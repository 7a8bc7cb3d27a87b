package poller

import "fmt"

// State is a step of the poll cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StatePublishing
	StateSleeping
	StateErrorHandling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StatePublishing:
		return "publishing"
	case StateSleeping:
		return "sleeping"
	case StateErrorHandling:
		return "error_handling"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

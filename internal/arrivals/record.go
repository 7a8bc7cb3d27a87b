package arrivals

import (
	"fmt"
	"strconv"
)

// Kind distinguishes rail arrivals from bus arrivals.
type Kind int

const (
	KindTrain Kind = iota
	KindBus
)

func (k Kind) String() string {
	switch k {
	case KindTrain:
		return "train"
	case KindBus:
		return "bus"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Status is one of the three mutually exclusive arrival statuses.
type Status int

const (
	StatusOnTime Status = iota
	StatusDelayed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOnTime:
		return "on time"
	case StatusDelayed:
		return "delayed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// LineColor identifies a rail line. Only two are served at a stop.
type LineColor string

const (
	LineRed  LineColor = "red"
	LineBlue LineColor = "blue"
)

// Record is one predicted or scheduled arrival.
//
// ArrivalMillis is non-nil exactly when Status is StatusOnTime. Build records
// with Train or Bus to keep that true.
type Record struct {
	Kind          Kind
	Status        Status
	Color         LineColor // trains only
	Route         int       // buses only
	ArrivalMillis *int64
}

// Train returns a rail arrival. arrivalMillis is ignored unless status is on time.
func Train(color LineColor, status Status, arrivalMillis int64) Record {
	return Record{
		Kind:          KindTrain,
		Status:        status,
		Color:         color,
		ArrivalMillis: arrivalFor(status, arrivalMillis),
	}
}

// Bus returns a bus arrival. arrivalMillis is ignored unless status is on time.
func Bus(route int, status Status, arrivalMillis int64) Record {
	return Record{
		Kind:          KindBus,
		Status:        status,
		Route:         route,
		ArrivalMillis: arrivalFor(status, arrivalMillis),
	}
}

func arrivalFor(status Status, arrivalMillis int64) *int64 {
	if status != StatusOnTime {
		return nil
	}
	return &arrivalMillis
}

// ArrivalSeconds returns the arrival time truncated to whole epoch seconds.
func (r Record) ArrivalSeconds() (int64, bool) {
	if r.ArrivalMillis == nil {
		return 0, false
	}
	return *r.ArrivalMillis / 1000, true
}

// Line returns the display identifier: the color for trains, the route number for buses.
func (r Record) Line() string {
	if r.Kind == KindBus {
		return strconv.Itoa(r.Route)
	}
	return string(r.Color)
}

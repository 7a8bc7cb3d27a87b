package trimet

import "fmt"

// FetchErrorKind classifies why a stop could not be fetched.
type FetchErrorKind int

const (
	// FetchNetwork covers transport failures, timeouts and body read errors.
	FetchNetwork FetchErrorKind = iota
	// FetchStatus is a non-2xx HTTP response.
	FetchStatus
	// FetchEmpty is a successful response with a zero length body.
	FetchEmpty
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchNetwork:
		return "network"
	case FetchStatus:
		return "status"
	case FetchEmpty:
		return "empty"
	default:
		return fmt.Sprintf("fetch(%d)", int(k))
	}
}

// FetchError reports a failed request for one stop.
type FetchError struct {
	StopID     string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchEmpty:
		return fmt.Sprintf("fetching stop %s: empty response body", e.StopID)
	case FetchStatus:
		return fmt.Sprintf("fetching stop %s: unexpected status %d", e.StopID, e.StatusCode)
	default:
		return fmt.Sprintf("fetching stop %s: %v", e.StopID, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a feed document that could not be turned into arrivals.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	switch {
	case e.Field != "" && e.Value != "":
		return fmt.Sprintf("parsing arrivals: attribute %s=%q: %v", e.Field, e.Value, e.Err)
	case e.Field != "":
		return fmt.Sprintf("parsing arrivals: attribute %s: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("parsing arrivals: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

package trimet

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/transit-times/transit-times/internal/arrivals"
)

const (
	arrivalsNamespace = "urn:trimet:arrivals"

	// redLineMarker in an arrival's full sign selects the red line; any
	// other sign is the blue line.
	redLineMarker = "Red Line"

	statusCancelled = "cancelled"
	statusDelayed   = "delayed"
	statusEstimated = "estimated"
)

var errMissingAttribute = errors.New("missing required attribute")

// arrivalElement holds the attributes of one arrival. Status and FullSign
// are nil when the attribute is absent.
type arrivalElement struct {
	Status    *string `xml:"status,attr"`
	Estimated string  `xml:"estimated,attr"`
	Scheduled string  `xml:"scheduled,attr"`
	FullSign  *string `xml:"fullSign,attr"`
	Route     string  `xml:"route,attr"`
}

func required(field string, value *string) (string, error) {
	if value == nil {
		return "", &ParseError{Field: field, Err: errMissingAttribute}
	}
	return *value, nil
}

// ParseTrain turns a rail stop's arrivals document into records, in feed order.
func ParseTrain(raw []byte) ([]arrivals.Record, error) {
	elements, err := decodeArrivals(raw)
	if err != nil {
		return nil, err
	}

	records := make([]arrivals.Record, 0, len(elements))
	for _, el := range elements {
		status, err := required("status", el.Status)
		if err != nil {
			return nil, err
		}
		sign, err := required("fullSign", el.FullSign)
		if err != nil {
			return nil, err
		}

		color := arrivals.LineBlue
		if strings.Contains(sign, redLineMarker) {
			color = arrivals.LineRed
		}

		switch status {
		case statusCancelled:
			records = append(records, arrivals.Train(color, arrivals.StatusCancelled, 0))
		case statusDelayed:
			records = append(records, arrivals.Train(color, arrivals.StatusDelayed, 0))
		default:
			field, value := "estimated", el.Estimated
			if value == "" {
				field, value = "scheduled", el.Scheduled
			}
			millis, err := parseMillis(field, value)
			if err != nil {
				return nil, err
			}
			records = append(records, arrivals.Train(color, arrivals.StatusOnTime, millis))
		}
	}

	return records, nil
}

// ParseBus turns a bus stop's arrivals document into records, in feed order.
func ParseBus(raw []byte) ([]arrivals.Record, error) {
	elements, err := decodeArrivals(raw)
	if err != nil {
		return nil, err
	}

	records := make([]arrivals.Record, 0, len(elements))
	for _, el := range elements {
		route, err := strconv.Atoi(strings.TrimSpace(el.Route))
		if err != nil {
			if el.Route == "" {
				return nil, &ParseError{Field: "route", Err: errMissingAttribute}
			}
			return nil, &ParseError{Field: "route", Value: el.Route, Err: err}
		}
		status, err := required("status", el.Status)
		if err != nil {
			return nil, err
		}

		switch status {
		case statusCancelled:
			records = append(records, arrivals.Bus(route, arrivals.StatusCancelled, 0))
		case statusDelayed:
			records = append(records, arrivals.Bus(route, arrivals.StatusDelayed, 0))
		case statusEstimated:
			millis, err := parseMillis("estimated", el.Estimated)
			if err != nil {
				return nil, err
			}
			records = append(records, arrivals.Bus(route, arrivals.StatusOnTime, millis))
		default:
			millis, err := parseMillis("scheduled", el.Scheduled)
			if err != nil {
				return nil, err
			}
			records = append(records, arrivals.Bus(route, arrivals.StatusOnTime, millis))
		}
	}

	return records, nil
}

func parseMillis(field, value string) (int64, error) {
	if value == "" {
		return 0, &ParseError{Field: field, Err: errMissingAttribute}
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: value, Err: err}
	}
	return millis, nil
}

// decodeArrivals walks the document and collects every arrival element of
// the arrivals namespace, wherever it is nested.
func decodeArrivals(raw []byte) ([]arrivalElement, error) {
	d := xml.NewDecoder(bytes.NewReader(raw))
	d.CharsetReader = charset.NewReaderLabel

	var elements []arrivalElement
	sawRoot := false
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, &ParseError{Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Space != arrivalsNamespace {
			continue
		}

		switch start.Name.Local {
		case "arrival":
			var el arrivalElement
			if err := d.DecodeElement(&el, &start); err != nil {
				return nil, &ParseError{Err: err}
			}
			elements = append(elements, el)
		case "errorMessage":
			var message string
			if err := d.DecodeElement(&message, &start); err != nil {
				return nil, &ParseError{Err: err}
			}
			return nil, &ParseError{Err: fmt.Errorf("feed reported an error: %s", strings.TrimSpace(message))}
		}
	}

	if !sawRoot {
		return nil, &ParseError{Err: errors.New("document has no root element")}
	}
	return elements, nil
}

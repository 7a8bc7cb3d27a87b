package display

import (
	"fmt"
	"strings"

	"github.com/transit-times/transit-times/internal/arrivals"
)

// Escape sequences for the two train line labels. Text after a label goes
// back to bold white.
const (
	colorRed   = "\033[1;31m"
	colorBlue  = "\033[1;34m"
	colorReset = "\033[1;37m"
)

const (
	trainsHeader = "next trains:"
	busesHeader  = "next buses:"
	divider      = "------------------"

	markerCancelled = "(CANCELLED)"
	markerDelayed   = "(DELAYED)"
	markerArrived   = "(ARRIVED)"

	// labelWidth is the visible width the line label is padded to so that
	// every countdown starts in the same column.
	labelWidth = 10
)

// ErrorBanner replaces the whole frame while the latest poll cycle has failed.
var ErrorBanner = []string{
	"error encountered getting arrival data!",
	"check log for more info",
}

// FormatCountdown renders a number of seconds as h:mm:ss, leaving out the
// hours field when it is zero.
func FormatCountdown(seconds int64) string {
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h != 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Describe returns the status text for record at now, in Unix seconds.
// Cancelled and delayed arrivals never show a countdown.
func Describe(record arrivals.Record, now int64) string {
	switch record.Status {
	case arrivals.StatusCancelled:
		return markerCancelled
	case arrivals.StatusDelayed:
		return markerDelayed
	}

	arrival, ok := record.ArrivalSeconds()
	if !ok {
		return markerDelayed
	}
	remaining := arrival - now
	if remaining <= 0 {
		return markerArrived
	}
	return FormatCountdown(remaining)
}

// BuildFrame lays out one tick: trains first, a divider, then buses, each
// block in snapshot order. A failed poller state shows only ErrorBanner.
func BuildFrame(snapshot *arrivals.Snapshot, failed bool, now int64) []string {
	if failed {
		return append([]string(nil), ErrorBanner...)
	}

	records := snapshot.Records()
	lines := make([]string, 0, len(records)+3)

	lines = append(lines, trainsHeader)
	for _, record := range records {
		if record.Kind != arrivals.KindTrain {
			continue
		}
		lines = append(lines, trainLine(record, now))
	}

	lines = append(lines, divider, busesHeader)
	for _, record := range records {
		if record.Kind != arrivals.KindBus {
			continue
		}
		lines = append(lines, busLine(record, now))
	}

	return lines
}

func trainLine(record arrivals.Record, now int64) string {
	color := colorBlue
	if record.Color == arrivals.LineRed {
		color = colorRed
	}
	label := string(record.Color) + " line"
	padding := strings.Repeat(" ", max(labelWidth-len(label), 0))
	return fmt.Sprintf("%s%s%s line%s in %s",
		color, record.Color, colorReset, padding, Describe(record, now))
}

func busLine(record arrivals.Record, now int64) string {
	return fmt.Sprintf("%-*s in %s", labelWidth, "#"+record.Line(), Describe(record, now))
}

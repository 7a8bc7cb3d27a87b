package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/transit-times/transit-times/internal/arrivals"
)

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		seconds  int64
		expected string
	}{
		{1, "0:01"},
		{59, "0:59"},
		{60, "1:00"},
		{125, "2:05"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3700, "1:01:40"},
		{36061, "10:01:01"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCountdown(tt.seconds))
		})
	}
}

func TestDescribe(t *testing.T) {
	const now = 1000

	tests := []struct {
		name     string
		record   arrivals.Record
		expected string
	}{
		{"counts down to a future arrival", arrivals.Bus(72, arrivals.StatusOnTime, 1125000), "2:05"},
		{"shows hours for distant arrivals", arrivals.Bus(72, arrivals.StatusOnTime, 4700000), "1:01:40"},
		{"arrival at now has arrived", arrivals.Bus(72, arrivals.StatusOnTime, 1000000), markerArrived},
		{"past arrival has arrived", arrivals.Bus(72, arrivals.StatusOnTime, 500000), markerArrived},
		{"sub-second remainder truncates", arrivals.Bus(72, arrivals.StatusOnTime, 1000999), markerArrived},
		{"cancelled", arrivals.Train(arrivals.LineRed, arrivals.StatusCancelled, 0), markerCancelled},
		{"delayed", arrivals.Train(arrivals.LineBlue, arrivals.StatusDelayed, 0), markerDelayed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Describe(tt.record, now))
		})
	}
}

func TestBuildFrame(t *testing.T) {
	const now = 1000

	t.Run("trains above the divider and buses below", func(t *testing.T) {
		snapshot := arrivals.NewSnapshot([]arrivals.Record{
			arrivals.Bus(72, arrivals.StatusOnTime, 1125000),
			arrivals.Train(arrivals.LineRed, arrivals.StatusOnTime, 1125000),
			arrivals.Train(arrivals.LineBlue, arrivals.StatusCancelled, 0),
			arrivals.Bus(4, arrivals.StatusDelayed, 0),
		}, time.Unix(now, 0))

		lines := BuildFrame(snapshot, false, now)

		assert.Equal(t, []string{
			"next trains:",
			colorRed + "red" + colorReset + " line   in 2:05",
			colorBlue + "blue" + colorReset + " line  in (CANCELLED)",
			"------------------",
			"next buses:",
			"#72        in 2:05",
			"#4         in (DELAYED)",
		}, lines)
	})

	t.Run("countdowns line up", func(t *testing.T) {
		snapshot := arrivals.NewSnapshot([]arrivals.Record{
			arrivals.Train(arrivals.LineRed, arrivals.StatusOnTime, 1125000),
			arrivals.Train(arrivals.LineBlue, arrivals.StatusOnTime, 1125000),
			arrivals.Bus(72, arrivals.StatusOnTime, 1125000),
		}, time.Unix(now, 0))

		lines := BuildFrame(snapshot, false, now)

		for _, i := range []int{1, 2, 5} {
			assert.Equal(t, len("red line   in 2:05"), VisibleWidth(lines[i]), lines[i])
		}
	})

	t.Run("empty snapshot keeps the headers", func(t *testing.T) {
		lines := BuildFrame(arrivals.NewSnapshot(nil, time.Time{}), false, now)

		assert.Equal(t, []string{"next trains:", "------------------", "next buses:"}, lines)
	})

	t.Run("failure replaces the frame with the banner", func(t *testing.T) {
		snapshot := arrivals.NewSnapshot([]arrivals.Record{
			arrivals.Bus(72, arrivals.StatusOnTime, 1125000),
		}, time.Unix(now, 0))

		lines := BuildFrame(snapshot, true, now)

		assert.Equal(t, []string{
			"error encountered getting arrival data!",
			"check log for more info",
		}, lines)
	})

	t.Run("banner is not shared", func(t *testing.T) {
		lines := BuildFrame(nil, true, now)
		lines[0] = "changed"

		assert.Equal(t, "error encountered getting arrival data!", ErrorBanner[0])
	})
}

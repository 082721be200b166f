// Package trend formats demand trend snapshots for display.
package trend

import (
	"fmt"
	"time"

	"github.com/gridscope/gridscope/pkg/types"
)

// FormatHoursToPeak renders a fractional hour count as a compact duration:
// minutes under an hour, whole hours under a day, then days and hours.
func FormatHoursToPeak(hours float64) string {
	if hours < 1 {
		return fmt.Sprintf("%dm", int(hours*60))
	}
	if hours < 24 {
		return fmt.Sprintf("%dh", int(hours))
	}
	whole := int(hours)
	return fmt.Sprintf("%dd %dh", whole/24, whole%24)
}

// FormatPeakTime renders the next peak timestamp relative to now: "Today
// 17:00" or "Tomorrow 08:30" when the peak falls on those calendar days in
// now's location, otherwise a full date.
func FormatPeakTime(peak, now time.Time) string {
	peak = peak.In(now.Location())
	clock := peak.Format("15:04")

	if sameDay(peak, now) {
		return "Today " + clock
	}
	if sameDay(peak, now.AddDate(0, 0, 1)) {
		return "Tomorrow " + clock
	}
	return peak.Format("Jan 2, 15:04")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Arrow returns the ASCII arrow shown next to a trend direction.
func Arrow(d types.TrendDirection) string {
	switch d {
	case types.TrendRising:
		return "↑"
	case types.TrendFalling:
		return "↓"
	default:
		return "→"
	}
}

// Summary is the formatted companion to a DemandTrend, precomputed
// server-side so every frontend renders the same labels.
type Summary struct {
	HoursToPeakLabel string `json:"hours_to_peak_label"`
	NextPeakLabel    string `json:"next_peak_label"`
	Arrow            string `json:"arrow"`
}

// Summarize computes the display summary for a trend snapshot as of now.
func Summarize(t types.DemandTrend, now time.Time) Summary {
	return Summary{
		HoursToPeakLabel: FormatHoursToPeak(t.HoursToPeak),
		NextPeakLabel:    FormatPeakTime(t.NextPeakTime, now),
		Arrow:            Arrow(t.Direction),
	}
}

package model

import "fmt"

// Progress is a snapshot of one file transfer
type Progress struct {
	Percent    float64 // 0 to 100
	Downloaded int64
	Total      int64  // 0 when unknown
	Speed      string // human readable rate, e.g. "1.2 MB/s"
	ETASec     int    // -1 if unknown
}

// Fraction returns Percent scaled to 0.0-1.0 for progress bars
func (p Progress) Fraction() float64 {
	switch {
	case p.Percent <= 0:
		return 0
	case p.Percent >= 100:
		return 1
	}
	return p.Percent / 100
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (p Progress) GetETAString() string {
	if p.ETASec <= 0 {
		return "—"
	}
	return formatClock(p.ETASec)
}

// formatClock renders seconds as mm:ss, or hh:mm:ss from one hour up
func formatClock(total int) string {
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

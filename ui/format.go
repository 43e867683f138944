package ui

import (
	"fmt"
	"time"
)

// RelativeDate formats an upload time relative to now ("today", "3 days
// ago"). The zero time means the record had no usable timestamp.
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		weeks := days / 7
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := days / 30
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

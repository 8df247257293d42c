package component

import (
	"fmt"
	"time"
)

// FormatCountdown renders the time left until go-live. Days are only
// shown when at least one full day remains.
func FormatCountdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	// округляем вверх, чтобы 0 секунд показывалось только по завершении
	secs := int64((remaining + time.Second - 1) / time.Second)

	days := secs / 86400
	hours := secs % 86400 / 3600
	minutes := secs % 3600 / 60
	seconds := secs % 60

	if days > 0 {
		return fmt.Sprintf("%d days, %d hours, %d minutes, %d seconds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%d hours, %d minutes, %d seconds", hours, minutes, seconds)
}

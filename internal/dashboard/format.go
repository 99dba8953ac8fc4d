package dashboard

import (
	"fmt"
	"time"
)

// FormatElapsed renders a session duration as "3m 42s".
func FormatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

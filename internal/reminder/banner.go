package reminder

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintSummary writes a short human readable report of a sweep to w.
func PrintSummary(w io.Writer, sum Summary) {
	accent := color.New(color.FgHiCyan, color.Bold)
	label := color.New(color.FgHiBlack)
	val := color.New(color.FgHiGreen)
	bad := color.New(color.FgHiRed)

	_, _ = fmt.Fprintln(w)
	_, _ = accent.Fprintln(w, "  Appointment reminders")

	info := func(k string, v any, c *color.Color) {
		_, _ = label.Fprintf(w, "  %-10s", k)
		_, _ = c.Fprintln(w, v)
	}

	info("run", sum.RunID, val)
	info("date", sum.TargetDate, val)
	info("due", sum.Due, val)
	info("handled", sum.Handled, val)
	info("sent", sum.Sent, val)

	if sum.Failed > 0 {
		info("failed", sum.Failed, bad)
	}
	if sum.Deferred > 0 {
		info("deferred", sum.Deferred, bad)
	}

	_, _ = fmt.Fprintln(w)
}

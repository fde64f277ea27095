package fetch

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// BarWidth sizes the progress bar for a terminal of the given width: twenty
// columns are left for the label, within [10, 40].
func BarWidth(columns int) int {
	return max(10, min(40, columns-20))
}

// TerminalColumns returns the width of the terminal on stdout, or 80.
func TerminalColumns() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// RenderProgress draws one progress line. With a known total the filled part
// is proportional to current/total clamped to [0, 1] and the label is a
// percentage. Without a total the bar stays empty and the label counts KB.
func RenderProgress(current, total int64, width int) string {
	if width < 1 {
		width = 1
	}
	var filled int
	var label string
	if total > 0 {
		ratio := float64(current) / float64(total)
		ratio = max(0, min(1, ratio))
		filled = int(float64(width) * ratio)
		label = fmt.Sprintf("%5.1f%%", ratio*100)
	} else {
		label = fmt.Sprintf("%dKB", current/1024)
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "] " + label
}

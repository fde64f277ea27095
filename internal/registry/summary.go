package registry

import (
	"bufio"
	"bytes"
	"strings"
)

// Summary returns the first descriptive comment line of a unit source, for
// listings. Shebangs and #require:/#version: declarations are not summaries.
func Summary(src []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var text string
		switch {
		case strings.HasPrefix(line, "#!"):
			continue
		case strings.HasPrefix(line, "--"):
			text = strings.TrimPrefix(line, "--")
		case strings.HasPrefix(line, "#"):
			text = strings.TrimPrefix(line, "#")
		default:
			return ""
		}
		text = strings.TrimSpace(text)
		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, "#require:") || strings.HasPrefix(lower, "require:") ||
			strings.HasPrefix(lower, "#version:") || strings.HasPrefix(lower, "version:") {
			continue
		}
		if text != "" {
			return text
		}
	}
	return ""
}

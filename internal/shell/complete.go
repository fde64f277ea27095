package shell

import (
	"sort"
	"strings"
)

// Complete completes the first word of line from names. A single match is
// completed with a trailing space; several matches extend the word to their
// longest common prefix. Only the first word is completed, and only with the
// cursor at its end.
func Complete(line string, pos int, names []string) (string, int, bool) {
	head := line[:pos]
	if strings.ContainsAny(head, " \t") {
		return "", 0, false
	}

	var matches []string
	for _, name := range names {
		if strings.HasPrefix(name, head) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", 0, false
	}
	sort.Strings(matches)

	completed := matches[0] + " "
	if len(matches) > 1 {
		completed = commonPrefix(matches)
		if completed == head {
			return "", 0, false
		}
	}
	rest := strings.TrimLeft(line[pos:], " ")
	if rest != "" && strings.HasSuffix(completed, " ") {
		return completed + rest, len(completed), true
	}
	return completed + line[pos:], len(completed), true
}

func commonPrefix(words []string) string {
	prefix := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

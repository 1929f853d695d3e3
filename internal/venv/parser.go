package venv

import "strings"

// ParseLabel extracts the environment label from marker file content.
// The first line containing PromptKey wins; the label is the text between
// the first and second '=' on that line, trimmed. ok is false when no
// line carries the key.
func ParseLabel(content string) (label string, ok bool) {
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, PromptKey) {
			continue
		}
		parts := strings.Split(line, "=")
		return strings.TrimSpace(parts[1]), true
	}
	return "", false
}

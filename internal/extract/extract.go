// Package extract pulls a JSON object out of free-form completion text.
//
// Completions routinely wrap the object in markdown fences, surround it with prose, or
// produce slightly invalid JSON (trailing commas, single quotes). Extract and Parse are
// total: every failure is reported as absence, never as a panic or error.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Node is a decoded JSON object as produced by encoding/json.
type Node map[string]any

// fenceMarkers open or close a markdown code block. Longest first.
//
//nolint:gochecknoglobals // read-only table
var fenceMarkers = []string{"```json", "```JSON", "```"}

// Extract returns the substring between the first '{' and the last '}' after fence
// markers at line boundaries are stripped. It reports false when either brace is missing
// or they are out of order.
func Extract(raw string) (string, bool) {
	text := stripFences(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end < start {
		return "", false
	}

	return text[start : end+1], true
}

// stripFences removes fence markers that open or close a line. Backticks inside JSON
// string values are left alone.
func stripFences(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		changed := false

		if strings.HasPrefix(trimmed, "```") {
			for _, marker := range fenceMarkers {
				if strings.HasPrefix(trimmed, marker) {
					trimmed = trimmed[len(marker):]
					break
				}
			}
			changed = true
		}
		if strings.HasSuffix(trimmed, "```") {
			trimmed = strings.TrimSuffix(trimmed, "```")
			changed = true
		}

		if changed {
			lines[i] = trimmed
		}
	}
	return strings.Join(lines, "\n")
}

// Parse extracts and decodes the object in raw. A decode failure gets one repair attempt;
// anything that still does not decode to an object is reported as absent.
func Parse(raw string) (Node, bool) {
	text, ok := Extract(raw)
	if !ok {
		return nil, false
	}

	if node, decoded := decodeObject(text); decoded {
		return node, true
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, false
	}

	return decodeObject(repaired)
}

func decodeObject(text string) (Node, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return Node(obj), true
}

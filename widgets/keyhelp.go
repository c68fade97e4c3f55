package widgets

import (
	"fmt"
	"strings"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp formats key bindings as compact inline groups, one section
// per line.
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		var parts []string
		for _, k := range sec.Keys {
			parts = append(parts, fmt.Sprintf("%s:%s", k.Key, k.Desc))
		}
		line := strings.Join(parts, "  ")
		if sec.Title != "" {
			line = sec.Title + "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

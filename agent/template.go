package agent

import (
	"fmt"
	"regexp"
)

// templateSlot matches {slot_name} placeholders in prompt templates. Braces
// followed by non-identifier characters (JSON examples in the templates) are
// left untouched.
var templateSlot = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// RenderTemplate fills {slot} placeholders from vars. Missing slots render
// as "N/A" so a sparse input never breaks prompt generation.
func RenderTemplate(template string, vars map[string]any) string {
	return templateSlot.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[name]; ok {
			return fmt.Sprintf("%v", value)
		}
		return "N/A"
	})
}

package utils

import "strings"

// ExtractJSON strips markdown code fences and surrounding prose from a model
// reply so the remaining text can be handed to json.Unmarshal. It does not
// validate the payload; it only isolates the best JSON candidate.
func ExtractJSON(content string) string {
	s := strings.TrimSpace(content)

	// Prefer a fenced block when present.
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = strings.TrimSpace(rest[:end])
		} else {
			s = strings.TrimSpace(rest)
		}
	}

	// Trim leading prose up to the first JSON delimiter.
	objStart := strings.IndexAny(s, "{[")
	if objStart > 0 {
		s = s[objStart:]
	}

	// Trim trailing prose after the matching last delimiter.
	if len(s) > 0 {
		var closer string
		switch s[0] {
		case '{':
			closer = "}"
		case '[':
			closer = "]"
		}
		if closer != "" {
			if end := strings.LastIndex(s, closer); end >= 0 {
				s = s[:end+1]
			}
		}
	}

	return strings.TrimSpace(s)
}

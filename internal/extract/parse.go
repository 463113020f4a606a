package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// parseObject attempts a tolerant JSON parse of raw model output: first
// the whole string, then the first balanced {...} substring (models often
// wrap JSON in prose or code fences despite instructions).
func parseObject(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		return obj, nil
	}

	candidate, ok := firstBalancedObject(trimmed)
	if !ok {
		return nil, eris.New("no JSON object found in model output")
	}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, eris.Wrap(err, "parse extracted JSON object")
	}
	return obj, nil
}

// firstBalancedObject returns the first {...} substring with balanced
// braces, skipping brace characters inside JSON string literals.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

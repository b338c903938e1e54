package harvest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeMetadata decodes the body of a structured-data script block. It
// tolerates raw control characters inside strings and anything trailing
// the first JSON value. An empty block decodes to an empty document. When
// the block holds an array, the first object carrying a datePublished is
// used, falling back to the first object.
func decodeMetadata(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(escapeControlChars(raw)))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode structured data: %w", err)
	}

	switch doc := v.(type) {
	case map[string]any:
		return doc, nil
	case []any:
		var first map[string]any
		for _, elem := range doc {
			obj, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := obj["datePublished"]; ok {
				return obj, nil
			}
			if first == nil {
				first = obj
			}
		}
		if first != nil {
			return first, nil
		}
	}

	return nil, fmt.Errorf("structured data is not an object")
}

// escapeControlChars escapes raw control characters that appear inside
// JSON string literals, which pages often emit in long descriptions.
func escapeControlChars(s string) string {
	var (
		b        strings.Builder
		inString bool
		escaped  bool
	)
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString && c < 0x20:
			switch c {
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				fmt.Fprintf(&b, `\u%04x`, c)
			}
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Package normalize extracts a display string from the loosely-shaped JSON
// an outbound webhook returns. The endpoint has no schema contract, so the
// recognized shapes are tried in a fixed priority order; that order is part
// of the compatibility surface and must not change.
package normalize

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrUnrecognizedShape means no known response pattern matched.
	ErrUnrecognizedShape = errors.New("unrecognized webhook response shape")
	// ErrInvalidResponseText means a pattern matched but the extracted
	// value was not a string.
	ErrInvalidResponseText = errors.New("invalid response text")
)

// Partially-escaped payloads sometimes leak fragments of their own JSON
// envelope into the extracted text.
var (
	leadingArtifact  = regexp.MustCompile(`^\[?\{?"?output"?:?\s*"?`)
	trailingArtifact = regexp.MustCompile(`"?\}?\]?$`)
)

// Normalize extracts the reply text from a decoded webhook response body.
// Shapes are tried in order, first match wins:
//
//  1. non-empty array whose first element carries "output"
//  2. object carrying "output"
//  3. string, re-parsed as JSON and normalized recursively; plain text if
//     it does not parse
//  4. object carrying "message", "response", "text", or "data.output"
func Normalize(raw any) (string, error) {
	switch v := raw.(type) {
	case []any:
		if len(v) > 0 {
			if first, ok := v[0].(map[string]any); ok {
				if out, ok := first["output"]; ok {
					return cleanupValue(out)
				}
			}
		}
	case map[string]any:
		if out, ok := v["output"]; ok {
			return cleanupValue(out)
		}
		for _, key := range []string{"message", "response", "text"} {
			if val, ok := v[key]; ok {
				return cleanupValue(val)
			}
		}
		if data, ok := v["data"].(map[string]any); ok {
			if out, ok := data["output"]; ok {
				return cleanupValue(out)
			}
		}
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			return Normalize(parsed)
		}
		return cleanup(v), nil
	}
	return "", ErrUnrecognizedShape
}

// NormalizeBody decodes a raw response body and normalizes it. Bodies that
// are not valid JSON cannot be interpreted at all.
func NormalizeBody(body []byte) (string, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", ErrUnrecognizedShape
	}
	return Normalize(raw)
}

func cleanupValue(val any) (string, error) {
	text, ok := val.(string)
	if !ok {
		return "", ErrInvalidResponseText
	}
	return cleanup(text), nil
}

func cleanup(text string) string {
	// Literal \n sequences arrive when the webhook double-escapes its
	// payload; turn them into real line breaks before display.
	formatted := strings.TrimSpace(strings.ReplaceAll(text, `\n`, "\n"))
	formatted = leadingArtifact.ReplaceAllString(formatted, "")
	formatted = trailingArtifact.ReplaceAllString(formatted, "")
	return formatted
}

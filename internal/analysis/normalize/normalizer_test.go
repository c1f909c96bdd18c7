package normalize

import (
	"errors"
	"testing"
)

func TestNormalizeArrayOutput(t *testing.T) {
	raw := []any{map[string]any{"output": "Hello!"}}
	got, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if got != "Hello!" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestNormalizeObjectOutput(t *testing.T) {
	got, err := Normalize(map[string]any{"output": "hi"})
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if got != "hi" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestNormalizeJSONStringMatchesObject(t *testing.T) {
	fromString, err := Normalize(`{"output":"hi"}`)
	if err != nil {
		t.Fatalf("Normalize string err: %v", err)
	}
	fromObject, err := Normalize(map[string]any{"output": "hi"})
	if err != nil {
		t.Fatalf("Normalize object err: %v", err)
	}
	if fromString != fromObject {
		t.Fatalf("string payload diverged: %q vs %q", fromString, fromObject)
	}
}

func TestNormalizePlainTextString(t *testing.T) {
	got, err := Normalize("just some text")
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if got != "just some text" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestNormalizeFallbackKeys(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"message", map[string]any{"message": "m"}, "m"},
		{"response", map[string]any{"response": "r"}, "r"},
		{"text", map[string]any{"text": "t"}, "t"},
		{"data.output", map[string]any{"data": map[string]any{"output": "d"}}, "d"},
		{"message beats text", map[string]any{"text": "t", "message": "m"}, "m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			if err != nil {
				t.Fatalf("Normalize err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeUnrecognizedShapes(t *testing.T) {
	for _, raw := range []any{
		[]any{"not", "matching"},
		map[string]any{},
		[]any{},
		42.0,
		nil,
	} {
		if _, err := Normalize(raw); !errors.Is(err, ErrUnrecognizedShape) {
			t.Fatalf("expected ErrUnrecognizedShape for %#v, got %v", raw, err)
		}
	}
}

func TestNormalizeNonStringOutput(t *testing.T) {
	if _, err := Normalize(map[string]any{"output": 42.0}); !errors.Is(err, ErrInvalidResponseText) {
		t.Fatalf("expected ErrInvalidResponseText, got %v", err)
	}
}

func TestNormalizeEscapedNewlines(t *testing.T) {
	got, err := Normalize(map[string]any{"output": `line one\n\nline two`})
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if got != "line one\n\nline two" {
		t.Fatalf("escape sequences not converted: %q", got)
	}
}

func TestNormalizeStripsEnvelopeArtifacts(t *testing.T) {
	got, err := Normalize(map[string]any{"output": `[{"output":"partial"}]`})
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if got != "partial" {
		t.Fatalf("artifacts not stripped: %q", got)
	}
}

func TestNormalizeBody(t *testing.T) {
	got, err := NormalizeBody([]byte(`[{"output":"Hello!"}]`))
	if err != nil {
		t.Fatalf("NormalizeBody err: %v", err)
	}
	if got != "Hello!" {
		t.Fatalf("unexpected text: %q", got)
	}

	if _, err := NormalizeBody([]byte("not json at all {")); !errors.Is(err, ErrUnrecognizedShape) {
		t.Fatalf("expected ErrUnrecognizedShape for invalid JSON, got %v", err)
	}
}

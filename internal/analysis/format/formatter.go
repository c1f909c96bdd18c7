// Package format turns normalized reply text into a rendering-agnostic
// structure: tagged lines carrying inline spans. Consumers (the embeddable
// widget, the demo page) decide how each tag is drawn.
package format

import (
	"regexp"
	"strings"
)

// LineKind tags a physical line of reply text.
type LineKind string

const (
	LineBlank    LineKind = "blank"
	LineBullet   LineKind = "bullet"
	LineNumbered LineKind = "numbered"
	LinePlain    LineKind = "plain"
)

// SpanKind tags an inline run within a line.
type SpanKind string

const (
	SpanText SpanKind = "text"
	SpanBold SpanKind = "bold"
	SpanLink SpanKind = "link"
)

// Span is an inline run. Href is set only for link spans.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
	Href string   `json:"href,omitempty"`
}

// Line is one physical line of output.
type Line struct {
	Kind  LineKind `json:"kind"`
	Spans []Span   `json:"spans,omitempty"`
}

// Content is the formatted reply.
type Content struct {
	Lines []Line `json:"lines"`
}

var (
	bulletMarker = regexp.MustCompile(`^[•-]\s*`)
	numberedLine = regexp.MustCompile(`^\d+\.\s`)
	boldSpan     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	urlToken     = regexp.MustCompile(`(https?://[^\s]+|www\.[^\s]+|[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]*\.[a-zA-Z]{2,}(?:\.[a-zA-Z]{2,})?(?:/[^\s]*)?)`)
)

// bookingHost is the customer-facing alias shown in place of raw booking
// deep links.
const bookingHost = "booking.critter.pet"

// Format splits text on line breaks and tags each line and its inline runs.
// The transform is one-way and deterministic; it is not idempotent on its
// own rendered output.
func Format(text string) Content {
	rawLines := strings.Split(text, "\n")
	lines := make([]Line, 0, len(rawLines))

	for _, raw := range rawLines {
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
			lines = append(lines, Line{Kind: LineBlank})
		case strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "-"):
			content := bulletMarker.ReplaceAllString(trimmed, "")
			lines = append(lines, Line{Kind: LineBullet, Spans: inlineSpans(content)})
		case numberedLine.MatchString(trimmed):
			// Numbered lines keep their numeral so ordering survives.
			lines = append(lines, Line{Kind: LineNumbered, Spans: inlineSpans(raw)})
		default:
			lines = append(lines, Line{Kind: LinePlain, Spans: inlineSpans(raw)})
		}
	}

	return Content{Lines: lines}
}

// inlineSpans splits bold runs out first, then linkifies the remaining text.
// An unmatched ** stays literal text.
func inlineSpans(text string) []Span {
	var spans []Span
	last := 0
	for _, m := range boldSpan.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			spans = append(spans, linkify(text[last:m[0]])...)
		}
		spans = append(spans, Span{Kind: SpanBold, Text: text[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, linkify(text[last:])...)
	}
	return spans
}

// linkify scans for URL-like tokens and tags them as links. A token
// pointing at the critter.pet booking path is displayed under the friendly
// booking alias; the navigable target stays the original URL.
func linkify(text string) []Span {
	var spans []Span
	last := 0
	for _, m := range urlToken.FindAllStringIndex(text, -1) {
		if m[0] > last {
			spans = append(spans, Span{Kind: SpanText, Text: text[last:m[0]]})
		}

		token := text[m[0]:m[1]]
		display := token
		if strings.Contains(token, "critter.pet/booking") {
			display = bookingHost
		}
		href := token
		if !strings.HasPrefix(token, "http://") && !strings.HasPrefix(token, "https://") {
			href = "https://" + token
		}

		spans = append(spans, Span{Kind: SpanLink, Text: display, Href: href})
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Kind: SpanText, Text: text[last:]})
	}
	return spans
}

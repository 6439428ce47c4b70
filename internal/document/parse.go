package document

import "strings"

const maxFallbackDescription = 200

// ParseContent normalizes a raw entity payload into a ParsedContent. It
// never fails: payloads it cannot interpret produce an empty (but valid)
// result so indexing degrades gracefully.
func ParseContent(content any) ParsedContent {
	switch v := content.(type) {
	case string:
		return ParsedContent{
			Text:   v,
			Tokens: Tokenize(v),
		}
	case map[string]any:
		if isHTMLPayload(v) {
			return parseHTML(htmlBody(v))
		}
		return parseStructured(v)
	default:
		return ParsedContent{Tokens: []string{}}
	}
}

// Tokenize lower-cases text and splits it on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func isHTMLPayload(m map[string]any) bool {
	t, _ := m["type"].(string)
	return strings.EqualFold(strings.TrimSpace(t), "text/html")
}

func htmlBody(m map[string]any) string {
	for _, key := range []string{"content", "html", "body"} {
		if s, ok := m[key].(string); ok {
			return s
		}
	}
	return ""
}

// parseStructured handles structured payloads without an HTML tag: text and
// description fields are taken directly, entities and metadata are passed
// through unchanged.
func parseStructured(m map[string]any) ParsedContent {
	parsed := ParsedContent{Tokens: []string{}}
	if s, ok := m["text"].(string); ok {
		parsed.Text = s
	} else if s, ok := m["description"].(string); ok {
		parsed.Text = s
	}
	if s, ok := m["title"].(string); ok {
		parsed.Title = s
	}
	if s, ok := m["description"].(string); ok {
		parsed.Description = s
	}
	if parsed.Text != "" {
		parsed.Tokens = Tokenize(parsed.Text)
	}
	if entities, ok := m["entities"].(map[string]any); ok {
		parsed.Entities = entities
	}
	if extra, ok := m["metadata"].(map[string]any); ok {
		parsed.Extra = extra
	}
	return parsed
}

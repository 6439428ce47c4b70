package document

import (
	"regexp"
	"strings"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	titleRe  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

	// Meta description tags appear with the name/property attribute before
	// or after the content attribute, so both orders are matched.
	metaDescRe = regexp.MustCompile(
		`(?is)<meta[^>]+(?:name|property)\s*=\s*["'](?:og:description|description)["'][^>]*content\s*=\s*["']([^"']*)["']`)
	metaDescRevRe = regexp.MustCompile(
		`(?is)<meta[^>]+content\s*=\s*["']([^"']*)["'][^>]*(?:name|property)\s*=\s*["'](?:og:description|description)["']`)

	blankLineRe = regexp.MustCompile(`\n\s*\n`)
)

// parseHTML strips script and style blocks, removes the remaining markup,
// and extracts title and description per the platform's indexing rules.
func parseHTML(raw string) ParsedContent {
	parsed := ParsedContent{Tokens: []string{}}
	if raw == "" {
		return parsed
	}

	if m := titleRe.FindStringSubmatch(raw); m != nil {
		parsed.Title = collapseWhitespace(m[1])
	}
	parsed.Description = metaDescription(raw)

	stripped := scriptRe.ReplaceAllString(raw, " ")
	stripped = styleRe.ReplaceAllString(stripped, " ")
	stripped = tagRe.ReplaceAllString(stripped, " ")

	if parsed.Description == "" {
		parsed.Description = firstParagraph(stripped)
	}

	parsed.Text = collapseWhitespace(stripped)
	if parsed.Text != "" {
		parsed.Tokens = Tokenize(parsed.Text)
	}
	return parsed
}

func metaDescription(raw string) string {
	if m := metaDescRe.FindStringSubmatch(raw); m != nil {
		return collapseWhitespace(m[1])
	}
	if m := metaDescRevRe.FindStringSubmatch(raw); m != nil {
		return collapseWhitespace(m[1])
	}
	return ""
}

// firstParagraph returns the first blank-line-delimited paragraph of the
// stripped text, truncated to 200 characters.
func firstParagraph(stripped string) string {
	for _, para := range blankLineRe.Split(stripped, -1) {
		p := collapseWhitespace(para)
		if p == "" {
			continue
		}
		if r := []rune(p); len(r) > maxFallbackDescription {
			p = string(r[:maxFallbackDescription])
		}
		return p
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

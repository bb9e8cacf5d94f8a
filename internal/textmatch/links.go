package textmatch

import "regexp"

// affiliate url families, each capturing the slug after the domain
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ltk\.it/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`(?i)shopltk\.com/([a-zA-Z0-9_/-]+)`),
	regexp.MustCompile(`(?i)liketoknow\.it/([a-zA-Z0-9_/-]+)`), // legacy
}

// returns the de-duplicated affiliate link slugs found in text,
// in pattern order and then order of appearance
func ExtractLinks(text string) []string {
	links := []string{}
	if text == "" {
		return links
	}

	seen := make(map[string]struct{})

	for _, pattern := range linkPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			slug := match[1]
			if _, dup := seen[slug]; dup {
				continue
			}
			seen[slug] = struct{}{}
			links = append(links, slug)
		}
	}

	return links
}

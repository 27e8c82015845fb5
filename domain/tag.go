package domain

import (
	"sort"
	"strings"
)

// tagSeparators are replaced by spaces before tokenizing, so "#foo!" and
// "#foo." both yield the tag "#foo".
var tagSeparators = strings.NewReplacer(
	".", " ",
	",", " ",
	";", " ",
	"?", " ",
	"!", " ",
	":", " ",
	"'", " ",
	`"`, " ",
)

// ExtractTags returns the set of hashtags mentioned in text, lowercased and
// in lexical order. A tag is any whitespace-delimited token of at least two
// characters whose first character is '#'. The function is pure: identical
// text always yields identical output.
func ExtractTags(text string) []string {
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(tagSeparators.Replace(text)) {
		if len(token) < 2 || token[0] != '#' {
			continue
		}
		seen[strings.ToLower(token)] = struct{}{}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

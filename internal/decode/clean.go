package decode

import (
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// cleanup is applied in order; later rules assume earlier ones have run.
var cleanup = []rewrite{
	{regexp.MustCompile(` {2,}`), " "},
	{regexp.MustCompile(`!\[.*?\]\(.*?\)`), ""},
	{regexp.MustCompile(`\[(.*?)\]\(.*?\)`), "${1}"},
	{regexp.MustCompile(`-{3,}`), ""},
	{regexp.MustCompile(`-{2,}`), "-"},
	{regexp.MustCompile(`[*_]{1,2}(.*?)[*_]{1,2}`), "${1}"},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

// CleanText strips markdown and markup residue from a body.
func CleanText(s string) string {
	for _, rw := range cleanup {
		s = rw.re.ReplaceAllString(s, rw.repl)
	}
	return strings.TrimSpace(s)
}

package decode

import (
	"fmt"
	"mime"
	"regexp"
	"strings"

	"github.com/emersion/go-message/charset"
)

var (
	encodedWord = regexp.MustCompile(`=\?[^?\s]+\?[bBqQ]\?[^?\s]*\?=`)
	folding     = regexp.MustCompile(`\r?\n[ \t]+`)

	wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}
)

// Header decodes the RFC 2047 encoded words of a header value. Each decoded
// word and each run of plain text becomes one segment; segments are joined
// with single spaces. On failure the raw value is returned with the error.
func Header(raw string) (string, error) {
	raw = unfold(raw)
	if !strings.Contains(raw, "=?") {
		return raw, nil
	}

	var segments []string
	last := 0
	for _, loc := range encodedWord.FindAllStringIndex(raw, -1) {
		if plain := strings.TrimSpace(raw[last:loc[0]]); plain != "" {
			segments = append(segments, plain)
		}
		word, err := wordDecoder.Decode(raw[loc[0]:loc[1]])
		if err != nil {
			return raw, fmt.Errorf("decoding %q: %w", raw[loc[0]:loc[1]], err)
		}
		segments = append(segments, word)
		last = loc[1]
	}
	if plain := strings.TrimSpace(raw[last:]); plain != "" {
		segments = append(segments, plain)
	}

	return strings.Join(segments, " "), nil
}

func unfold(s string) string {
	return strings.TrimSpace(folding.ReplaceAllString(s, " "))
}

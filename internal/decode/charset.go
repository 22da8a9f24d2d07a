package decode

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message/charset"
	"golang.org/x/text/encoding/charmap"
)

// fallbackCharsets are tried, in order, after the declared charset.
var fallbackCharsets = []string{"utf-8", "latin-1", "iso-8859-1"}

// Text converts raw part bytes to UTF-8. It tries the declared charset, then
// UTF-8, Latin-1 and ISO-8859-1, and finally replaces invalid sequences.
// It never fails.
func Text(raw []byte, declared string) string {
	candidates := fallbackCharsets
	if declared = strings.TrimSpace(declared); declared != "" {
		candidates = append([]string{declared}, fallbackCharsets...)
	}

	for _, cs := range candidates {
		if s, ok := decodeAs(raw, cs); ok {
			return s
		}
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

// decodeAs reports ok only when the charset is known and the bytes decode
// cleanly in it.
func decodeAs(raw []byte, cs string) (string, bool) {
	switch strings.ToLower(strings.Trim(cs, `"' `)) {
	case "us-ascii", "ascii":
		for _, b := range raw {
			if b >= utf8.RuneSelf {
				return "", false
			}
		}
		return string(raw), true
	case "utf-8", "utf8":
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(out), true
	}

	r, err := charset.Reader(cs, bytes.NewReader(raw))
	if err != nil {
		return "", false
	}
	out, err := io.ReadAll(r)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

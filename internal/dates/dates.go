// Package dates turns the date strings found in mail headers and stored
// collections into instants. Parsing never fails loudly: a value that cannot
// be understood is reported as absent.
package dates

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoLayouts covers ISO-8601 renderings. Go's RFC 3339 parser accepts a
// trailing Z as UTC, so no rewriting of the suffix is needed.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// zonedLayouts are explicit formats that carry their own zone.
var zonedLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700 (MST)",
	"2006-01-02 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"Monday, 2 January 2006 15:04:05 -0700",
	time.UnixDate,
	time.RubyDate,
}

// zonelessLayouts are tried on input with no zone, or on the remainder after
// a zone token has been cut out. Results are UTC.
var zonelessLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006 15:04",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04",
	"Mon Jan _2 15:04:05 2006",
	"Mon Jan _2 15:04:05",
	"Monday, 2 January 2006 15:04:05",
	"Monday, January 2, 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 15:04:05",
	"Jan 2, 2006 3:04:05 PM",
	"01/02/2006 15:04:05",
	"01/02/2006 3:04 PM",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006/01/02 15:04:05",
}

var (
	// tzToken finds a numeric offset or an upper-case zone abbreviation,
	// optionally followed by a parenthesised comment.
	tzToken = regexp.MustCompile(`([+-]\d{4}|\b[A-Z]{3,4}\b)(\s*\([A-Za-z]{3,5}\))?`)

	headerDate      = regexp.MustCompile(`(?i)^Date:\s*(.+)$`)
	headerDelivery  = regexp.MustCompile(`(?i)^Delivery-Date:\s*(.+)$`)
	headerReceived  = regexp.MustCompile(`(?is)^Received:.*;\s*(.+)$`)
	repeatedSpaces  = regexp.MustCompile(`\s{2,}`)
	absentSentinels = map[string]bool{"": true, "none": true, "null": true, "nil": true}
)

// zoneOffsets resolves the abbreviations commonly found in mail headers.
// Anything else is read as UTC.
var zoneOffsets = map[string]int{
	"UT":   0,
	"UTC":  0,
	"GMT":  0,
	"Z":    0,
	"EST":  -5 * 3600,
	"EDT":  -4 * 3600,
	"CST":  -6 * 3600,
	"CDT":  -5 * 3600,
	"MST":  -7 * 3600,
	"MDT":  -6 * 3600,
	"PST":  -8 * 3600,
	"PDT":  -7 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"BST":  1 * 3600,
}

// Parse converts a free-form date string into an instant. The boolean is
// false when the value is empty, a null sentinel, or matches none of the
// known formats.
func Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if absentSentinels[strings.ToLower(s)] {
		return time.Time{}, false
	}
	s = unwrapHeader(s)

	if t, err := mail.ParseDate(s); err == nil {
		return normalizeZone(t), true
	}
	if t, ok := parseWith(isoLayouts, s); ok {
		return t, true
	}
	if t, ok := parseWith(zonedLayouts, s); ok {
		return normalizeZone(t), true
	}
	if t, ok := parseWithoutZone(s); ok {
		return t, true
	}
	return parseWith(zonelessLayouts, s)
}

// FromMessageID recovers a send time from identifiers shaped like
// <a.b.1704103200000.JavaMail.host>, where the third dot-separated segment is
// a Unix timestamp in seconds or milliseconds.
func FromMessageID(id string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(id), ".")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || ts <= 0 {
		return time.Time{}, false
	}
	if ts > 1e12 {
		ts /= 1000
	}
	return time.Unix(ts, 0).UTC(), true
}

// Resolve applies Parse to the header value and falls back to the message
// identifier. fromID reports whether the identifier supplied the instant.
func Resolve(header, messageID string) (t time.Time, ok bool, fromID bool) {
	if t, ok = Parse(header); ok {
		return t, true, false
	}
	if t, ok = FromMessageID(messageID); ok {
		return t, true, true
	}
	return time.Time{}, false, false
}

func parseWith(layouts []string, s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseWithoutZone cuts the first zone token out of s, parses what is left
// with the zoneless layouts and reapplies the offset.
func parseWithoutZone(s string) (time.Time, bool) {
	loc := tzToken.FindStringSubmatchIndex(s)
	if loc == nil {
		return time.Time{}, false
	}
	token := s[loc[2]:loc[3]]
	rest := strings.TrimSpace(repeatedSpaces.ReplaceAllString(s[:loc[0]]+" "+s[loc[1]:], " "))

	t, ok := parseWith(zonelessLayouts, rest)
	if !ok {
		if t, ok = parseWith(isoLayouts, rest); !ok {
			return time.Time{}, false
		}
	}

	offset := zoneOffset(token)
	// Wall clock stays as written; only the zone changes.
	zoned := time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.FixedZone(token, offset),
	)
	return zoned, true
}

func zoneOffset(token string) int {
	if len(token) == 5 && (token[0] == '+' || token[0] == '-') {
		hh, err1 := strconv.Atoi(token[1:3])
		mm, err2 := strconv.Atoi(token[3:5])
		if err1 != nil || err2 != nil {
			return 0
		}
		secs := hh*3600 + mm*60
		if token[0] == '-' {
			secs = -secs
		}
		return secs
	}
	return zoneOffsets[strings.ToUpper(token)]
}

// normalizeZone fixes results whose zone abbreviation Go did not recognise:
// time.Parse fabricates a zero-offset location for those.
func normalizeZone(t time.Time) time.Time {
	name, offset := t.Zone()
	if offset != 0 {
		return t
	}
	if known, ok := zoneOffsets[name]; ok && known != 0 {
		return time.Date(
			t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
			time.FixedZone(name, known),
		)
	}
	return t
}

// unwrapHeader extracts the date portion from a full header line such as
// "Date: ..." or a Received trace whose date follows the last semicolon.
func unwrapHeader(s string) string {
	for _, re := range []*regexp.Regexp{headerDate, headerDelivery} {
		if m := re.FindStringSubmatch(s); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if m := headerReceived.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

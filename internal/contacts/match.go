package contacts

import (
	"net/mail"
	"strings"
)

// NameMatch classifies how a display name relates to the directory.
type NameMatch struct {
	// Full is set when the whole display name is a known name.
	Full bool

	// First and Last are set independently when any token of the display
	// name is a known first or last name. Both stay false when Full is set.
	First bool
	Last  bool
}

// None reports whether nothing matched.
func (m NameMatch) None() bool {
	return !m.Full && !m.First && !m.Last
}

// NormalizeAddress validates a bare address and lower-cases it.
func NormalizeAddress(addr string) (string, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return "", false
	}
	at := strings.LastIndex(parsed.Address, "@")
	if at <= 0 || at == len(parsed.Address)-1 {
		return "", false
	}
	return strings.ToLower(parsed.Address), true
}

// ExtractAddress pulls the address out of "Display Name <addr>" or a bare
// address and normalises it.
func ExtractAddress(from string) (string, bool) {
	addr := from
	if i := strings.LastIndex(from, "<"); i >= 0 {
		addr = strings.TrimRight(from[i+1:], "> \t")
	}
	return NormalizeAddress(addr)
}

// DisplayName returns the lower-cased text before the first '<', without
// surrounding quotes.
func DisplayName(from string) string {
	name, _, _ := strings.Cut(from, "<")
	return strings.ToLower(strings.Trim(strings.TrimSpace(name), `"' `))
}

// IsContact reports whether the sender address of from is in dir. A nil
// directory or malformed header yields false.
func IsContact(from string, dir *Directory) bool {
	if dir == nil {
		return false
	}
	addr, ok := ExtractAddress(from)
	if !ok {
		return false
	}
	return dir.Emails.Has(addr)
}

// MatchName classifies a display name against the directory.
func (d *Directory) MatchName(displayName string) NameMatch {
	if d == nil {
		return NameMatch{}
	}
	name := strings.ToLower(strings.TrimSpace(displayName))
	if name == "" {
		return NameMatch{}
	}
	if d.Names.Has(name) {
		return NameMatch{Full: true}
	}

	var m NameMatch
	for _, tok := range strings.Fields(name) {
		if d.FirstNames.Has(tok) {
			m.First = true
		}
		if d.LastNames.Has(tok) {
			m.Last = true
		}
	}
	return m
}

// MatchOrganization reports whether any known organization appears in the
// lower-cased text.
func (d *Directory) MatchOrganization(text string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, org := range d.Organizations.Sorted() {
		if strings.Contains(text, org) {
			return org, true
		}
	}
	return "", false
}

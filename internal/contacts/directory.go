// Package contacts holds the known-correspondent directory and the rules
// for matching a From header against it.
package contacts

import (
	"sort"
	"strings"
	"time"
)

// Set is a set of lower-cased strings.
type Set map[string]struct{}

// NewSet builds a set from values, lower-casing and dropping empties.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v in its lower-cased, trimmed form.
func (s Set) Add(v string) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

// Has reports membership of v exactly as given.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Directory is the set of known correspondents. It is rebuilt wholesale
// from an import and never modified while scoring.
type Directory struct {
	// Emails holds validated, normalised addresses.
	Emails Set

	// Names holds first names, last names and "first last" full names.
	Names Set

	FirstNames    Set
	LastNames     Set
	Organizations Set

	LastUpdated time.Time
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		Emails:        NewSet(),
		Names:         NewSet(),
		FirstNames:    NewSet(),
		LastNames:     NewSet(),
		Organizations: NewSet(),
	}
}

// AddPerson records one contact. Invalid addresses are ignored.
func (d *Directory) AddPerson(first, last, org string, emails ...string) {
	for _, e := range emails {
		if addr, ok := NormalizeAddress(e); ok {
			d.Emails.Add(addr)
		}
	}

	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first != "" {
		d.FirstNames.Add(first)
		d.Names.Add(first)
	}
	if last != "" {
		d.LastNames.Add(last)
		d.Names.Add(last)
	}
	if first != "" && last != "" {
		d.Names.Add(first + " " + last)
	}
	d.Organizations.Add(org)
}

// Len returns the number of known addresses.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Emails)
}

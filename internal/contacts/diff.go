package contacts

// SetChange lists the members added to and removed from one set.
type SetChange struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Empty reports whether the set is unchanged.
func (c SetChange) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Changes describes how a re-import differs from the previous directory.
type Changes struct {
	Emails        SetChange `json:"emails"`
	Names         SetChange `json:"names"`
	FirstNames    SetChange `json:"first_names"`
	LastNames     SetChange `json:"last_names"`
	Organizations SetChange `json:"organizations"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return c.Emails.Empty() && c.Names.Empty() && c.FirstNames.Empty() &&
		c.LastNames.Empty() && c.Organizations.Empty()
}

// Diff compares two directories. A nil old directory counts as empty.
func Diff(old, updated *Directory) Changes {
	if old == nil {
		old = NewDirectory()
	}
	if updated == nil {
		updated = NewDirectory()
	}
	return Changes{
		Emails:        diffSet(old.Emails, updated.Emails),
		Names:         diffSet(old.Names, updated.Names),
		FirstNames:    diffSet(old.FirstNames, updated.FirstNames),
		LastNames:     diffSet(old.LastNames, updated.LastNames),
		Organizations: diffSet(old.Organizations, updated.Organizations),
	}
}

func diffSet(old, updated Set) SetChange {
	var c SetChange
	for _, v := range updated.Sorted() {
		if !old.Has(v) {
			c.Added = append(c.Added, v)
		}
	}
	for _, v := range old.Sorted() {
		if !updated.Has(v) {
			c.Removed = append(c.Removed, v)
		}
	}
	return c
}

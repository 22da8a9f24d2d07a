package analysis

import (
	"sort"
	"strings"

	"github.com/nhle/mailscore/internal/model"
)

// CollectionSize is the message count of one collection.
type CollectionSize struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// Unified aggregates several collections.
type Unified struct {
	Collections  []CollectionSize `json:"collections"`
	Total        int              `json:"total"`
	FromContacts int              `json:"from_contacts"`
	Replies      int              `json:"replies"`
	Attachments  int              `json:"attachments"`
	AverageScore float64          `json:"average_score"`

	// TopSenders ranks senders by display name.
	TopSenders []Count          `json:"top_senders"`
	DateRange  *model.DateRange `json:"date_range"`
}

// Unify combines the collections keyed by name. Nil collections are
// ignored. Collections are visited in name order.
func Unify(collections map[string]*model.Collection) Unified {
	names := make([]string, 0, len(collections))
	for name, c := range collections {
		if c != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var u Unified
	senders := newCounter()
	scoreSum := 0

	for _, name := range names {
		c := collections[name]
		u.Collections = append(u.Collections, CollectionSize{Name: name, Total: len(c.Emails)})

		for _, m := range c.Emails {
			u.Total++
			if m.IsFromContact {
				u.FromContacts++
			}
			if m.IsReply {
				u.Replies++
			}
			u.Attachments += len(m.Attachments)
			scoreSum += m.ImportanceScore

			if sender := senderName(m.From); sender != "" {
				senders.add(sender)
			}

			if !m.HasDate() {
				continue
			}
			if u.DateRange == nil {
				u.DateRange = &model.DateRange{Oldest: *m.Date, Newest: *m.Date}
				continue
			}
			if m.Date.Before(u.DateRange.Oldest) {
				u.DateRange.Oldest = *m.Date
			}
			if m.Date.After(u.DateRange.Newest) {
				u.DateRange.Newest = *m.Date
			}
		}
	}

	if u.Total > 0 {
		u.AverageScore = float64(scoreSum) / float64(u.Total)
	}
	u.TopSenders = senders.top(DefaultTop)
	return u
}

// senderName is the part of a From header before the address.
func senderName(from string) string {
	name, _, _ := strings.Cut(from, "<")
	return strings.TrimSpace(name)
}

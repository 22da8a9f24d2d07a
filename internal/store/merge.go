package store

import (
	"sort"
	"time"

	"github.com/nhle/mailscore/internal/model"
)

// recentSubjects is the number of subjects kept in a summary.
const recentSubjects = 10

// Merge appends the incoming messages whose Message-ID is not yet present
// and returns the result sorted newest first. Copies already present win;
// duplicates within incoming collapse to the first occurrence. Undated
// messages sort last and ties keep their relative order.
func Merge(existing, incoming []model.Message) []model.Message {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]model.Message, 0, len(existing)+len(incoming))

	for _, m := range existing {
		seen[m.MessageID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range incoming {
		if _, dup := seen[m.MessageID]; dup {
			continue
		}
		seen[m.MessageID] = struct{}{}
		merged = append(merged, m)
	}

	SortByDate(merged)
	return merged
}

// SortByDate orders msgs newest first in place, undated last.
func SortByDate(msgs []model.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i], msgs[j]
		switch {
		case !a.HasDate():
			return false
		case !b.HasDate():
			return true
		default:
			return a.Date.After(*b.Date)
		}
	})
}

// Apply merges incoming into existing and returns the new collection with a
// fresh summary, plus the number of messages added. existing may be nil.
func Apply(existing *model.Collection, incoming []model.Message, now time.Time) (*model.Collection, int) {
	var prior []model.Message
	if existing != nil {
		prior = existing.Emails
	}

	merged := Merge(prior, incoming)
	return &model.Collection{
		Summary:     Summarize(merged),
		Emails:      merged,
		LastUpdated: now.UTC(),
	}, len(merged) - len(prior)
}

// Summarize derives the persisted summary of msgs, which must already be
// sorted newest first.
func Summarize(msgs []model.Message) model.Summary {
	sum := model.Summary{
		TotalEmails: len(msgs),
		Senders:     make(map[string]int),
		Subjects:    []string{},
	}

	var oldest, newest time.Time
	for _, m := range msgs {
		if m.IsFromContact {
			sum.FromContacts++
		}
		if m.IsReply {
			sum.Replies++
		}
		if len(m.Attachments) > 0 {
			sum.WithAttachments++
			sum.TotalAttachments += len(m.Attachments)
		}

		switch {
		case m.ImportanceScore > 5:
			sum.ImportanceScores.High++
		case m.ImportanceScore >= 0:
			sum.ImportanceScores.Medium++
		default:
			sum.ImportanceScores.Low++
		}

		if m.From != "" {
			sum.Senders[m.From]++
		}

		if len(sum.Subjects) < recentSubjects {
			sum.Subjects = append(sum.Subjects, m.Subject)
		}

		if m.HasDate() {
			if oldest.IsZero() || m.Date.Before(oldest) {
				oldest = *m.Date
			}
			if newest.IsZero() || m.Date.After(newest) {
				newest = *m.Date
			}
		}
	}

	if !oldest.IsZero() {
		sum.DateRange = &model.DateRange{Oldest: oldest, Newest: newest}
	}
	return sum
}

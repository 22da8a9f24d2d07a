package model

import (
	"encoding/json"
	"time"

	"github.com/nhle/mailscore/internal/dates"
)

// ImportanceTiers counts messages per score band of a collection summary.
type ImportanceTiers struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// DateRange spans the oldest and newest dated messages of a collection.
type DateRange struct {
	Oldest time.Time `json:"oldest"`
	Newest time.Time `json:"newest"`
}

// Summary holds the aggregate statistics persisted next to a collection.
// It is always recomputed from the full message list.
type Summary struct {
	TotalEmails      int             `json:"total_emails"`
	FromContacts     int             `json:"from_contacts"`
	Replies          int             `json:"replies"`
	WithAttachments  int             `json:"with_attachments"`
	TotalAttachments int             `json:"total_attachments"`
	ImportanceScores ImportanceTiers `json:"importance_scores"`
	Senders          map[string]int  `json:"senders"`

	// Subjects lists the subjects of the most recent messages, newest first.
	Subjects []string `json:"subjects"`

	// DateRange is nil when no message has a resolvable date.
	DateRange *DateRange `json:"date_range"`
}

// UnmarshalJSON reads a stored summary. A date range whose bounds cannot
// both be parsed is dropped.
func (s *Summary) UnmarshalJSON(data []byte) error {
	type plain Summary
	var raw struct {
		plain
		DateRange *struct {
			Oldest string `json:"oldest"`
			Newest string `json:"newest"`
		} `json:"date_range"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Summary(raw.plain)
	s.DateRange = nil
	if raw.DateRange != nil {
		oldest, okOld := dates.Parse(raw.DateRange.Oldest)
		newest, okNew := dates.Parse(raw.DateRange.Newest)
		if okOld && okNew {
			s.DateRange = &DateRange{Oldest: oldest, Newest: newest}
		}
	}
	return nil
}

// Collection is the persisted, deduplicated message list of one mail folder.
type Collection struct {
	Summary     Summary   `json:"summary"`
	Emails      []Message `json:"emails"`
	LastUpdated time.Time `json:"last_updated"`
}

// UnmarshalJSON reads a stored collection. LastUpdated accepts any format
// dates.Parse understands, including zone-less ISO timestamps, and is left
// zero when it cannot be parsed.
func (c *Collection) UnmarshalJSON(data []byte) error {
	type plain Collection
	var raw struct {
		plain
		LastUpdated *string `json:"last_updated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Collection(raw.plain)
	c.LastUpdated = time.Time{}
	if raw.LastUpdated != nil {
		if t, ok := dates.Parse(*raw.LastUpdated); ok {
			c.LastUpdated = t
		}
	}
	return nil
}

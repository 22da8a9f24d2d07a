package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nhle/mailscore/internal/dates"
)

// Attachment describes a non-inline application part of a message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int    `json:"size_bytes"`
}

// References is the ordered list of message identifiers from the
// References header, oldest ancestor first.
type References []string

// UnmarshalJSON accepts either a JSON array or the legacy whitespace
// delimited string form.
func (r *References) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*r = list
		return nil
	}

	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*r = nil
		return nil
	}
	*r = strings.Fields(*raw)
	return nil
}

// Message is a single email reduced to the fields the scorer and the
// thread analysis need.
type Message struct {
	// Subject is the decoded subject line.
	Subject string `json:"subject"`

	// From is the decoded From header, display name and address.
	From string `json:"from"`

	// To is the decoded To header.
	To string `json:"to"`

	// Date is the resolved send time, nil when no source could supply one.
	Date *time.Time `json:"date"`

	// MessageID is the opaque Message-ID header value. Empty when missing.
	MessageID string `json:"message_id"`

	// InReplyTo is the Message-ID of the direct parent, empty when absent.
	InReplyTo string `json:"in_reply_to"`

	// References lists ancestor identifiers, oldest first.
	References References `json:"references"`

	// IsReply is true when InReplyTo or References is set.
	IsReply bool `json:"is_reply"`

	// IsFromContact is true when the sender address is in the directory.
	IsFromContact bool `json:"is_from_contact"`

	// Body is the cleaned plain-text rendering of the message content.
	Body string `json:"body"`

	// Attachments lists application/* parts that declare a filename.
	Attachments []Attachment `json:"attachments"`

	// ImportanceScore is the heuristic score assigned by the scorer.
	ImportanceScore int `json:"importance_score"`
}

// messageJSON mirrors Message with a raw date so stored collections written
// in any date format can be read back.
type messageJSON struct {
	Subject         string       `json:"subject"`
	From            string       `json:"from"`
	To              string       `json:"to"`
	Date            *string      `json:"date"`
	MessageID       string       `json:"message_id"`
	InReplyTo       *string      `json:"in_reply_to"`
	References      References   `json:"references"`
	IsReply         bool         `json:"is_reply"`
	IsFromContact   bool         `json:"is_from_contact"`
	Body            string       `json:"body"`
	Attachments     []Attachment `json:"attachments"`
	ImportanceScore int          `json:"importance_score"`
}

// UnmarshalJSON reads a stored message. A date that cannot be parsed is
// treated as absent rather than failing the whole collection.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{
		Subject:         raw.Subject,
		From:            raw.From,
		To:              raw.To,
		MessageID:       raw.MessageID,
		References:      raw.References,
		IsReply:         raw.IsReply,
		IsFromContact:   raw.IsFromContact,
		Body:            raw.Body,
		Attachments:     raw.Attachments,
		ImportanceScore: raw.ImportanceScore,
	}
	if raw.InReplyTo != nil {
		m.InReplyTo = *raw.InReplyTo
	}
	if raw.Date != nil {
		if t, ok := dates.Parse(*raw.Date); ok {
			m.Date = &t
		}
	}
	return nil
}

// ThreadRef returns the identifier this message answers: InReplyTo when set,
// otherwise the first reference. Empty for messages that start a thread.
func (m Message) ThreadRef() string {
	if m.InReplyTo != "" {
		return m.InReplyTo
	}
	if len(m.References) > 0 {
		return m.References[0]
	}
	return ""
}

// HasDate reports whether the message carries a resolved send time.
func (m Message) HasDate() bool {
	return m.Date != nil && !m.Date.IsZero()
}

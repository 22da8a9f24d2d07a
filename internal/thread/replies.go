package thread

import (
	"time"

	"github.com/nhle/mailscore/internal/model"
)

// ReplyClass is the reply direction of a message.
type ReplyClass string

const (
	ClassReply        ReplyClass = "reply"
	ClassRepliedTo    ReplyClass = "replied_to"
	ClassNotRepliedTo ReplyClass = "not_replied_to"
)

// ReplyStats counts messages per ReplyClass.
type ReplyStats struct {
	Replies      int `json:"replies"`
	RepliedTo    int `json:"replied_to"`
	NotRepliedTo int `json:"not_replied_to"`
}

// ClassifyReplies returns the class of each message, in input order.
// Messages with reply references are always replies. Others are replied_to
// when some message names their Message-ID in In-Reply-To or References.
// A message without a Message-ID cannot be referenced.
func ClassifyReplies(msgs []model.Message) []ReplyClass {
	referenced := make(map[string]bool)
	for _, m := range msgs {
		if m.InReplyTo != "" {
			referenced[m.InReplyTo] = true
		}
		for _, ref := range m.References {
			referenced[ref] = true
		}
	}

	classes := make([]ReplyClass, len(msgs))
	for i, m := range msgs {
		switch {
		case IsReply(m):
			classes[i] = ClassReply
		case m.MessageID != "" && referenced[m.MessageID]:
			classes[i] = ClassRepliedTo
		default:
			classes[i] = ClassNotRepliedTo
		}
	}
	return classes
}

// CountReplies tallies ClassifyReplies.
func CountReplies(msgs []model.Message) ReplyStats {
	var st ReplyStats
	for _, c := range ClassifyReplies(msgs) {
		switch c {
		case ClassReply:
			st.Replies++
		case ClassRepliedTo:
			st.RepliedTo++
		default:
			st.NotRepliedTo++
		}
	}
	return st
}

// Latencies returns the time between each reply and the message it
// answers. The original is the first message whose Message-ID equals the
// reply's thread reference. Pairs missing a date, and non-positive deltas,
// are skipped.
func Latencies(msgs []model.Message) []time.Duration {
	byID := make(map[string]int, len(msgs))
	for i, m := range msgs {
		if m.MessageID == "" {
			continue
		}
		if _, dup := byID[m.MessageID]; !dup {
			byID[m.MessageID] = i
		}
	}

	var out []time.Duration
	for _, m := range msgs {
		ref := m.ThreadRef()
		if ref == "" || !m.HasDate() {
			continue
		}
		i, ok := byID[ref]
		if !ok || !msgs[i].HasDate() {
			continue
		}
		if d := m.Date.Sub(*msgs[i].Date); d > 0 {
			out = append(out, d)
		}
	}
	return out
}

// LatencyStats summarises latency samples.
type LatencyStats struct {
	Count int           `json:"count"`
	Mean  time.Duration `json:"mean"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// SummarizeLatencies computes count, mean, min and max. The zero value is
// returned for no samples.
func SummarizeLatencies(samples []time.Duration) LatencyStats {
	if len(samples) == 0 {
		return LatencyStats{}
	}
	st := LatencyStats{Count: len(samples), Min: samples[0], Max: samples[0]}
	var total time.Duration
	for _, d := range samples {
		total += d
		if d < st.Min {
			st.Min = d
		}
		if d > st.Max {
			st.Max = d
		}
	}
	st.Mean = total / time.Duration(len(samples))
	return st
}

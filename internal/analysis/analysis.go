// Package analysis computes reporting statistics over a message
// collection. Nothing here changes the messages.
package analysis

import (
	"regexp"
	"strings"

	"github.com/nhle/mailscore/internal/contacts"
	"github.com/nhle/mailscore/internal/model"
	"github.com/nhle/mailscore/internal/thread"
)

// DefaultTop is the length of ranked lists when Options.Top is zero.
const DefaultTop = 10

// Category thresholds: high is 5 and up, low is below 0.
const (
	highImportance = 5
	lowImportance  = 0
)

var (
	domainPattern = regexp.MustCompile(`@([\w.-]+)`)
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// newsletterMarkers flag a subject as a newsletter.
var newsletterMarkers = []string{
	"newsletter", "digest", "weekly", "monthly", "daily", "subscription",
	"subscribe", "unsubscribe", "opt-out", "opt out",
}

// Options configures Analyze.
type Options struct {
	// Directory decides contact membership. When nil the stored
	// is_from_contact flag is used.
	Directory *contacts.Directory

	// Blacklist terms are counted in subject and body.
	Blacklist []string

	// Top bounds every ranked list.
	Top int
}

// Categories splits messages by importance score.
type Categories struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ThreadStats describes thread grouping.
type ThreadStats struct {
	Count            int         `json:"count"`
	SizeDistribution map[int]int `json:"size_distribution"`
	ReplyFrequency   map[int]int `json:"reply_frequency"`
}

// ContactStats counts messages by sender membership.
type ContactStats struct {
	FromContacts    int `json:"from_contacts"`
	FromNonContacts int `json:"from_non_contacts"`
}

// Report holds everything Analyze computes.
type Report struct {
	Total int `json:"total"`

	TopSenders  []Count `json:"top_senders"`
	TopDomains  []Count `json:"top_domains"`
	TopSubjects []Count `json:"top_subjects"`
	TopWords    []Count `json:"top_words"`
	Newsletters []Count `json:"newsletters"`

	ScoreDistribution map[int]int `json:"score_distribution"`
	Categories        Categories  `json:"categories"`
	AverageScore      float64     `json:"average_score"`

	// Hours counts dated messages by hour of day in their own zone.
	Hours       [24]int `json:"hours"`
	Dated       int     `json:"dated"`
	BusiestHour int     `json:"busiest_hour"`

	// Attachments maps attachment count to number of messages.
	Attachments map[int]int `json:"attachments"`

	Replies  thread.ReplyStats   `json:"replies"`
	Threads  ThreadStats         `json:"threads"`
	Latency  thread.LatencyStats `json:"latency"`
	Contacts ContactStats        `json:"contacts"`

	BlacklistHits []Count `json:"blacklist_hits"`
}

// Analyze computes the report of msgs.
func Analyze(msgs []model.Message, opts Options) Report {
	top := opts.Top
	if top == 0 {
		top = DefaultTop
	}

	r := Report{
		Total:             len(msgs),
		ScoreDistribution: make(map[int]int),
		Attachments:       make(map[int]int),
		BusiestHour:       -1,
	}

	senders, domains := newCounter(), newCounter()
	subjects, words, newsletters := newCounter(), newCounter(), newCounter()
	blacklist := newCounter()
	scoreSum := 0

	for _, m := range msgs {
		if m.From != "" {
			senders.add(m.From)
			if match := domainPattern.FindStringSubmatch(m.From); match != nil {
				domains.add(match[1])
			}
		}

		if m.Subject != "" {
			subjects.add(m.Subject)
			lower := strings.ToLower(m.Subject)
			for _, w := range wordPattern.FindAllString(lower, -1) {
				words.add(w)
			}
			if isNewsletter(lower) {
				newsletters.add(m.Subject)
			}
		}

		r.ScoreDistribution[m.ImportanceScore]++
		scoreSum += m.ImportanceScore
		switch {
		case m.ImportanceScore >= highImportance:
			r.Categories.High++
		case m.ImportanceScore >= lowImportance:
			r.Categories.Medium++
		default:
			r.Categories.Low++
		}

		if m.HasDate() {
			r.Hours[m.Date.Hour()]++
			r.Dated++
		}

		r.Attachments[len(m.Attachments)]++

		if fromContact(m, opts.Directory) {
			r.Contacts.FromContacts++
		} else {
			r.Contacts.FromNonContacts++
		}

		text := strings.ToLower(m.Subject + " " + m.Body)
		for _, term := range opts.Blacklist {
			if term != "" && strings.Contains(text, term) {
				blacklist.add(term)
			}
		}
	}

	r.TopSenders = senders.top(top)
	r.TopDomains = domains.top(top)
	r.TopSubjects = subjects.top(top)
	r.TopWords = words.top(top)
	r.Newsletters = newsletters.top(top)
	r.BlacklistHits = blacklist.top(top)

	if len(msgs) > 0 {
		r.AverageScore = float64(scoreSum) / float64(len(msgs))
	}
	if r.Dated > 0 {
		r.BusiestHour = 0
		for h, n := range r.Hours {
			if n > r.Hours[r.BusiestHour] {
				r.BusiestHour = h
			}
		}
	}

	ix := thread.Resolve(msgs)
	r.Threads = ThreadStats{
		Count:            ix.Len(),
		SizeDistribution: ix.SizeDistribution(),
		ReplyFrequency:   ix.ReplyFrequency(),
	}
	r.Replies = thread.CountReplies(msgs)
	r.Latency = thread.SummarizeLatencies(thread.Latencies(msgs))

	return r
}

func isNewsletter(lowerSubject string) bool {
	for _, marker := range newsletterMarkers {
		if strings.Contains(lowerSubject, marker) {
			return true
		}
	}
	return false
}

func fromContact(m model.Message, dir *contacts.Directory) bool {
	if dir == nil {
		return m.IsFromContact
	}
	return contacts.IsContact(m.From, dir)
}

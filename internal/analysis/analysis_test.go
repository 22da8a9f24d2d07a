package analysis

import (
	"reflect"
	"testing"
	"time"

	"github.com/nhle/mailscore/internal/contacts"
	"github.com/nhle/mailscore/internal/model"
	"github.com/nhle/mailscore/tests/testutil"
)

func sampleMessages() []model.Message {
	m1 := testutil.Message("1", 10)
	m1.Subject = "Weekly Newsletter"
	m1.From = "News <news@letters.example>"
	m1.ImportanceScore = -1
	m1.Body = "buy crypto now"

	m2 := testutil.Message("2", 11)
	m2.Subject = "Re: Weekly Newsletter"
	m2.From = "John Smith <john@example.com>"
	m2.InReplyTo = "1"
	m2.IsReply = true
	m2.ImportanceScore = 6
	m2.Attachments = []model.Attachment{{Filename: "a.pdf"}}

	m3 := testutil.Message("3", 34)
	m3.Subject = "Lunch"
	m3.From = "John Smith <john@example.com>"
	m3.ImportanceScore = 1
	m3.IsFromContact = true

	undated := testutil.Message("4", -1)
	undated.Subject = "Lunch"
	undated.From = ""

	return []model.Message{m1, m2, m3, undated}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	dir := contacts.NewDirectory()
	dir.AddPerson("John", "Smith", "", "john@example.com")

	r := Analyze(sampleMessages(), Options{Directory: dir, Blacklist: []string{"crypto", "casino"}})

	if r.Total != 4 {
		t.Errorf("Total = %d", r.Total)
	}
	if want := []Count{{"John Smith <john@example.com>", 2}, {"News <news@letters.example>", 1}}; !reflect.DeepEqual(r.TopSenders, want) {
		t.Errorf("TopSenders = %v, want %v", r.TopSenders, want)
	}
	if want := []Count{{"example.com", 2}, {"letters.example", 1}}; !reflect.DeepEqual(r.TopDomains, want) {
		t.Errorf("TopDomains = %v, want %v", r.TopDomains, want)
	}
	if r.TopSubjects[0] != (Count{"Lunch", 2}) {
		t.Errorf("TopSubjects = %v", r.TopSubjects)
	}
	if r.TopWords[0] != (Count{"weekly", 2}) || r.TopWords[1] != (Count{"newsletter", 2}) {
		t.Errorf("TopWords = %v", r.TopWords)
	}
	if len(r.Newsletters) != 2 {
		t.Errorf("Newsletters = %v", r.Newsletters)
	}

	if r.Categories != (Categories{High: 1, Medium: 2, Low: 1}) {
		t.Errorf("Categories = %+v", r.Categories)
	}
	if r.AverageScore != 1.5 {
		t.Errorf("AverageScore = %v, want 1.5", r.AverageScore)
	}
	if r.ScoreDistribution[0] != 1 || r.ScoreDistribution[6] != 1 {
		t.Errorf("ScoreDistribution = %v", r.ScoreDistribution)
	}

	if r.Dated != 3 || r.Hours[10] != 2 || r.Hours[11] != 1 || r.BusiestHour != 10 {
		t.Errorf("hours = %v dated %d busiest %d", r.Hours, r.Dated, r.BusiestHour)
	}
	if r.Attachments[0] != 3 || r.Attachments[1] != 1 {
		t.Errorf("Attachments = %v", r.Attachments)
	}

	if r.Replies.Replies != 1 || r.Replies.RepliedTo != 1 || r.Replies.NotRepliedTo != 2 {
		t.Errorf("Replies = %+v", r.Replies)
	}
	if r.Threads.Count != 3 || r.Threads.SizeDistribution[2] != 1 || r.Threads.ReplyFrequency[1] != 1 {
		t.Errorf("Threads = %+v", r.Threads)
	}
	if r.Latency.Count != 1 || r.Latency.Mean != time.Hour {
		t.Errorf("Latency = %+v", r.Latency)
	}

	if r.Contacts != (ContactStats{FromContacts: 2, FromNonContacts: 2}) {
		t.Errorf("Contacts = %+v", r.Contacts)
	}
	if want := []Count{{"crypto", 1}}; !reflect.DeepEqual(r.BlacklistHits, want) {
		t.Errorf("BlacklistHits = %v", r.BlacklistHits)
	}
}

func TestAnalyzeWithoutDirectoryUsesFlag(t *testing.T) {
	t.Parallel()

	r := Analyze(sampleMessages(), Options{})
	if r.Contacts.FromContacts != 1 {
		t.Errorf("FromContacts = %d, want 1", r.Contacts.FromContacts)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	t.Parallel()

	r := Analyze(nil, Options{})
	if r.Total != 0 || r.AverageScore != 0 || r.BusiestHour != -1 || r.Threads.Count != 0 {
		t.Errorf("report = %+v", r)
	}
}

func TestTopBreaksTiesByFirstSeen(t *testing.T) {
	t.Parallel()

	c := newCounter()
	for _, k := range []string{"b", "a", "c", "a", "b"} {
		c.add(k)
	}
	if want := []Count{{"b", 2}, {"a", 2}}; !reflect.DeepEqual(c.top(2), want) {
		t.Errorf("top(2) = %v, want %v", c.top(2), want)
	}
	if got := c.top(-1); len(got) != 3 {
		t.Errorf("top(-1) = %v", got)
	}
}

func TestUnify(t *testing.T) {
	t.Parallel()

	msgs := sampleMessages()
	u := Unify(map[string]*model.Collection{
		"inbox":   {Emails: msgs[:2]},
		"archive": {Emails: msgs[2:]},
		"empty":   nil,
	})

	if want := []CollectionSize{{"archive", 2}, {"inbox", 2}}; !reflect.DeepEqual(u.Collections, want) {
		t.Errorf("Collections = %v", u.Collections)
	}
	if u.Total != 4 || u.FromContacts != 1 || u.Replies != 1 || u.Attachments != 1 {
		t.Errorf("totals = %+v", u)
	}
	if u.AverageScore != 1.5 {
		t.Errorf("AverageScore = %v", u.AverageScore)
	}
	if u.TopSenders[0] != (Count{"John Smith", 2}) {
		t.Errorf("TopSenders = %v", u.TopSenders)
	}
	if u.DateRange == nil || !u.DateRange.Oldest.Equal(*msgs[0].Date) || !u.DateRange.Newest.Equal(*msgs[2].Date) {
		t.Errorf("DateRange = %+v", u.DateRange)
	}
}

package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/mailscore/internal/contacts"
	"github.com/nhle/mailscore/internal/decode"
	"github.com/nhle/mailscore/internal/model"
	"github.com/nhle/mailscore/internal/scoring"
	"github.com/nhle/mailscore/internal/source"
	"github.com/nhle/mailscore/internal/store"
	"github.com/nhle/mailscore/internal/thread"
)

func crlf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

var (
	rawM1 = crlf(
		"Message-ID: 1",
		"Date: Mon, 1 Jan 2024 10:00:00 +0000",
		"From: News <news@example.com>",
		"To: me@example.com",
		"Subject: Weekly Newsletter",
		"",
		"This week in review.",
	)
	rawM2 = crlf(
		"Message-ID: 2",
		"In-Reply-To: 1",
		"Date: Mon, 1 Jan 2024 11:00:00 +0000",
		"From: John Smith <John@Example.com>",
		"To: me@example.com",
		"Subject: Re: Weekly Newsletter",
		"",
		"Thanks for the invoice.",
	)
)

func testConfig(t *testing.T) *scoring.Config {
	t.Helper()
	cfg, err := scoring.ParseConfig([]byte(`
financial_documents:
  terms: [invoice]
  score: 5
contact_bonus:
  from_contact: 2
reply_bonus:
  is_reply: 1
`))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func testProcessor(t *testing.T, opts ...decode.Option) *Processor {
	t.Helper()
	dir := contacts.NewDirectory()
	dir.AddPerson("John", "Smith", "", "john@example.com")
	return New(Config{Directory: dir, Scoring: testConfig(t), DecodeOptions: opts}, zerolog.Nop())
}

func TestEndToEndReplyThread(t *testing.T) {
	t.Parallel()

	p := testProcessor(t)
	batch := p.ProcessBatch([]source.RawMessage{
		{Folder: "INBOX", UID: 1, Raw: rawM1},
		{Folder: "INBOX", UID: 2, Raw: rawM2},
	})
	if len(batch.Drops) != 0 {
		t.Fatalf("drops = %+v", batch.Drops)
	}

	c, added := store.Apply(nil, batch.Messages, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if added != 2 || len(c.Emails) != 2 {
		t.Fatalf("merged %d messages, added %d; want 2, 2", len(c.Emails), added)
	}

	classes := thread.ClassifyReplies(c.Emails)
	for i, m := range c.Emails {
		want := thread.ClassRepliedTo
		if m.MessageID == "2" {
			want = thread.ClassReply
		}
		if classes[i] != want {
			t.Errorf("class of %s = %s, want %s", m.MessageID, classes[i], want)
		}
	}

	lat := thread.Latencies(c.Emails)
	if len(lat) != 1 || lat[0] != time.Hour {
		t.Errorf("latencies = %v, want [1h]", lat)
	}

	ix := thread.Resolve(c.Emails)
	th, ok := ix.Get("1")
	if !ok || th.Size() != 2 {
		t.Errorf("thread 1 = %+v, want size 2", th)
	}
}

func TestNormalizeAndEnrich(t *testing.T) {
	t.Parallel()

	p := testProcessor(t)
	m, issues, err := p.Normalize(rawM2)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %v", issues)
	}
	if !m.IsReply || m.InReplyTo != "1" {
		t.Errorf("reply fields = %v %q", m.IsReply, m.InReplyTo)
	}
	if m.IsFromContact || m.ImportanceScore != 0 {
		t.Errorf("Normalize set contact/score: %v %d", m.IsFromContact, m.ImportanceScore)
	}
	if want := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC); m.Date == nil || !m.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", m.Date, want)
	}

	p.Enrich(&m)
	if !m.IsFromContact {
		t.Error("IsFromContact = false, want true")
	}
	// invoice 5 + from_contact 2 + reply 1
	if m.ImportanceScore != 8 {
		t.Errorf("ImportanceScore = %d, want 8", m.ImportanceScore)
	}
}

func TestNormalizeDateFallbacks(t *testing.T) {
	t.Parallel()

	p := New(Config{}, zerolog.Nop())

	fromID := crlf(
		"Message-ID: <123.456.1700000000000.JavaMail.host>",
		"Date: sometime last week",
		"Subject: hi",
		"",
		"body",
	)
	m, issues, err := p.Normalize(fromID)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Unix(1700000000, 0).UTC(); m.Date == nil || !m.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", m.Date, want)
	}
	if len(issues) != 1 || !errors.Is(issues[0].Err, ErrUnparseableDate) {
		t.Errorf("issues = %v, want one date issue", issues)
	}

	undated := crlf("Message-ID: <x@y>", "Date: garbage", "", "body")
	m, issues, err = p.Normalize(undated)
	if err != nil {
		t.Fatal(err)
	}
	if m.Date != nil {
		t.Errorf("Date = %v, want nil", m.Date)
	}
	if len(issues) != 1 || issues[0].Field != "date" || issues[0].Value != "garbage" {
		t.Errorf("issues = %v", issues)
	}
}

func TestProcessBatchDropsFailures(t *testing.T) {
	t.Parallel()

	panicky := decode.WithHTMLConverter(func(string) (string, error) {
		panic("converter exploded")
	})
	p := testProcessor(t, panicky)

	htmlOnly := crlf(
		"Message-ID: 3",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>hello</p>",
	)
	malformed := []byte("this line has no colon\r\n\r\nbody")

	batch := p.ProcessBatch([]source.RawMessage{
		{Folder: "INBOX", UID: 1, Raw: rawM1},
		{Folder: "INBOX", UID: 2, Raw: htmlOnly},
		{Folder: "INBOX", UID: 3, Raw: malformed},
		{Folder: "INBOX", UID: 4, Raw: rawM2},
	})

	if len(batch.Messages) != 2 {
		t.Fatalf("kept %d messages, want 2", len(batch.Messages))
	}
	if len(batch.Drops) != 2 {
		t.Fatalf("drops = %+v, want 2", batch.Drops)
	}
	if batch.Drops[0].UID != 2 || !errors.Is(batch.Drops[0].Err, ErrPanic) {
		t.Errorf("first drop = %+v, want recovered panic for uid 2", batch.Drops[0])
	}
	if batch.Drops[1].UID != 3 || batch.Drops[1].Err == nil {
		t.Errorf("second drop = %+v, want decode error for uid 3", batch.Drops[1])
	}
}

func TestRescore(t *testing.T) {
	t.Parallel()

	p := testProcessor(t)
	msgs := []model.Message{
		{MessageID: "a", Subject: "invoice", ImportanceScore: 0},
		{MessageID: "b", Subject: "hello", InReplyTo: "a", IsReply: true, ImportanceScore: 4},
		{MessageID: "c", Subject: "hello", ImportanceScore: 0},
	}

	stats := p.Rescore(msgs)

	if msgs[0].ImportanceScore != 5 || msgs[1].ImportanceScore != 1 || msgs[2].ImportanceScore != 0 {
		t.Errorf("scores = %d %d %d", msgs[0].ImportanceScore, msgs[1].ImportanceScore, msgs[2].ImportanceScore)
	}
	if stats.Total != 3 || stats.High != 1 || stats.Medium != 1 || stats.Low != 1 {
		t.Errorf("tiers = %+v", stats)
	}
	if stats.MaxIncrease != 5 || stats.MaxDecrease != -3 || stats.TotalChange != 2 {
		t.Errorf("changes = %+v", stats)
	}
	if stats.Changes[5] != 1 || stats.Changes[-3] != 1 || stats.Changes[0] != 1 {
		t.Errorf("histogram = %v", stats.Changes)
	}

	var total RescoreStats
	total.Add(stats)
	total.Add(stats)
	if total.Total != 6 || total.Changes[0] != 2 || total.MaxDecrease != -3 {
		t.Errorf("folded = %+v", total)
	}
}

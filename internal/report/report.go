// Package report renders analysis and sync results for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/nhle/mailscore/internal/analysis"
	"github.com/nhle/mailscore/internal/contacts"
	"github.com/nhle/mailscore/internal/pipeline"
	"github.com/nhle/mailscore/internal/store"
	"github.com/nhle/mailscore/internal/sync"
	"github.com/nhle/mailscore/internal/theme"
)

// printer writes formatted lines and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) title(s string) {
	p.printf("%s\n", theme.TitleStyle.Render(s))
}

func (p *printer) section(s string) {
	p.printf("%s\n", theme.SectionStyle.Render(s))
}

func (p *printer) line(label string, value any) {
	p.printf("  %s %v\n", theme.LabelStyle.Render(label+":"), value)
}

func (p *printer) counts(items []analysis.Count, unit string) {
	if len(items) == 0 {
		p.printf("  %s\n", theme.MutedStyle.Render("none"))
		return
	}
	for _, c := range items {
		p.printf("  - %s: %d %s\n", c.Key, c.Count, unit)
	}
}

func percent(n, total int) string {
	if total == 0 {
		return theme.MutedStyle.Render("(0.0%)")
	}
	return theme.MutedStyle.Render(fmt.Sprintf("(%.1f%%)", float64(n)/float64(total)*100))
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Analysis writes the report of one collection.
func Analysis(w io.Writer, name string, r analysis.Report) error {
	p := &printer{w: w}
	p.title("Analysis of " + name)
	p.line("Total emails", r.Total)
	if r.Total == 0 {
		return p.err
	}

	p.section("Top senders")
	p.counts(r.TopSenders, "emails")
	p.section("Top domains")
	p.counts(r.TopDomains, "emails")
	p.section("Top subjects")
	p.counts(r.TopSubjects, "emails")
	p.section("Most common subject words")
	p.counts(r.TopWords, "occurrences")
	p.section("Newsletters")
	p.counts(r.Newsletters, "emails")

	p.section("Importance score distribution")
	for _, score := range sortedKeys(r.ScoreDistribution) {
		n := r.ScoreDistribution[score]
		p.printf("  - Score %s: %d emails %s\n",
			theme.ScoreStyle(score).Render(fmt.Sprint(score)), n, percent(n, r.Total))
	}

	if r.Dated > 0 {
		p.section("Time distribution (by hour)")
		for h, n := range r.Hours {
			p.printf("  - %02d:00: %d emails %s\n", h, n, percent(n, r.Total))
		}
		p.line("Busiest hour", fmt.Sprintf("%02d:00 with %d emails", r.BusiestHour, r.Hours[r.BusiestHour]))
	}

	p.section("Attachments")
	for _, k := range sortedKeys(r.Attachments) {
		n := r.Attachments[k]
		p.printf("  - %d attachments: %d emails %s\n", k, n, percent(n, r.Total))
	}

	p.section("Replies")
	p.line("Replies", fmt.Sprintf("%d %s", r.Replies.Replies, percent(r.Replies.Replies, r.Total)))
	p.line("Replied to", fmt.Sprintf("%d %s", r.Replies.RepliedTo, percent(r.Replies.RepliedTo, r.Total)))
	p.line("Not replied to", fmt.Sprintf("%d %s", r.Replies.NotRepliedTo, percent(r.Replies.NotRepliedTo, r.Total)))

	p.section("Threads")
	p.line("Total threads", r.Threads.Count)
	for _, size := range sortedKeys(r.Threads.SizeDistribution) {
		n := r.Threads.SizeDistribution[size]
		p.printf("  - %d emails in thread: %d threads %s\n", size, n, percent(n, r.Threads.Count))
	}
	for _, replies := range sortedKeys(r.Threads.ReplyFrequency) {
		n := r.Threads.ReplyFrequency[replies]
		p.printf("  - %d replies in thread: %d threads %s\n", replies, n, percent(n, r.Threads.Count))
	}

	if r.Latency.Count > 0 {
		p.section("Reply time")
		p.line("Average", r.Latency.Mean.Round(time.Second))
		p.line("Fastest", r.Latency.Min.Round(time.Second))
		p.line("Slowest", r.Latency.Max.Round(time.Second))
		p.line("Samples", r.Latency.Count)
	}

	p.section("Contacts")
	p.line("From contacts", fmt.Sprintf("%d %s", r.Contacts.FromContacts, percent(r.Contacts.FromContacts, r.Total)))
	p.line("From non-contacts", fmt.Sprintf("%d %s", r.Contacts.FromNonContacts, percent(r.Contacts.FromNonContacts, r.Total)))

	if len(r.BlacklistHits) > 0 {
		p.section("Blacklisted terms found")
		p.counts(r.BlacklistHits, "occurrences")
	}

	p.section("Importance categories")
	p.line("High (score >= 5)", fmt.Sprintf("%d %s", r.Categories.High, percent(r.Categories.High, r.Total)))
	p.line("Medium (0 <= score < 5)", fmt.Sprintf("%d %s", r.Categories.Medium, percent(r.Categories.Medium, r.Total)))
	p.line("Low (score < 0)", fmt.Sprintf("%d %s", r.Categories.Low, percent(r.Categories.Low, r.Total)))
	p.line("Average importance score", fmt.Sprintf("%.2f", r.AverageScore))

	return p.err
}

// Unified writes statistics across every collection.
func Unified(w io.Writer, u analysis.Unified) error {
	p := &printer{w: w}
	p.title("Unified email statistics")
	for _, c := range u.Collections {
		p.line(c.Name, fmt.Sprintf("%d emails", c.Total))
	}

	p.section("Totals")
	p.line("Total emails", u.Total)
	p.line("From contacts", fmt.Sprintf("%d %s", u.FromContacts, percent(u.FromContacts, u.Total)))
	p.line("Replies", fmt.Sprintf("%d %s", u.Replies, percent(u.Replies, u.Total)))
	p.line("Attachments", u.Attachments)
	p.line("Average importance score", fmt.Sprintf("%.2f", u.AverageScore))

	if u.DateRange != nil {
		p.section("Date range")
		p.line("Oldest", u.DateRange.Oldest.Format(time.RFC3339))
		p.line("Newest", u.DateRange.Newest.Format(time.RFC3339))
	}

	p.section("Top senders")
	p.counts(u.TopSenders, "emails")
	return p.err
}

// Sync writes one line per folder result.
func Sync(w io.Writer, results []sync.FolderResult) error {
	p := &printer{w: w}
	p.title("Fetch results")
	for _, r := range results {
		state := theme.StateStyle(r.State.String()).Render(r.State.String())
		if r.Err != nil {
			p.printf("  %s %s: %v\n", state, r.Folder, r.Err)
			continue
		}
		p.printf("  %s %s: fetched %d, added %d, total %d",
			state, r.Folder, r.Fetched, r.Added, r.Total)
		if len(r.Drops) > 0 {
			p.printf(", dropped %d", len(r.Drops))
		}
		p.printf(" %s\n", theme.MutedStyle.Render(r.Duration.Round(time.Millisecond).String()))
	}
	return p.err
}

// Rescore writes per-collection and total score changes.
func Rescore(w io.Writer, results []sync.RescoreResult) error {
	p := &printer{w: w}
	p.title("Rescore results")

	var total pipeline.RescoreStats
	for _, r := range results {
		if r.Err != nil {
			p.printf("  %s %s: %v\n", theme.StateStyle("error").Render("error"), r.Collection, r.Err)
			continue
		}
		p.printf("  %s: %d emails, total change %s\n",
			r.Collection, r.Stats.Total, theme.DeltaStyle(r.Stats.TotalChange).Render(fmt.Sprintf("%+d", r.Stats.TotalChange)))
		total.Add(r.Stats)
	}

	s := total
	p.section("Overall")
	p.line("Emails processed", s.Total)
	p.line("Total score change", fmt.Sprintf("%+d", s.TotalChange))
	p.line("Max increase", fmt.Sprintf("%+d", s.MaxIncrease))
	p.line("Max decrease", fmt.Sprintf("%+d", s.MaxDecrease))
	p.line("High importance (score >= 3)", s.High)
	p.line("Medium importance (1 <= score < 3)", s.Medium)
	p.line("Low importance (score < 1)", s.Low)

	if len(s.Changes) > 0 {
		p.section("Score changes")
		for _, delta := range sortedKeys(s.Changes) {
			p.printf("  - %s: %d emails\n", theme.DeltaStyle(delta).Render(fmt.Sprintf("%+d", delta)), s.Changes[delta])
		}
	}
	return p.err
}

// Folders writes folder names with their message counts. A negative count
// is shown as unavailable.
func Folders(w io.Writer, folders []string, counts map[string]int) error {
	p := &printer{w: w}
	p.title("Folders")
	for _, f := range folders {
		n, ok := counts[f]
		switch {
		case !ok:
			p.printf("  %s\n", f)
		case n < 0:
			p.printf("  %s: %s\n", f, theme.MutedStyle.Render("unavailable"))
		default:
			p.printf("  %s: %d emails\n", f, n)
		}
	}
	return p.err
}

// ContactChanges writes the difference between two directories.
func ContactChanges(w io.Writer, dir *contacts.Directory, ch contacts.Changes) error {
	p := &printer{w: w}
	p.title("Contacts")
	p.line("Emails", len(dir.Emails))
	p.line("Names", len(dir.Names))
	p.line("Organizations", len(dir.Organizations))

	if ch.Empty() {
		p.printf("  %s\n", theme.MutedStyle.Render("no changes"))
		return p.err
	}

	sets := []struct {
		label  string
		change contacts.SetChange
	}{
		{"Emails", ch.Emails},
		{"Names", ch.Names},
		{"First names", ch.FirstNames},
		{"Last names", ch.LastNames},
		{"Organizations", ch.Organizations},
	}
	for _, s := range sets {
		if s.change.Empty() {
			continue
		}
		p.section(s.label)
		for _, v := range s.change.Added {
			p.printf("  %s %s\n", theme.DeltaStyle(1).Render("+"), v)
		}
		for _, v := range s.change.Removed {
			p.printf("  %s %s\n", theme.DeltaStyle(-1).Render("-"), v)
		}
	}
	return p.err
}

// History writes the recorded merge runs of a collection, newest first.
func History(w io.Writer, name string, runs []store.MergeRun) error {
	p := &printer{w: w}
	p.title("History of " + name)
	if len(runs) == 0 {
		p.printf("  %s\n", theme.MutedStyle.Render("no runs recorded"))
		return p.err
	}
	for _, r := range runs {
		p.printf("  %s  added %d, total %d %s\n",
			r.RanAt.Local().Format(time.DateTime), r.Added, r.Total, theme.MutedStyle.Render(r.ID))
	}
	return p.err
}

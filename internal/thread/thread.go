// Package thread groups messages into conversations and derives reply
// statistics.
//
// Grouping is a single-level lookup: a message is filed under its direct
// parent (In-Reply-To), else its first reference, else its own Message-ID.
// Reply chains are not followed transitively, so a conversation whose
// intermediate messages are missing from the collection can be split
// across several roots.
package thread

import (
	"sort"

	"github.com/nhle/mailscore/internal/model"
)

// RootOf returns the thread root token of m.
func RootOf(m model.Message) string {
	if ref := m.ThreadRef(); ref != "" {
		return ref
	}
	return m.MessageID
}

// IsReply reports whether m carries reply references.
func IsReply(m model.Message) bool {
	return m.InReplyTo != "" || len(m.References) > 0
}

// Thread is the set of messages sharing one root token.
type Thread struct {
	Root     string
	Messages []model.Message

	// Replies counts the members that are themselves replies.
	Replies int
}

// Size is the number of messages in the thread.
func (t *Thread) Size() int {
	return len(t.Messages)
}

// Index holds the threads of a collection in first-seen order.
type Index struct {
	Threads []*Thread
	byRoot  map[string]*Thread
}

// Resolve groups msgs by root token.
func Resolve(msgs []model.Message) *Index {
	ix := &Index{byRoot: make(map[string]*Thread)}
	for _, m := range msgs {
		root := RootOf(m)
		t, ok := ix.byRoot[root]
		if !ok {
			t = &Thread{Root: root}
			ix.byRoot[root] = t
			ix.Threads = append(ix.Threads, t)
		}
		t.Messages = append(t.Messages, m)
		if IsReply(m) {
			t.Replies++
		}
	}
	return ix
}

// Get returns the thread filed under root.
func (ix *Index) Get(root string) (*Thread, bool) {
	t, ok := ix.byRoot[root]
	return t, ok
}

// Len returns the number of threads.
func (ix *Index) Len() int {
	return len(ix.Threads)
}

// SizeDistribution maps thread size to the number of threads of that size.
func (ix *Index) SizeDistribution() map[int]int {
	dist := make(map[int]int)
	for _, t := range ix.Threads {
		dist[t.Size()]++
	}
	return dist
}

// ReplyFrequency maps reply count to the number of multi-message threads
// with that many replies.
func (ix *Index) ReplyFrequency() map[int]int {
	freq := make(map[int]int)
	for _, t := range ix.Threads {
		if t.Size() > 1 {
			freq[t.Replies]++
		}
	}
	return freq
}

// Largest returns up to n threads ordered by size, largest first. Ties keep
// first-seen order.
func (ix *Index) Largest(n int) []*Thread {
	out := make([]*Thread, len(ix.Threads))
	copy(out, ix.Threads)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Size() > out[j].Size()
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

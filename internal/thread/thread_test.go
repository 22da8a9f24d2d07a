package thread

import (
	"reflect"
	"testing"
	"time"

	"github.com/nhle/mailscore/internal/model"
)

func at(hour int) *time.Time {
	t := time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestRootOf(t *testing.T) {
	t.Parallel()

	a := model.Message{MessageID: "A"}
	b := model.Message{MessageID: "B", InReplyTo: "A"}
	c := model.Message{MessageID: "C", References: model.References{"A", "B"}}
	d := model.Message{MessageID: "D", InReplyTo: "B", References: model.References{"A", "B"}}

	tests := []struct {
		msg  model.Message
		want string
	}{
		{a, "A"},
		{b, "A"},
		{c, "A"},
		{d, "B"},
	}
	for _, tt := range tests {
		if got := RootOf(tt.msg); got != tt.want {
			t.Errorf("RootOf(%s) = %q, want %q", tt.msg.MessageID, got, tt.want)
		}
	}
}

func TestResolveIsNotTransitive(t *testing.T) {
	t.Parallel()

	// B is missing from the collection, so D stays filed under B.
	msgs := []model.Message{
		{MessageID: "A"},
		{MessageID: "C", InReplyTo: "A"},
		{MessageID: "D", InReplyTo: "B"},
	}

	ix := Resolve(msgs)
	if ix.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ix.Len())
	}
	a, ok := ix.Get("A")
	if !ok || a.Size() != 2 || a.Replies != 1 {
		t.Errorf("thread A = %+v", a)
	}
	b, ok := ix.Get("B")
	if !ok || b.Size() != 1 || b.Replies != 1 {
		t.Errorf("thread B = %+v", b)
	}
	if want := map[int]int{2: 1, 1: 1}; !reflect.DeepEqual(ix.SizeDistribution(), want) {
		t.Errorf("SizeDistribution = %v, want %v", ix.SizeDistribution(), want)
	}
	if want := map[int]int{1: 1}; !reflect.DeepEqual(ix.ReplyFrequency(), want) {
		t.Errorf("ReplyFrequency = %v, want %v", ix.ReplyFrequency(), want)
	}
	if largest := ix.Largest(1); len(largest) != 1 || largest[0].Root != "A" {
		t.Errorf("Largest(1) = %+v", largest)
	}
}

func TestClassifyReplies(t *testing.T) {
	t.Parallel()

	msgs := []model.Message{
		{MessageID: "A"},
		{MessageID: "B", InReplyTo: "A"},
		{MessageID: "C", References: model.References{"B"}},
		{MessageID: "D"},
		{MessageID: ""},
		{MessageID: "E", InReplyTo: "X"},
	}

	got := ClassifyReplies(msgs)
	want := []ReplyClass{ClassRepliedTo, ClassReply, ClassReply, ClassNotRepliedTo, ClassNotRepliedTo, ClassReply}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ClassifyReplies = %v, want %v", got, want)
	}

	if st := CountReplies(msgs); st != (ReplyStats{Replies: 3, RepliedTo: 1, NotRepliedTo: 2}) {
		t.Errorf("CountReplies = %+v", st)
	}
}

func TestLatencies(t *testing.T) {
	t.Parallel()

	msgs := []model.Message{
		{MessageID: "A", Date: at(10)},
		{MessageID: "B", InReplyTo: "A", Date: at(11)},
		{MessageID: "C", References: model.References{"A"}, Date: at(13)},
		{MessageID: "D", InReplyTo: "A", Date: at(9)},
		{MessageID: "E", InReplyTo: "A"},
		{MessageID: "F", InReplyTo: "missing", Date: at(12)},
		{MessageID: "G", InReplyTo: "A", Date: at(10)},
	}

	got := Latencies(msgs)
	want := []time.Duration{time.Hour, 3 * time.Hour}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Latencies = %v, want %v", got, want)
	}

	st := SummarizeLatencies(got)
	if st.Count != 2 || st.Mean != 2*time.Hour || st.Min != time.Hour || st.Max != 3*time.Hour {
		t.Errorf("SummarizeLatencies = %+v", st)
	}
	if (SummarizeLatencies(nil) != LatencyStats{}) {
		t.Error("SummarizeLatencies(nil) not zero")
	}
}

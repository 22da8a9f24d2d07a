package dates

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	utc := func(y int, mo time.Month, d, h, mi, s int) time.Time {
		return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
	}

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc2822", "Mon, 01 Jan 2024 10:00:00 +0000", utc(2024, 1, 1, 10, 0, 0)},
		{"rfc2822 offset", "Mon, 01 Jan 2024 12:00:00 +0200", utc(2024, 1, 1, 10, 0, 0)},
		{"rfc2822 comment", "Mon, 1 Jan 2024 10:00:00 +0000 (UTC)", utc(2024, 1, 1, 10, 0, 0)},
		{"no weekday", "1 Jan 2024 10:00:00 +0000", utc(2024, 1, 1, 10, 0, 0)},
		{"iso zulu", "2024-01-01T10:00:00Z", utc(2024, 1, 1, 10, 0, 0)},
		{"iso offset", "2024-01-01T11:00:00+01:00", utc(2024, 1, 1, 10, 0, 0)},
		{"iso compact offset", "2024-01-01T11:00:00+0100", utc(2024, 1, 1, 10, 0, 0)},
		{"iso fraction", "2024-01-01T10:00:00.000000+00:00", utc(2024, 1, 1, 10, 0, 0)},
		{"iso naive", "2024-01-01T10:00:00", utc(2024, 1, 1, 10, 0, 0)},
		{"space naive", "2024-01-01 10:00:00", utc(2024, 1, 1, 10, 0, 0)},
		{"space offset", "2024-01-01 05:00:00 -0500", utc(2024, 1, 1, 10, 0, 0)},
		{"date only", "2024-01-01", utc(2024, 1, 1, 0, 0, 0)},
		{"naive rfc", "Mon, 1 Jan 2024 10:00:00", utc(2024, 1, 1, 10, 0, 0)},
		{"european", "01.01.2024 10:00:00", utc(2024, 1, 1, 10, 0, 0)},
		{"long month", "January 1, 2024 10:00 AM", utc(2024, 1, 1, 10, 0, 0)},
		{"header line", "Date: Mon, 01 Jan 2024 10:00:00 +0000", utc(2024, 1, 1, 10, 0, 0)},
		{"received trace", "Received: from mx.example.com by host; Mon, 01 Jan 2024 10:00:00 +0000", utc(2024, 1, 1, 10, 0, 0)},
		{"iso with abbreviation", "2024-01-01 05:00:00 EST", utc(2024, 1, 1, 10, 0, 0)},
		{"rfc2822 named zone", "Tue, 2 Jan 2024 10:00:00 EST", utc(2024, 1, 2, 15, 0, 0)},
		{"rfc2822 pacific", "Tue, 2 Jan 2024 10:00:00 PST", utc(2024, 1, 2, 18, 0, 0)},
		{"rfc2822 summer zone", "Tue, 2 Jul 2024 10:00:00 CEST", utc(2024, 7, 2, 8, 0, 0)},
		{"rfc2822 gmt", "Tue, 2 Jan 2024 10:00:00 GMT", utc(2024, 1, 2, 10, 0, 0)},
		{"rfc2822 offset with zone comment", "Tue, 2 Jan 2024 10:00:00 -0500 (EST)", utc(2024, 1, 2, 15, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Parse(tt.in)
			if !ok {
				t.Fatalf("Parse(%q) reported absent", tt.in)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAbsent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "None", "null", "not a date", "32/13/2024 99:99"} {
		if got, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = %v, want absent", in, got)
		}
	}
}

func TestFromMessageID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		id     string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "milliseconds",
			id:     "<123.456.1704103200000.JavaMail.host>",
			want:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "seconds",
			id:     "<a.b.1704103200.mail>",
			want:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{name: "too few segments", id: "<abc@example.com>"},
		{name: "non numeric", id: "<a.b.c.d@example.com>"},
		{name: "empty", id: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := FromMessageID(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("FromMessageID(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("FromMessageID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestResolveFallsBackToMessageID(t *testing.T) {
	t.Parallel()

	got, ok, fromID := Resolve("garbage", "<1.2.1704103200000.x>")
	if !ok || !fromID {
		t.Fatalf("Resolve ok=%v fromID=%v, want both true", ok, fromID)
	}
	if want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}

	got, ok, fromID = Resolve("Mon, 01 Jan 2024 10:00:00 +0000", "<1.2.999.x>")
	if !ok || fromID {
		t.Fatalf("Resolve header ok=%v fromID=%v, want header to win", ok, fromID)
	}
	if want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}

	if _, ok, _ := Resolve("", "<no-timestamp@example.com>"); ok {
		t.Error("Resolve with nothing usable reported a date")
	}
}

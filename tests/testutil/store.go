package testutil

import (
	"testing"
	"time"

	"github.com/nhle/mailscore/internal/model"
	"github.com/nhle/mailscore/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewJSONStore creates a JSONStore in a temporary directory.
func NewJSONStore(t *testing.T) *store.JSONStore {
	t.Helper()

	s, err := store.NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating json store: %v", err)
	}
	return s
}

// Message builds a message with the given id and date, where date is
// hours after 2024-01-01T00:00:00Z. A negative hours leaves it undated.
func Message(id string, hours int) model.Message {
	m := model.Message{
		MessageID: id,
		Subject:   "subject " + id,
		From:      "Sender <sender@example.com>",
	}
	if hours >= 0 {
		d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
		m.Date = &d
	}
	return m
}

// IDs returns the message ids of msgs in order.
func IDs(msgs []model.Message) []string {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.MessageID
	}
	return ids
}

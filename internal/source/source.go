package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AuthError indicates that the mail server rejected the configured
// credentials.
type AuthError struct {
	Server   string
	Username string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s@%s): %s", e.Username, e.Server, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// FetchOptions narrows a Fetch or Count.
type FetchOptions struct {
	// MaxCount keeps only the most recent N messages. Zero means all.
	MaxCount int

	// Since restricts the search to messages on or after this day.
	// The zero value means no restriction.
	Since time.Time
}

// RawMessage is one undecoded RFC 5322 message as delivered by a store.
type RawMessage struct {
	Folder string
	UID    uint32
	Raw    []byte
}

// MailStore is the contract every mailbox backend implements. Messages
// are never modified on the server.
type MailStore interface {
	// ListFolders returns the folders worth fetching, in server order.
	ListFolders(ctx context.Context) ([]string, error)

	// Fetch returns the raw messages of folder matching opts, oldest first.
	Fetch(ctx context.Context, folder string, opts FetchOptions) ([]RawMessage, error)

	// Count returns the number of messages in folder on or after since.
	Count(ctx context.Context, folder string, since time.Time) (int, error)
}

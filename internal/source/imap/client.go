// Package imap reads raw messages from an IMAP server without changing
// anything on it.
package imap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goimap "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/nhle/mailscore/internal/model"
	"github.com/nhle/mailscore/internal/source"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("mail server unavailable")

// excludedFolders are the system folder markers skipped by ListFolders.
var excludedFolders = []string{"SPAM", "TRASH", "JUNK", "DELETED", "SENT", "DRAFTS"}

// Client implements source.MailStore over IMAP. Every call opens its own
// connection, selects the folder read-only and logs out.
type Client struct {
	cfg     model.IMAPConfig
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

var _ source.MailStore = (*Client)(nil)

// NewClient creates a client for cfg. It does not connect.
func NewClient(cfg model.IMAPConfig, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "imap").Str("server", cfg.Server).Logger()
	return &Client{
		cfg:     cfg,
		breaker: newBreaker("imap:"+cfg.Server, cfg.Breaker, logger),
		log:     logger,
	}
}

func newBreaker(name string, cfg model.BreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// connect dials the server and authenticates.
func (c *Client) connect() (*imapclient.Client, error) {
	addr := c.cfg.Addr()

	var client *imapclient.Client
	var err error

	if c.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.cfg.Username, c.cfg.Password).Wait(); err != nil {
		_ = client.Close()
		return nil, &source.AuthError{
			Server:   c.cfg.Server,
			Username: c.cfg.Username,
			Message:  err.Error(),
		}
	}

	return client, nil
}

// session runs fn on a fresh authenticated connection guarded by the
// breaker. Cancelling ctx closes the connection.
func (c *Client) session(ctx context.Context, fn func(*imapclient.Client) error) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		client, err := c.connect()
		if err != nil {
			return nil, err
		}
		stop := context.AfterFunc(ctx, func() { _ = client.Close() })
		defer func() {
			if stop() {
				_ = client.Logout().Wait()
			}
			_ = client.Close()
		}()

		if err := fn(client); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// ListFolders returns the selectable folders minus system folders.
func (c *Client) ListFolders(ctx context.Context) ([]string, error) {
	var folders []string
	err := c.session(ctx, func(client *imapclient.Client) error {
		boxes, err := client.List("", "*", nil).Collect()
		if err != nil {
			return fmt.Errorf("listing folders: %w", err)
		}
		for _, box := range boxes {
			if hasAttr(box.Attrs, goimap.MailboxAttrNoSelect) {
				continue
			}
			if !IncludeFolder(box.Mailbox) {
				c.log.Debug().Str("folder", box.Mailbox).Msg("excluding folder")
				continue
			}
			folders = append(folders, box.Mailbox)
		}
		return nil
	})
	return folders, err
}

// Fetch returns the raw messages of folder. Messages the server fails to
// deliver are logged and skipped.
func (c *Client) Fetch(ctx context.Context, folder string, opts source.FetchOptions) ([]source.RawMessage, error) {
	var msgs []source.RawMessage
	err := c.session(ctx, func(client *imapclient.Client) error {
		uids, err := c.search(client, folder, opts.Since)
		if err != nil {
			return err
		}
		uids = MostRecent(uids, opts.MaxCount)
		if len(uids) == 0 {
			return nil
		}

		section := &goimap.FetchItemBodySection{Peek: true}
		fetchCmd := client.Fetch(goimap.UIDSetNum(uids...), &goimap.FetchOptions{
			UID:         true,
			BodySection: []*goimap.FetchItemBodySection{section},
		})

		for {
			msg := fetchCmd.Next()
			if msg == nil {
				break
			}

			buf, err := msg.Collect()
			if err != nil {
				c.log.Warn().Err(err).Str("folder", folder).Msg("skipping message")
				continue
			}
			raw := buf.FindBodySection(section)
			if raw == nil {
				c.log.Warn().Str("folder", folder).Uint32("uid", uint32(buf.UID)).Msg("message has no body")
				continue
			}
			msgs = append(msgs, source.RawMessage{Folder: folder, UID: uint32(buf.UID), Raw: raw})
		}

		if err := fetchCmd.Close(); err != nil {
			return fmt.Errorf("fetching %s: %w", folder, err)
		}
		return nil
	})
	return msgs, err
}

// Count returns the number of messages in folder on or after since.
func (c *Client) Count(ctx context.Context, folder string, since time.Time) (int, error) {
	var n int
	err := c.session(ctx, func(client *imapclient.Client) error {
		uids, err := c.search(client, folder, since)
		n = len(uids)
		return err
	})
	return n, err
}

func (c *Client) search(client *imapclient.Client, folder string, since time.Time) ([]goimap.UID, error) {
	if _, err := client.Select(folder, &goimap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", folder, err)
	}

	criteria := &goimap.SearchCriteria{}
	if !since.IsZero() {
		criteria.Since = since
	}

	data, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", folder, err)
	}
	return data.AllUIDs(), nil
}

// IncludeFolder reports whether a folder is worth fetching. INBOX and
// Archive folders always are; anything named like a system folder is not.
func IncludeFolder(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	if lower == "inbox" || strings.HasPrefix(lower, "archive") {
		return true
	}
	upper := strings.ToUpper(name)
	for _, marker := range excludedFolders {
		if strings.Contains(upper, marker) {
			return false
		}
	}
	return true
}

// MostRecent keeps the last n uids. A non-positive n keeps all of them.
func MostRecent(uids []goimap.UID, n int) []goimap.UID {
	if n > 0 && len(uids) > n {
		return uids[len(uids)-n:]
	}
	return uids
}

func hasAttr(attrs []goimap.MailboxAttr, want goimap.MailboxAttr) bool {
	for _, a := range attrs {
		if a == want {
			return true
		}
	}
	return false
}

// Package credential keeps the IMAP password out of the config file.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "mailscore"

// ErrNotFound is returned when no password is stored for a username.
var ErrNotFound = errors.New("credential not found")

// Store reads and writes IMAP passwords in a keyring.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open returns a Store backed by the first available system keyring,
// falling back to an encrypted file under ~/.config/mailscore.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailscore/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailscore-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

// PasswordKey is the keyring key holding the IMAP password of username.
func PasswordKey(username string) string {
	return "imap-password:" + username
}

// Password returns the stored IMAP password for username.
func (s *Store) Password(username string) (string, error) {
	key := PasswordKey(username)
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting %q: %w", key, err)
	}
	return string(item.Data), nil
}

// SetPassword stores the IMAP password for username, replacing any
// previous value.
func (s *Store) SetPassword(username, password string) error {
	key := PasswordKey(username)
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(password),
		Label: "mailscore IMAP password (" + username + ")",
	})
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// DeletePassword removes the stored password for username. Deleting a
// missing password is not an error.
func (s *Store) DeletePassword(username string) error {
	key := PasswordKey(username)
	if err := s.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Password opens the system keyring and returns the password for username.
func Password(username string) (string, error) {
	s, err := Open()
	if err != nil {
		return "", err
	}
	return s.Password(username)
}

// SetPassword opens the system keyring and stores the password for username.
func SetPassword(username, password string) error {
	s, err := Open()
	if err != nil {
		return err
	}
	return s.SetPassword(username, password)
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nhle/mailscore/internal/contacts"
	"github.com/nhle/mailscore/internal/credential"
	"github.com/nhle/mailscore/internal/logging"
	"github.com/nhle/mailscore/internal/model"
	"github.com/nhle/mailscore/internal/pipeline"
	"github.com/nhle/mailscore/internal/scoring"
	"github.com/nhle/mailscore/internal/source/imap"
	"github.com/nhle/mailscore/internal/store"
)

// app carries the loaded configuration shared by every command.
type app struct {
	configPath string
	cfg        *model.AppConfig
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "mailscore",
		Short:         "Fetch, score and analyze email from an IMAP mailbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", model.DefaultConfigPath(), "Config file")

	cmd.AddCommand(newFetchCmd(a))
	cmd.AddCommand(newFoldersCmd(a))
	cmd.AddCommand(newCountCmd(a))
	cmd.AddCommand(newAnalyzeCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newRescoreCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newContactsCmd(a))
	cmd.AddCommand(newSetupCmd(a))

	return cmd
}

func (a *app) init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cfg.Log, os.Stderr)
	return nil
}

// openStore opens the configured collection backend.
func (a *app) openStore() (store.CollectionStore, error) {
	switch a.cfg.Storage.Backend {
	case "", "json":
		return store.NewJSONStore(a.cfg.Paths.OutputDir)
	case "sqlite":
		return store.NewSQLiteStore(a.cfg.Storage.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
}

// mailStore returns an IMAP client. The password comes from the config or
// environment first, then the system keyring.
func (a *app) mailStore() (*imap.Client, error) {
	cfg := a.cfg.IMAP
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Password == "" {
		password, err := credential.Password(cfg.Username)
		if err != nil {
			return nil, fmt.Errorf("no password for %s (set EMAIL_PASSWORD or run mailscore setup): %w", cfg.Username, err)
		}
		cfg.Password = password
	}

	return imap.NewClient(cfg, a.log), nil
}

// directory loads the contact directory. A missing file yields nil.
func (a *app) directory() (*contacts.Directory, error) {
	dir, err := contacts.Load(a.cfg.Paths.ContactsFile)
	if err != nil {
		return nil, err
	}
	if dir == nil {
		a.log.Info().Str("path", a.cfg.Paths.ContactsFile).Msg("no contacts file, contact rules disabled")
	}
	return dir, nil
}

func (a *app) blacklist() ([]string, error) {
	return scoring.LoadBlacklist(a.cfg.Paths.BlacklistFile)
}

// processor builds the message pipeline. The skip flags disable contact
// matching and scoring.
func (a *app) processor(skipContacts, skipScoring bool) (*pipeline.Processor, error) {
	var pc pipeline.Config

	if !skipContacts {
		dir, err := a.directory()
		if err != nil {
			return nil, err
		}
		pc.Directory = dir
	}

	if !skipScoring {
		cfg, err := scoring.LoadConfig(a.cfg.Paths.ScoringFile)
		if err != nil {
			return nil, err
		}
		blacklist, err := a.blacklist()
		if err != nil {
			return nil, err
		}
		pc.Scoring = cfg
		pc.Blacklist = blacklist
	}

	return pipeline.New(pc, a.log), nil
}

// parseSince parses a YYYY-MM-DD flag value. Empty means no limit.
func parseSince(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

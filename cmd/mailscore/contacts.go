package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscore/internal/contacts"
	"github.com/nhle/mailscore/internal/report"
)

func newContactsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage the contact directory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <contacts.csv>",
		Short: "Replace the directory with a Google Contacts CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.importContacts(cmd, args[0], false)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update <contacts.csv>",
		Short: "Re-import a CSV export and show what changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.importContacts(cmd, args[0], true)
		},
	})

	return cmd
}

func (a *app) importContacts(cmd *cobra.Command, csvPath string, diff bool) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", csvPath, err)
	}
	defer f.Close()

	dir, err := contacts.ImportCSV(f, time.Now())
	if err != nil {
		return err
	}

	var old *contacts.Directory
	if diff {
		if old, err = contacts.Load(a.cfg.Paths.ContactsFile); err != nil {
			return err
		}
	}

	if err := contacts.Save(a.cfg.Paths.ContactsFile, dir); err != nil {
		return err
	}
	a.log.Info().
		Str("path", a.cfg.Paths.ContactsFile).
		Int("emails", len(dir.Emails)).
		Msg("contacts saved")

	return report.ContactChanges(cmd.OutOrStdout(), dir, contacts.Diff(old, dir))
}

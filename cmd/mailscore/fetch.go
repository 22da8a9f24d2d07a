package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscore/internal/report"
	"github.com/nhle/mailscore/internal/sync"
)

const allFolders = "all"

func newFetchCmd(a *app) *cobra.Command {
	var (
		folder     string
		limit      int
		since      string
		noContacts bool
		noScoring  bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch folders and merge them into the saved collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceDate, err := parseSince(since)
			if err != nil {
				return err
			}
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}

			mail, err := a.mailStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			folders := []string{folder}
			if folder == "" || folder == allFolders {
				available, err := mail.ListFolders(ctx)
				if err != nil {
					return fmt.Errorf("listing folders: %w", err)
				}
				if folder == "" {
					folders, err = pickFolders(available)
					if err != nil {
						return err
					}
				} else {
					folders = available
				}
			}

			proc, err := a.processor(noContacts, noScoring)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			runner := sync.NewRunner(mail, s, proc, a.log)
			results := runner.SyncFolders(ctx, folders, sync.Options{MaxCount: limit, Since: sinceDate})
			if err := report.Sync(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			if failed > 0 && failed == len(results) {
				return fmt.Errorf("all %d folders failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", `Folder to fetch, or "all" (prompts when empty)`)
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Fetch only the N most recent messages per folder")
	cmd.Flags().StringVar(&since, "since", "", "Fetch messages on or after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&noContacts, "no-contacts", false, "Skip contact matching")
	cmd.Flags().BoolVar(&noScoring, "no-scoring", false, "Skip importance scoring")

	return cmd
}

func newFoldersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List the folders that fetch would consider",
		RunE: func(cmd *cobra.Command, args []string) error {
			mail, err := a.mailStore()
			if err != nil {
				return err
			}
			folders, err := mail.ListFolders(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing folders: %w", err)
			}
			return report.Folders(cmd.OutOrStdout(), folders, nil)
		},
	}
}

func newCountCmd(a *app) *cobra.Command {
	var (
		folder string
		since  string
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count messages per folder without fetching them",
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceDate, err := parseSince(since)
			if err != nil {
				return err
			}
			mail, err := a.mailStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			folders := []string{folder}
			if folder == "" || folder == allFolders {
				folders, err = mail.ListFolders(ctx)
				if err != nil {
					return fmt.Errorf("listing folders: %w", err)
				}
			}

			counts := make(map[string]int, len(folders))
			for _, f := range folders {
				n, err := mail.Count(ctx, f, sinceDate)
				if err != nil {
					a.log.Warn().Err(err).Str("folder", f).Msg("count failed")
					n = -1
				}
				counts[f] = n
			}
			return report.Folders(cmd.OutOrStdout(), folders, counts)
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", `Folder to count, or "all"`)
	cmd.Flags().StringVar(&since, "since", "", "Count messages on or after this date (YYYY-MM-DD)")

	return cmd
}

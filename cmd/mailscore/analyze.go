package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscore/internal/analysis"
	"github.com/nhle/mailscore/internal/model"
	"github.com/nhle/mailscore/internal/report"
	"github.com/nhle/mailscore/internal/store"
	"github.com/nhle/mailscore/internal/sync"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "analyze [collection]",
		Short: "Report sender, subject, thread and importance statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				names, err := s.List(ctx)
				if err != nil {
					return err
				}
				if name, err = pickCollection(names); err != nil {
					return err
				}
			}

			c, err := s.Load(ctx, name)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("collection %s not found", name)
			}

			dir, err := a.directory()
			if err != nil {
				return err
			}
			blacklist, err := a.blacklist()
			if err != nil {
				return err
			}

			r := analysis.Analyze(c.Emails, analysis.Options{Directory: dir, Blacklist: blacklist, Top: top})
			return report.Analysis(cmd.OutOrStdout(), name, r)
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", analysis.DefaultTop, "Length of ranked lists")

	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Report statistics across every saved collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.List(ctx)
			if err != nil {
				return err
			}

			collections := make(map[string]*model.Collection, len(names))
			for _, name := range names {
				c, err := s.Load(ctx, name)
				if err != nil {
					a.log.Warn().Err(err).Str("collection", name).Msg("skipping collection")
					continue
				}
				collections[name] = c
			}

			return report.Unified(cmd.OutOrStdout(), analysis.Unify(collections))
		},
	}
}

func newRescoreCmd(a *app) *cobra.Command {
	var noContacts bool

	cmd := &cobra.Command{
		Use:   "rescore [collection...]",
		Short: "Recompute importance scores of saved collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := a.processor(noContacts, false)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := sync.NewRunner(nil, s, proc, a.log).Rescore(cmd.Context(), args)
			if err != nil {
				return err
			}
			return report.Rescore(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().BoolVar(&noContacts, "no-contacts", false, "Keep the stored contact flags")

	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <collection>",
		Short: "List the recorded merge runs of a collection (sqlite backend)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			db, ok := s.(*store.SQLiteStore)
			if !ok {
				return fmt.Errorf("history needs the sqlite backend (storage.backend is %q)", a.cfg.Storage.Backend)
			}
			runs, err := db.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return report.History(cmd.OutOrStdout(), args[0], runs)
		},
	}
}

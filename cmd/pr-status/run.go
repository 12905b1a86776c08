package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Audit configured repositories once and write reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		summaries, err := a.auditor.Run(cmd.Context(), a.repos)
		for _, s := range summaries {
			a.logger.Info("repository summary",
				zap.String("repo", s.Repository),
				zap.String("report", s.ReportName),
				zap.Int("pull_requests", s.PullRequests),
				zap.Int("partial", s.Partial),
				zap.Int("applied", s.Applied),
				zap.Int("failed", s.Failed),
				zap.Bool("changed", s.Changed))
		}
		return err
	},
}

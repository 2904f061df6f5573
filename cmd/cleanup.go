package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dronedex/directory-cli/internal/dedup"
)

var cleanupDryRun bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove duplicate entries and unwrap redirect websites",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("cleanup"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		entries, err := st.ListAll(ctx)
		if err != nil {
			return err
		}

		plan := dedup.BuildPlan(entries)

		summary := map[string]any{
			"entries":    len(entries),
			"duplicates": len(plan.DeleteIDs),
			"renames":    len(plan.Renames),
			"dry_run":    cleanupDryRun,
		}

		if !cleanupDryRun {
			deleted, err := st.ApplyCleanup(ctx, plan)
			if err != nil {
				return err
			}
			summary["deleted"] = deleted
			zap.L().Info("cleanup applied",
				zap.Int("deleted", deleted),
				zap.Int("renamed", len(plan.Renames)),
			)
		}

		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		return out.Encode(summary)
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "compute the plan without applying it")
	rootCmd.AddCommand(cleanupCmd)
}

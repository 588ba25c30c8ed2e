package cmd

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/app"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Create missing shell records and heal plans for every graded student",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			report, err := a.Services.Bootstrap.ReconcileAllStudents(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		})
	},
}

// linksCmd prints the report even when some plans failed.
var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Backfill analysis and result links on existing plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			report, err := a.Services.Plans.ReconcileLinks(ctx)
			if report != nil {
				if printErr := printJSON(cmd.OutOrStdout(), report); printErr != nil {
					return printErr
				}
			}
			return err
		})
	},
}

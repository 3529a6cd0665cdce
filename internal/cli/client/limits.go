package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

func LimitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Show plan usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var limits Limits
			if err := c.Get(cmd.Context(), "/v1/limits", &limits); err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, limits)
			}

			plan := "free"
			if limits.IsPro {
				plan = "pro"
			}
			printf(cmd, "Plan: %s\n", plan)
			printf(cmd, "  collections  %s\n", formatQuota(limits.Collections))
			printf(cmd, "  text         %s\n", formatQuota(limits.Text))
			printf(cmd, "  link         %s\n", formatQuota(limits.Link))
			printf(cmd, "  pdf          %s\n", formatQuota(limits.PDF))
			return nil
		},
	}
}

func formatQuota(q Quota) string {
	if q.Max == nil {
		return fmt.Sprintf("%d (unlimited)", q.Used)
	}
	return fmt.Sprintf("%d / %d", q.Used, *q.Max)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/eisen/pkg/auth"
)

func AuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := auth.ResetToken(ctx); err != nil {
				return err
			}
			if _, err := auth.GetTasksService(ctx); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Authentication successful!")
			return nil
		},
	}
}

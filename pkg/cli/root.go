// Package cli wires configuration, data sources and the pipeline into the
// eisen command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/eisen/pkg/logger"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eisen",
		Short:         "Prioritize tasks with the Eisenhower matrix",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogger(cmd)
		},
	}
	root.PersistentFlags().String("log-level", string(logger.InfoLevel), "log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().Bool("log-json", false, "log as JSON")

	root.AddCommand(
		ReportCmd(),
		AuthCmd(),
		SetSourceCmd(),
	)
	return root
}

func setupLogger(cmd *cobra.Command) error {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return fmt.Errorf("failed to get log-json flag: %w", err)
	}
	switch logger.LogLevel(level) {
	case logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel, logger.DisabledLevel:
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	cfg := logger.DefaultConfig()
	cfg.Level = logger.LogLevel(level)
	cfg.JSON = asJSON
	cfg.Output = cmd.ErrOrStderr()
	log := logger.NewLogger(cfg)
	logger.Init(cfg)
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
	return nil
}

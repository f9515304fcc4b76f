package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/eisen/pkg/auth"
	"github.com/harrisonrobin/eisen/pkg/config"
	"github.com/harrisonrobin/eisen/pkg/gtasks"
	"github.com/harrisonrobin/eisen/pkg/normalize"
	"github.com/harrisonrobin/eisen/pkg/notion"
	"github.com/harrisonrobin/eisen/pkg/orgmode"
	"github.com/harrisonrobin/eisen/pkg/source"
	"github.com/harrisonrobin/eisen/pkg/taskwarrior"
)

func SetSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-source <kind>",
		Short: "Set the default task source (notion, taskwarrior, orgmode, gtasks)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := source.Kind(args[0])
			if !slices.Contains(source.Kinds, kind) {
				return fmt.Errorf("unknown source %q, expected one of %v", kind, source.Kinds)
			}
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			// The file alone is rewritten so that secrets from the environment stay out of it.
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			cfg.Source = string(kind)
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default source set to: %s\n", kind)
			return nil
		},
	}
}

// newDataSource builds the data source selected by cfg and the normalizer
// matching the records it produces.
func newDataSource(ctx context.Context, cfg *config.Config) (source.DataSource, *normalize.Normalizer, error) {
	switch source.Kind(cfg.Source) {
	case source.KindNotion:
		client, err := notion.NewClient(notion.Config{
			APIKey:             cfg.NotionAPIKey,
			DatabaseID:         cfg.NotionDatabaseID,
			AreasDatabaseID:    cfg.NotionAreasDatabaseID,
			StatusProperty:     cfg.StatusProperty,
			StatusType:         cfg.StatusType,
			ImportanceProperty: cfg.Schema.Importance,
			UrgencyProperty:    cfg.Schema.Urgency,
			EnergyProperty:     cfg.EnergyProperty,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, normalize.NewNormalizer(cfg.Schema, cfg.AreaSchema), nil
	case source.KindTaskwarrior:
		return taskwarrior.NewClient(cfg.Areas, cfg.AreaSchema), normalize.NewNormalizer(taskwarrior.Schema(), cfg.AreaSchema), nil
	case source.KindOrgMode:
		return orgmode.NewSource(cfg.OrgFiles, cfg.OrgTag, cfg.Areas, cfg.AreaSchema), normalize.NewNormalizer(orgmode.Schema(), cfg.AreaSchema), nil
	case source.KindGoogleTasks:
		srv, err := auth.GetTasksService(ctx)
		if err != nil {
			return nil, nil, err
		}
		return gtasks.NewClient(srv, cfg.TaskLists, cfg.Areas, cfg.AreaSchema), normalize.NewNormalizer(gtasks.Schema(), cfg.AreaSchema), nil
	}
	return nil, nil, fmt.Errorf("unknown source %q", cfg.Source)
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/eisen/pkg/advisor"
	"github.com/harrisonrobin/eisen/pkg/config"
	"github.com/harrisonrobin/eisen/pkg/logger"
	"github.com/harrisonrobin/eisen/pkg/pipeline"
	"github.com/harrisonrobin/eisen/pkg/source"
)

type reportFlags struct {
	byLevel      bool
	distribution bool
	enrich       bool
	persist      bool
	json         bool
	source       string
}

func ReportCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the prioritization report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			if flags.source != "" {
				cfg.Source = flags.source
			}
			return runReport(cmd, cfg, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.byLevel, "by-level", false, "group recommendations by need level")
	cmd.Flags().BoolVar(&flags.distribution, "distribution", false, "append the need-level distribution")
	cmd.Flags().BoolVar(&flags.enrich, "enrich", false, "ask the advisory model about tasks missing importance or urgency")
	cmd.Flags().BoolVar(&flags.persist, "persist", false, "write advisory values back to the source (with --enrich)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&flags.source, "source", "", "task source (overrides config)")
	return cmd
}

func runReport(cmd *cobra.Command, cfg *config.Config, flags reportFlags) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, normalizer, err := newDataSource(ctx, cfg)
	if err != nil {
		return err
	}
	p := pipeline.New(src, normalizer)
	p.Filter = source.Filter{ExcludeStatuses: cfg.ExcludeStatuses}
	p.Throttle = pipeline.NewThrottle(cfg.Throttle())

	if flags.enrich {
		llm, err := advisor.NewOpenAIAdvisor(cfg.Model, cfg.OpenAIAPIKey)
		if err != nil {
			return err
		}
		cache, err := advisor.NewCache(cfg.AdviceCache)
		if err != nil {
			return fmt.Errorf("error opening advice cache: %w", err)
		}
		defer func() {
			if err := cache.Save(); err != nil {
				log.Warn("Could not save advice cache", "path", cache.Path, "error", err)
			}
		}()
		p.Advisor = advisor.NewCachedAdvisor(llm, cache)
	}

	res, err := p.Run(ctx, pipeline.Options{
		ByLevel:      flags.byLevel,
		Distribution: flags.distribution,
		Enrich:       flags.enrich,
		Persist:      flags.persist,
	})
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), res, flags.json)
}

func writeResult(w io.Writer, res *pipeline.Result, asJSON bool) error {
	if !asJSON {
		_, err := io.WriteString(w, res.Report)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

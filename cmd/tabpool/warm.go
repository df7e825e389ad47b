package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/state303/tabpool"
	"github.com/state303/tabpool/internal/config"
	"github.com/state303/tabpool/internal/hostinfo"
)

func newWarmCmd() *cobra.Command {
	var poolSize int
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Preload pages for every label and probe their selectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *appConfig
			if cmd.Flags().Changed("pool-size") {
				cfg.Pool.Size = poolSize
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if len(cfg.Preload) == 0 {
				return fmt.Errorf("no preload labels configured")
			}

			browser, err := tabpool.NewBrowserWithOptions(cfg.BrowserOptions())
			if err != nil {
				return err
			}
			defer browser.CleanUp()

			return warm(cmd.Context(), cmd.OutOrStdout(), browser, &cfg)
		},
	}
	cmd.Flags().IntVarP(&poolSize, "pool-size", "n", 1, "pages to preload per label")
	return cmd
}

// warm builds a preloaded pool on browser and, for every label, acquires a
// page, prints the text of the label's selector and releases the page.
func warm(ctx context.Context, out io.Writer, browser *tabpool.Browser, cfg *config.Config) error {
	before, memErr := hostinfo.SampleMemory()
	if memErr == nil {
		log.Info().Object("memory", before).Msg("Host memory before warm-up")
	}

	m, err := tabpool.NewPreloadedPageManager(ctx, browser, cfg.PreloadTargets(), cfg.Pool.Size)
	if err != nil {
		return fmt.Errorf("warm pool: %w", err)
	}

	if after, err := hostinfo.SampleMemory(); err == nil && memErr == nil {
		log.Info().
			Object("memory", after).
			Int64("delta_mb", after.UsedDeltaMB(before)).
			Msg("Host memory after warm-up")
	}

	selectors := make(map[string]string, len(cfg.Preload))
	for label, p := range cfg.Preload {
		selectors[tabpool.NormalizeLabel(label)] = p.Selector
	}

	for _, label := range m.Labels() {
		page, err := m.AcquirePage(ctx, label)
		if err != nil {
			return err
		}
		selector := selectors[label]
		if selector == "" {
			selector = "title"
		}
		text, found := tabpool.ExtractElementTextOrNull(page, selector)
		if !found {
			text = "<none>"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", label, selector, text)

		if err := m.ReleasePage(ctx, page, label); err != nil {
			return err
		}
	}
	return nil
}

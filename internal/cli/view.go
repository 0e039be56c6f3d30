package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/topoview/topoview/pkg/cache"
	apperrors "github.com/topoview/topoview/pkg/errors"
	"github.com/topoview/topoview/pkg/view"
)

// viewCommand creates the interactive dashboard command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		layoutName string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the interactive topology dashboard",
		Long: `View opens a full-screen terminal dashboard showing the network as a
radial map around the router. Devices can be dragged, the canvas panned and
zoomed, and the arrangement saved under a named layout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := c.applyLogConfig(cfg.Log); err != nil {
				return err
			}
			if cfg.Source.BaseURL == "" && cfg.Source.File == "" {
				return apperrors.New(apperrors.ErrCodeInvalidConfig,
					"no data source configured: set source.base_url or source.file (run `topoview serve` for a local demo)")
			}

			responseCache, err := newCache(ctx, cfg.Cache)
			if err != nil {
				return err
			}
			if noCache {
				responseCache = cache.NewNullCache()
			}
			defer responseCache.Close()

			provider, err := newProvider(cfg, responseCache)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg, provider, responseCache)
			if err != nil {
				return err
			}

			saves, err := newStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer saves.Close(ctx)

			seed, err := saves.Get(ctx, layoutName)
			if err != nil && !apperrors.Is(err, apperrors.ErrCodeLayoutNotFound) {
				c.Logger.Warn("saved layout unavailable", "name", layoutName, "err", err)
			}

			shared := &sharedView{}
			pollCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			frames := runner.Poll(pollCtx, shared.Remembered, shared.Viewport)

			model := NewDashboard(runner, frames, saves, layoutName, seed, view.Options{
				Canvas:  runner.Canvas(),
				ZoomMin: cfg.View.ZoomMin,
				ZoomMax: cfg.View.ZoomMax,
			}, shared)

			p := tea.NewProgram(model,
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&layoutName, "layout", "default", "saved layout to load and save")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")

	return cmd
}

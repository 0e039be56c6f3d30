package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/topoview/topoview/pkg/cache"
	apperrors "github.com/topoview/topoview/pkg/errors"
	"github.com/topoview/topoview/pkg/render/dot"
	"github.com/topoview/topoview/pkg/topo"
)

// Export formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// exportCommand creates the export command for static topology snapshots.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format   string
		out      string
		detailed bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current topology as DOT or SVG",
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
					"no data source configured: set source.base_url or source.file")
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

			prog := newProgress(c.Logger)
			frame, err := runner.Refresh(ctx, nil, nil)
			if err != nil {
				return err
			}
			if frame.SourceErr != nil {
				printWarning("partial data: %s", apperrors.UserMessage(frame.SourceErr))
			}
			snap := frame.Snapshot

			dotText := dot.ToDOT(snap, dot.Options{Detailed: detailed})

			var (
				data   []byte
				cached bool
			)
			switch format {
			case FormatDOT:
				data = []byte(dotText)
			case FormatSVG:
				data, cached, err = renderSVGCached(cmd, responseCache, snap, dotText, detailed, cfg.Cache.TTLMs)
				if err != nil {
					return err
				}
			default:
				return apperrors.New(apperrors.ErrCodeInvalidConfig,
					"unsupported format %q (want dot or svg)", format)
			}

			if out == "" {
				out = "topology." + format
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			prog.done(fmt.Sprintf("Exported %d nodes", len(snap.Nodes)))
			printSuccess("Topology exported")
			printFile(out)
			printStats(len(snap.Nodes), len(snap.Edges), cached)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatSVG, "output format (dot, svg)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default topology.<format>)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include IP, MAC and traffic in labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the export cache")

	return cmd
}

// renderSVGCached renders the DOT text to SVG, reusing a cached artifact for
// an identical snapshot.
func renderSVGCached(cmd *cobra.Command, c cache.Cache, snap topo.Snapshot, dotText string, detailed bool, ttlMs int) ([]byte, bool, error) {
	ctx := cmd.Context()
	keyer := cache.NewDefaultKeyer()

	snapBytes, err := topo.MarshalSnapshot(snap)
	if err != nil {
		return nil, false, err
	}
	key := keyer.ExportKey(cache.Hash(snapBytes), cache.ExportKeyOpts{
		Format:   FormatSVG,
		Detailed: detailed,
	})

	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}

	data, err := dot.RenderSVG(dotText)
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, data, time.Duration(ttlMs)*time.Millisecond)
	return data, false, nil
}

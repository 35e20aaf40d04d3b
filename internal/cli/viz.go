package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sandfall/strata/pkg/cache"
	"github.com/sandfall/strata/pkg/viz"
	"github.com/sandfall/strata/pkg/world"
)

// newVizCmd creates the viz command.
func newVizCmd() *cobra.Command {
	var (
		output        string
		dotOnly       bool
		noCache       bool
		materialsPath string
		allowModded   bool
	)

	cmd := &cobra.Command{
		Use:   "viz <preset.json>",
		Short: "Render a preset's pass/layer structure as SVG",
		Long: `Render a preset's pass/layer structure as SVG.

The diagram shows passes in execution order with one node per layer,
annotated with mode and parameters. Rendered SVGs are cached locally by
preset content, so repeated runs on an unchanged preset skip graphviz.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadMaterials(materialsPath, allowModded)
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], ".json") + ".svg"
			}
			return runViz(cmd.Context(), args[0], output, table, dotOnly, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <preset>.svg)")
	cmd.Flags().BoolVar(&dotOnly, "dot", false, "write DOT source instead of SVG")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().StringVar(&materialsPath, "materials", "", "TOML material pack to load")
	cmd.Flags().BoolVar(&allowModded, "allow-modded", false, "accept modded material names")
	return cmd
}

func runViz(ctx context.Context, presetPath, output string, table *world.Table, dotOnly, noCache bool) error {
	logger := loggerFromContext(ctx)

	p, err := loadValidatedPreset(presetPath, table)
	if err != nil {
		return err
	}
	dot := viz.ToDOT(p, table)

	if dotOnly {
		if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write DOT: %w", err)
		}
		printSuccess("DOT written")
		printFile(output)
		return nil
	}

	renderCache := openRenderCache(noCache, logger)
	defer renderCache.Close()

	key := cache.Key("viz", dot)
	svg, hit, _ := renderCache.Get(ctx, key)
	if !hit {
		spinner := newSpinner(ctx, "Rendering diagram...")
		spinner.Start()
		svg, err = viz.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()
		_ = renderCache.Set(ctx, key, svg, 0)
	} else {
		logger.Debug("render cache hit", "key", key)
	}

	if err := os.WriteFile(output, svg, 0o644); err != nil {
		return fmt.Errorf("write SVG: %w", err)
	}
	printSuccess("Diagram written")
	printFile(output)
	return nil
}

// openRenderCache opens the on-disk render cache, degrading to a null cache
// when disabled or unavailable.
func openRenderCache(noCache bool, logger *log.Logger) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(filepath.Join(dir, "strata", "viz"))
	if err != nil {
		logger.Debug("render cache unavailable", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

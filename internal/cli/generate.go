package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandfall/strata/pkg/pipeline"
	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/world"
)

// newGenerateCmd creates the generate command.
func newGenerateCmd() *cobra.Command {
	var (
		width, height int
		seed          uint64
		output        string
		worldPath     string
		materialsPath string
		allowModded   bool
		watch         bool
	)

	cmd := &cobra.Command{
		Use:   "generate <preset.json>",
		Short: "Run a preset and write the resulting world dump",
		Long: `Run a preset and write the resulting world dump.

The preset is validated first; warnings are printed and defaults applied.
Generation starts from an empty grid of --width x --height, or from an
existing dump given with --world, and runs every pass to completion. The
result is written as a sparse JSON grid dump.

The same --seed, preset, and starting world always produce the same
terrain. With --watch the run renders a live progress view instead of a
spinner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadMaterials(materialsPath, allowModded)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), generateParams{
				presetPath: args[0],
				worldPath:  worldPath,
				output:     output,
				width:      width,
				height:     height,
				seed:       seed,
				watch:      watch,
				table:      table,
			})
		},
	}

	cmd.Flags().IntVar(&width, "width", 256, "grid width for a fresh world")
	cmd.Flags().IntVar(&height, "height", 256, "grid height for a fresh world")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	cmd.Flags().StringVarP(&output, "output", "o", "world.json", "output dump file")
	cmd.Flags().StringVar(&worldPath, "world", "", "start from an existing world dump")
	cmd.Flags().StringVar(&materialsPath, "materials", "", "TOML material pack to load")
	cmd.Flags().BoolVar(&allowModded, "allow-modded", false, "accept modded material names")
	cmd.Flags().BoolVar(&watch, "watch", false, "show live generation progress")
	return cmd
}

type generateParams struct {
	presetPath string
	worldPath  string
	output     string
	width      int
	height     int
	seed       uint64
	watch      bool
	table      *world.Table
}

func runGenerate(ctx context.Context, p generateParams) error {
	logger := loggerFromContext(ctx)

	validated, err := loadValidatedPreset(p.presetPath, p.table)
	if err != nil {
		return err
	}

	var mem *world.Mem
	if p.worldPath != "" {
		imported, err := world.Import(p.worldPath)
		if err != nil {
			return fmt.Errorf("load world %s: %w", p.worldPath, err)
		}
		mem = imported
	} else {
		mem = world.NewMemWithTable(p.width, p.height, p.table)
	}

	runner := pipeline.NewRunner(mem, validated, pipeline.Options{
		Seed:   p.seed,
		Logger: logger,
	})

	if p.watch {
		if err := watchRun(ctx, runner); err != nil {
			return err
		}
	} else {
		prog := newProgress(logger)
		spinner := newSpinner(ctx, "Generating terrain...")
		spinner.Start()
		stats, err := runner.Run(ctx)
		if err != nil {
			spinner.StopWithError("Generation failed")
			return err
		}
		spinner.Stop()
		prog.done(fmt.Sprintf("Generated %d passes, %d cells", stats.PassesDone, stats.CellsWritten))
	}

	if runner.State() == pipeline.StateCancelled {
		printWarning("run cancelled, writing partial world")
	}

	if err := world.Export(mem, p.output); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	printSuccess("World written")
	printFile(p.output)
	return nil
}

// loadValidatedPreset reads, parses, and validates a preset file, printing
// any warnings.
func loadValidatedPreset(path string, table *world.Table) (*preset.Preset, error) {
	data, err := readPresetFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := preset.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	p, outcome := preset.Validate(doc, table)
	for _, w := range outcome.Warnings {
		printValidationWarning(w)
	}
	if !outcome.OK {
		return nil, outcome.Err
	}
	return p, nil
}

// printValidationWarning formats a warning with as much position as it has.
func printValidationWarning(w preset.Warning) {
	switch {
	case w.Layer >= 0:
		printWarning("pass %d layer %d: %s", w.Pass, w.Layer, w.Message)
	case w.Pass >= 0:
		printWarning("pass %d: %s", w.Pass, w.Message)
	default:
		printWarning("%s", w.Message)
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/world"
)

// newValidateCmd creates the validate command.
func newValidateCmd() *cobra.Command {
	var (
		materialsPath string
		allowModded   bool
	)

	cmd := &cobra.Command{
		Use:   "validate <preset.json>",
		Short: "Check a preset document against the engine schema",
		Long: `Check a preset document against the engine schema.

Validation reports two kinds of findings. Fatal errors (unknown modes,
out-of-range values, documents newer than the engine's major version) stop
the preset from running. Warnings (missing optional fields, newer minor
versions) mean the preset runs with defaults substituted.

Material names resolve against the builtin table; pass --materials to load
additional materials from a TOML pack, and --allow-modded to accept names
registered above the modded ID threshold.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadMaterials(materialsPath, allowModded)
			if err != nil {
				return err
			}
			return runValidate(args[0], table)
		},
	}

	cmd.Flags().StringVar(&materialsPath, "materials", "", "TOML material pack to load")
	cmd.Flags().BoolVar(&allowModded, "allow-modded", false, "accept modded material names")
	return cmd
}

// loadMaterials builds the material table the command resolves names against.
func loadMaterials(path string, allowModded bool) (*world.Table, error) {
	table := world.NewTable()
	table.AllowModded = allowModded
	if path == "" {
		return table, nil
	}
	if _, err := world.LoadPack(path, table); err != nil {
		return nil, fmt.Errorf("load material pack %s: %w", path, err)
	}
	return table, nil
}

// readPresetFile reads a preset document file.
func readPresetFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return data, nil
}

func runValidate(path string, table *world.Table) error {
	data, err := readPresetFile(path)
	if err != nil {
		return err
	}

	doc, err := preset.ParseDocument(data)
	if err != nil {
		printError("%s does not parse: %v", path, err)
		return err
	}

	p, outcome := preset.Validate(doc, table)
	for _, w := range outcome.Warnings {
		printValidationWarning(w)
	}

	if !outcome.OK {
		printError("%s is invalid: %s", path, outcome.Err.Message)
		return outcome.Err
	}

	printSuccess("%s is valid", path)
	printDetail("schema %d.%d, %d passes, %d warnings",
		p.Major, p.Minor, len(p.Passes), len(outcome.Warnings))
	return nil
}

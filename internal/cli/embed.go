package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandfall/strata/pkg/cellcodec"
	"github.com/sandfall/strata/pkg/world"
)

// newEmbedCmd creates the embed command group.
func newEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Encode, decode, and scan presets embedded in world dumps",
		Long: `Encode, decode, and scan presets embedded in world dumps.

Presets travel inside exported worlds as blocks of reserved marker cells.
Each cell of a block points toward its header, so a decode can start from
any cell inside the block. The payload carries a checksum; a block damaged
by simulation or editing decodes with a checksum error instead of silently
returning garbage.`,
	}
	cmd.AddCommand(newEmbedEncodeCmd())
	cmd.AddCommand(newEmbedDecodeCmd())
	cmd.AddCommand(newEmbedScanCmd())
	return cmd
}

func newEmbedEncodeCmd() *cobra.Command {
	var (
		worldPath string
		output    string
		name      string
		at        string
		size      string
	)

	cmd := &cobra.Command{
		Use:   "encode <preset.json>",
		Short: "Embed a preset into a world dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(at)
			if err != nil {
				return err
			}
			w, h, err := parseSize(size)
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), ".json")
			}
			return runEmbedEncode(cmd.Context(), args[0], worldPath, output, name,
				world.Rect{X: x, Y: y, W: w, H: h})
		},
	}

	cmd.Flags().StringVar(&worldPath, "world", "", "world dump to embed into (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output dump (default: overwrite input)")
	cmd.Flags().StringVar(&name, "name", "", "embedded preset name (default: file name)")
	cmd.Flags().StringVar(&at, "at", "0,0", "box origin as x,y (bottom-left)")
	cmd.Flags().StringVar(&size, "size", "8x8", "box size as WxH")
	_ = cmd.MarkFlagRequired("world")
	return cmd
}

func runEmbedEncode(ctx context.Context, presetPath, worldPath, output, name string, box world.Rect) error {
	data, err := readPresetFile(presetPath)
	if err != nil {
		return err
	}
	mem, err := world.Import(worldPath)
	if err != nil {
		return fmt.Errorf("load world %s: %w", worldPath, err)
	}

	enc := &cellcodec.Encoder{World: mem}
	if err := enc.Encode(ctx, name, data, box); err != nil {
		printError("Embed failed: %v", err)
		return err
	}

	if output == "" {
		output = worldPath
	}
	if err := world.Export(mem, output); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	printSuccess("Embedded %q at (%d,%d), %dx%d cells", name, box.X, box.Y, box.W, box.H)
	printFile(output)
	return nil
}

func newEmbedDecodeCmd() *cobra.Command {
	var (
		worldPath string
		at        string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Read an embedded preset back out of a world dump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(at)
			if err != nil {
				return err
			}
			return runEmbedDecode(cmd.Context(), worldPath, output, x, y)
		},
	}

	cmd.Flags().StringVar(&worldPath, "world", "", "world dump to read (required)")
	cmd.Flags().StringVar(&at, "at", "0,0", "any cell of the embedding as x,y")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the preset JSON here instead of stdout")
	_ = cmd.MarkFlagRequired("world")
	return cmd
}

func runEmbedDecode(ctx context.Context, worldPath, output string, x, y int) error {
	mem, err := world.Import(worldPath)
	if err != nil {
		return fmt.Errorf("load world %s: %w", worldPath, err)
	}

	dec := &cellcodec.Decoder{World: mem}
	res, err := dec.Decode(ctx, x, y)
	if err != nil {
		printError("Decode failed: %v", err)
		return err
	}
	if res == nil {
		printInfo("No embedded data at (%d,%d)", x, y)
		return nil
	}

	printSuccess("Decoded %q from header (%d,%d)", res.Name, res.HeaderX, res.HeaderY)
	reportOutcome(res)

	if output != "" {
		if err := os.WriteFile(output, res.Data, 0o644); err != nil {
			return fmt.Errorf("write preset: %w", err)
		}
		printFile(output)
		return nil
	}
	fmt.Println(string(res.Data))
	return nil
}

func newEmbedScanCmd() *cobra.Command {
	var worldPath string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List every preset embedded in a world dump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbedScan(cmd.Context(), worldPath)
		},
	}

	cmd.Flags().StringVar(&worldPath, "world", "", "world dump to scan (required)")
	_ = cmd.MarkFlagRequired("world")
	return cmd
}

func runEmbedScan(ctx context.Context, worldPath string) error {
	mem, err := world.Import(worldPath)
	if err != nil {
		return fmt.Errorf("load world %s: %w", worldPath, err)
	}

	results, errs := cellcodec.Scan(ctx, mem)
	for _, res := range results {
		printSuccess("%q at (%d,%d)", res.Name, res.HeaderX, res.HeaderY)
		reportOutcome(res)
	}
	for _, e := range errs {
		printWarning("damaged embedding: %v", e)
	}
	if len(results) == 0 && len(errs) == 0 {
		printInfo("No embedded presets found")
	}
	return nil
}

// reportOutcome prints the validation verdict carried by a decode result.
func reportOutcome(res *cellcodec.Result) {
	for _, w := range res.Outcome.Warnings {
		printValidationWarning(w)
	}
	if !res.Outcome.OK {
		printWarning("embedded preset fails validation: %s", res.Outcome.Err.Message)
	}
}

// parsePoint parses "x,y".
func parsePoint(s string) (int, int, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid point %q, want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return x, y, nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return w, h, nil
}

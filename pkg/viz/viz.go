// Package viz renders a preset's pass and layer structure as a diagram.
//
// The diagram is a top-to-bottom DOT graph: one cluster per pass in
// execution order, one node per layer inside it, annotated with the layer's
// mode and resolved parameters. It exists for documentation and debugging;
// it draws the recipe, not the terrain.
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/world"
)

// ToDOT converts a validated preset to Graphviz DOT. Material IDs are
// rendered through reg; unknown IDs show as their numeric value.
func ToDOT(p *preset.Preset, reg world.Registry) string {
	name := func(id world.MaterialID) string {
		if n, ok := reg.Name(id); ok {
			return n
		}
		return fmt.Sprintf("#%d", id)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph preset {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	var prev string
	for i, pass := range p.Passes {
		fmt.Fprintf(&buf, "  subgraph cluster_pass%d {\n", i)
		fmt.Fprintf(&buf, "    label=\"pass %d  bottom=%d  settle=%d\";\n", i, pass.Bottom, pass.SettleTime)
		if pass.GravitySolids {
			buf.WriteString("    style=dashed;\n")
		}

		for j, layer := range pass.Layers {
			id := fmt.Sprintf("p%dl%d", i, j)
			fmt.Fprintf(&buf, "    %s [label=%q];\n", id, layerLabel(layer, name))
			if prev != "" {
				fmt.Fprintf(&buf, "    %s -> %s;\n", prev, id)
			}
			prev = id
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func layerLabel(layer preset.Layer, name func(world.MaterialID) string) string {
	switch l := layer.(type) {
	case preset.Uniform:
		return fmt.Sprintf("uniform %s\nthickness %d ± %d", name(l.Material), l.Thickness, l.Variation)
	case preset.Padded:
		return fmt.Sprintf("padded %s\nthickness %d ± %d", name(l.Material), l.Thickness, l.Variation)
	case preset.Vein:
		return fmt.Sprintf("vein %s\n%d blobs %dx%d in y[%d,%d]",
			name(l.Material), l.Count, l.Width, l.Height, l.MinY, l.MaxY)
	case preset.Replace:
		return fmt.Sprintf("replace %s -> %s\n%.0f%%", name(l.Old), name(l.New), l.Percent)
	default:
		return layer.Mode().String()
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

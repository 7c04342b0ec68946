package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/flowgraphs/flowir/pkg/ops"
	"github.com/flowgraphs/flowir/pkg/wire"
)

// newInfoCmd creates the info command for inspecting serialized graph files.
func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Inspect a serialized graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, path string) error {
	logger := loggerFromContext(cmd.Context())
	logger.Debugf("Reading %s", path)

	wg, err := wire.ReadWireFile(path)
	if err != nil {
		return err
	}

	// Count nodes per operation name. Payloads that the catalog cannot
	// decode are grouped under "?".
	counts := make(map[string]int)
	for _, n := range wg.Nodes {
		name := "?"
		if op, err := ops.Decode(n.Op); err == nil {
			name = op.Name()
		}
		counts[name]++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styleTitle.Render(path))
	fmt.Fprintf(out, "%s %s\n", styleDim.Render("format:"), styleValue.Render(wg.Version))
	fmt.Fprintf(out, "%s %s\n", styleDim.Render("nodes: "), styleNumber.Render(fmt.Sprint(len(wg.Nodes))))
	fmt.Fprintf(out, "%s %s\n", styleDim.Render("edges: "), styleNumber.Render(fmt.Sprint(len(wg.Edges))))
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(out, "  %s %s\n", styleValue.Render(name), styleDim.Render(fmt.Sprintf("x%d", counts[name])))
	}
	return nil
}

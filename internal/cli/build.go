package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowgraphs/flowir/pkg/manifest"
	"github.com/flowgraphs/flowir/pkg/wire"
)

// newBuildCmd creates the build command for turning TOML manifests into
// serialized graph files.
func newBuildCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build [manifest]",
		Short: "Build a serialized graph from a TOML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: manifest name with .json)")
	return cmd
}

func runBuild(cmd *cobra.Command, input, output string) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	g, names, err := manifest.Load(input)
	if err != nil {
		return err
	}
	logger.Debugf("Built graph: %d nodes, %d links", g.NumNodes(), g.NumLinks())

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
	}
	if err := wire.WriteGraphFile(g, output); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Built %d nodes from %s", len(names)+1, input))
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("wrote "+output))
	return nil
}

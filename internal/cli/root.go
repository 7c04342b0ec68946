package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"  // semantic version (e.g., "v1.2.3")
	commit  = "none" // git commit SHA
	date    = ""     // build timestamp
)

// SetVersion sets the version information displayed by --version. It is
// called by the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the flowir CLI with the given base context and returns an
// error if any command fails.
//
// Logging defaults to info level on stderr; --verbose (-v) switches to
// debug level. The logger is attached to the command context and accessible
// to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "flowir",
		Short:        "flowir builds, inspects, and stores dataflow graphs",
		Long:         `flowir is a CLI tool for working with hierarchical dataflow graphs: building them from TOML manifests, inspecting and rendering their serialized form, and keeping them in local or remote stores.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("flowir %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newInfoCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newStoreCmd())

	return root.ExecuteContext(ctx)
}

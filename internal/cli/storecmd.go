package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/flowgraphs/flowir/pkg/ops"
	"github.com/flowgraphs/flowir/pkg/store"
	"github.com/flowgraphs/flowir/pkg/wire"
)

// storeOpts holds the backend selection flags shared by all store
// subcommands.
type storeOpts struct {
	backend   string // "file", "redis", or "mongo"
	dir       string // file backend directory
	redisAddr string // redis backend address
	mongoURI  string // mongo backend connection URI
}

// openStore creates the selected store backend.
func (o *storeOpts) openStore(ctx context.Context) (store.Store, error) {
	switch o.backend {
	case "file":
		dir := o.dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(home, ".flowir", "store")
		}
		return store.NewFileStore(dir)
	case "redis":
		return store.NewRedisStore(store.RedisOptions{Addr: o.redisAddr}), nil
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoOptions{URI: o.mongoURI})
	default:
		return nil, fmt.Errorf("invalid backend: %s (must be 'file', 'redis', or 'mongo')", o.backend)
	}
}

// newStoreCmd creates the store command tree for managing stored graphs.
func newStoreCmd() *cobra.Command {
	opts := storeOpts{backend: "file", redisAddr: "localhost:6379"}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored graphs",
	}
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", opts.backend, "store backend: file (default), redis, mongo")
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "file backend directory (default: ~/.flowir/store)")
	cmd.PersistentFlags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "redis backend address")
	cmd.PersistentFlags().StringVar(&opts.mongoURI, "mongo-uri", "mongodb://localhost:27017", "mongo backend connection URI")

	cmd.AddCommand(newStorePutCmd(&opts))
	cmd.AddCommand(newStoreGetCmd(&opts))
	cmd.AddCommand(newStoreListCmd(&opts))
	cmd.AddCommand(newStoreDeleteCmd(&opts))
	return cmd
}

func newStorePutCmd(opts *storeOpts) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "put [file]",
		Short: "Store a serialized graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := wire.ReadGraphFile(args[0], ops.Decode)
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			e, err := store.NewEntry(name, g)
			if err != nil {
				return err
			}
			if err := s.Put(ctx, e); err != nil {
				return err
			}

			loggerFromContext(ctx).Debugf("Stored %d bytes under %s", len(e.Payload), e.ID)
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("stored"), styleValue.Render(e.ID.String()))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "entry name (default: file name without extension)")
	return cmd
}

func newStoreGetCmd(opts *storeOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry id %q: %w", args[0], err)
			}
			s, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.Get(ctx, id)
			if err != nil {
				return err
			}
			if !e.Verify() {
				loggerFromContext(ctx).Warnf("Entry %s fails hash verification", e.ID)
			}

			if output == "" {
				output = e.Name + ".json"
			}
			if err := os.WriteFile(output, e.Payload, 0644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("wrote "+output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: entry name with .json)")
	return cmd
}

func newStoreListCmd(opts *storeOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, styleDim.Render("no entries"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s  %s\n",
					styleValue.Render(e.ID.String()),
					styleDim.Render(e.CreatedAt.Format("2006-01-02 15:04")),
					styleTitle.Render(e.Name))
			}
			return nil
		},
	}
}

func newStoreDeleteCmd(opts *storeOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry id %q: %w", args[0], err)
			}
			s, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("deleted"))
			return nil
		},
	}
}

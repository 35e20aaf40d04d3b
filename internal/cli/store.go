package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/preset/store"
	"github.com/sandfall/strata/pkg/world"
)

// storeFlags selects and configures a preset store backend.
type storeFlags struct {
	backend   string
	root      string
	redisAddr string
	mongoURI  string
	folder    string
}

// open builds the configured backend. Callers own Close.
func (f *storeFlags) open(ctx context.Context) (store.Store, error) {
	switch f.backend {
	case "file":
		return store.NewFileStore(f.root)
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{Addr: f.redisAddr})
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{URI: f.mongoURI})
	default:
		return nil, fmt.Errorf("unknown backend %q (file, redis, mongo)", f.backend)
	}
}

// newStoreCmd creates the store command group.
func newStoreCmd() *cobra.Command {
	flags := &storeFlags{}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the preset library",
		Long: `Manage the preset library.

Presets are stored under folder/name keys. The default backend keeps them
as JSON files under ~/.config/strata/presets; the redis and mongo backends
exist for server deployments and honor STRATA_REDIS_ADDR and
STRATA_MONGO_URI when no explicit address is given.`,
	}

	cmd.PersistentFlags().StringVar(&flags.backend, "backend", "file", "storage backend: file, redis, mongo")
	cmd.PersistentFlags().StringVar(&flags.root, "root", "", "file backend root directory")
	cmd.PersistentFlags().StringVar(&flags.redisAddr, "redis-addr", "", "redis address (host:port)")
	cmd.PersistentFlags().StringVar(&flags.mongoURI, "mongo-uri", "", "mongodb connection string")
	cmd.PersistentFlags().StringVar(&flags.folder, "folder", store.DefaultFolder, "preset folder")

	cmd.AddCommand(newStoreLsCmd(flags))
	cmd.AddCommand(newStoreGetCmd(flags))
	cmd.AddCommand(newStorePutCmd(flags))
	cmd.AddCommand(newStoreRmCmd(flags))
	return cmd
}

func newStoreLsCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			infos, err := st.List(ctx, flags.folder)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No presets in %s", flags.folder)
				return nil
			}
			for _, info := range infos {
				if info.UpdatedAt.IsZero() {
					printKeyValue(info.Name, "")
				} else {
					printKeyValue(info.Name, info.UpdatedAt.Format("2006-01-02 15:04"))
				}
			}
			return nil
		},
	}
}

func newStoreGetCmd(flags *storeFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Fetch a stored preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.Load(ctx, flags.folder, args[0])
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, rec.Data, 0o644); err != nil {
					return fmt.Errorf("write preset: %w", err)
				}
				printFile(output)
				return nil
			}
			fmt.Println(string(rec.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newStorePutCmd(flags *storeFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "put <name> <preset.json>",
		Short: "Store a preset",
		Long: `Store a preset.

The document is validated before storing; a preset with fatal findings is
rejected unless --force is given. Warnings never block a put.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := readPresetFile(args[1])
			if err != nil {
				return err
			}

			doc, err := preset.ParseDocument(data)
			if err != nil {
				return err
			}
			_, outcome := preset.Validate(doc, world.NewTable())
			for _, w := range outcome.Warnings {
				printValidationWarning(w)
			}
			if !outcome.OK && !force {
				printError("preset is invalid: %s (use --force to store anyway)", outcome.Err.Message)
				return outcome.Err
			}

			st, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			rec := &store.Record{Folder: flags.folder, Name: args[0], Data: data}
			if err := st.Save(ctx, rec); err != nil {
				return err
			}
			printSuccess("Stored %s/%s", flags.folder, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "store even if validation fails")
	return cmd
}

func newStoreRmCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a stored preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(ctx, flags.folder, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s/%s", flags.folder, args[0])
			return nil
		},
	}
}

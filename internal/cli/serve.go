package cli

import (
	"github.com/spf13/cobra"

	"github.com/sandfall/strata/internal/api"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var addr string
	flags := &storeFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

The API exposes preset validation, terrain generation, and the stored
preset library as JSON endpoints. The store flags select which backend the
library endpoints use; redis or mongo are the usual choices when more than
one instance serves the same library.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			st, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			server := api.NewServer(st, nil, logger)
			return server.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&flags.backend, "backend", "file", "storage backend: file, redis, mongo")
	cmd.Flags().StringVar(&flags.root, "root", "", "file backend root directory")
	cmd.Flags().StringVar(&flags.redisAddr, "redis-addr", "", "redis address (host:port)")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo-uri", "", "mongodb connection string")
	return cmd
}

package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fontlaborg/typg/internal/httpapi"
)

func newServeCommand(logger zerolog.Logger) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP search API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info().Str("addr", addr).Msg("starting typg http server")
			server := httpapi.New(logger)
			return server.Start(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	return cmd
}

package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yt-dashboard/internal/api"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve [query]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Serve the view over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.store.Close()

			if err := s.store.Initialize(queryArg(args)); err != nil {
				return err
			}
			if port == "" {
				port = s.cfg.Port
			}
			return api.NewServer(s.cfg, s.store, s.log).Serve(ctx, port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default $PORT)")
	return cmd
}

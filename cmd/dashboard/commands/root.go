package commands

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yt-dashboard/internal/api"
	"github.com/yt-dashboard/internal/config"
	"github.com/yt-dashboard/internal/logging"
	"github.com/yt-dashboard/internal/store"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Browse the latest videos page by page",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		NewViewCommand(),
		NewReplCommand(),
		NewServeCommand(),
	)

	return rootCmd
}

// session is a configured store ready for intents
type session struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    *store.Store
	location *store.MemoryLocation
}

func newSession(ctx context.Context) (*session, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg)
	if envErr != nil {
		logger.Debug(".env file not found")
	}

	source, err := api.NewSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	loc := store.NewMemoryLocation("/")
	st := store.New(source, store.Options{
		PageSize: cfg.PageSize,
		Location: loc,
		Logger:   logger,
	})
	return &session{cfg: cfg, log: logger, store: st, location: loc}, nil
}

func queryArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

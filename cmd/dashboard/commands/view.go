package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/yt-dashboard/internal/api"
	"github.com/yt-dashboard/internal/store"
)

// NewViewCommand creates the one-shot view command
func NewViewCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "view [query]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Load the view for a query string and print it as JSON",
		Example: `  dashboard view
  dashboard view "page=3&sort=title&order=asc"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.store.Close()

			snap, err := loadView(ctx, s.store, queryArg(args))
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), api.ViewJSON(snap)); err != nil {
				return err
			}
			if snap.Status.IsFailed() {
				return errors.New(snap.Status.Reason)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the page")
	return cmd
}

// loadView initializes st with query and waits until the fetch has settled
func loadView(ctx context.Context, st *store.Store, query string) (store.Snapshot, error) {
	changes, unsubscribe := st.Subscribe()
	defer unsubscribe()

	if err := st.Initialize(query); err != nil {
		return store.Snapshot{}, err
	}

	for {
		snap := st.Snapshot()
		if !snap.Status.IsLoading() {
			return snap, nil
		}
		select {
		case _, ok := <-changes:
			if !ok {
				return st.Snapshot(), store.ErrClosed
			}
		case <-ctx.Done():
			return snap, fmt.Errorf("waiting for videos: %w", ctx.Err())
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

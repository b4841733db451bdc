package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yt-dashboard/internal/models"
	"github.com/yt-dashboard/internal/store"
)

const replHelp = `intents:
  next | prev          move one page
  page N               jump to page N
  search [TEXT]        filter the page (no TEXT clears)
  sort id|title|published_at
  order asc|desc       set the sort order
  toggle               flip the sort order
  reload               fetch the current page again
  show                 print the view
  quit`

var (
	errQuit = errors.New("quit")
	errHelp = errors.New("help")
)

// NewReplCommand creates the interactive command
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [query]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Drive the view with intents read from stdin",
		Long:  "Reads one intent per line and prints the view after each one.\n\n" + replHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.store.Close()

			if err := s.store.Initialize(queryArg(args)); err != nil {
				return err
			}
			return runRepl(s.store, s.location, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runRepl(st *store.Store, loc *store.MemoryLocation, in io.Reader, out io.Writer) error {
	st.Wait()
	render(out, st.Snapshot(), loc)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := applyIntent(st, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, errHelp):
			fmt.Fprintln(out, replHelp)
			continue
		case errors.Is(err, store.ErrClosed):
			return err
		case err != nil:
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		st.Wait()
		render(out, st.Snapshot(), loc)
	}
}

// applyIntent parses one line of input and forwards it to the store
func applyIntent(st *store.Store, line string) error {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "next", "n":
		return st.NextPage()
	case "prev", "previous", "p":
		return st.PreviousPage()
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("page needs a number, got %q", arg)
		}
		return st.SetPage(n)
	case "search", "s":
		return st.SetSearchTerm(arg)
	case "sort":
		return st.SetSortKey(models.SortKey(arg))
	case "order":
		return st.SetSortOrder(models.SortOrder(arg))
	case "toggle", "t":
		return st.ToggleSortOrder()
	case "reload", "r":
		return st.Reload()
	case "show":
		return nil
	case "help", "?":
		return errHelp
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown intent %q, try help", verb)
	}
}

func render(w io.Writer, snap store.Snapshot, loc *store.MemoryLocation) {
	v := snap.View
	fmt.Fprintf(w, "[%s] page=%d search=%q sort=%s order=%s  %s\n",
		snap.Status.State, v.Page, v.SearchTerm, v.SortKey, v.SortOrder, loc.URL())

	if snap.Status.IsFailed() {
		fmt.Fprintf(w, "  %s (reload to retry)\n", snap.Status.Reason)
		return
	}

	meta, ok := snap.Pagination()
	if !ok {
		return
	}
	rows := snap.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(w, "  no videos")
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %3d. %s | %s | %s\n",
			row.Index, row.Video.Title, row.Video.ChannelTitle, row.Video.PublishedAt.Format("2006-01-02"))
	}

	var nav []string
	if meta.HasPrevious {
		nav = append(nav, "prev")
	}
	if meta.HasNext {
		nav = append(nav, "next")
	}
	fmt.Fprintf(w, "  page %d of %d, %d videos %v\n", meta.CurrentPage, meta.TotalPages, meta.TotalCount, nav)
}

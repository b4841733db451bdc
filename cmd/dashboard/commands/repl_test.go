package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt-dashboard/internal/models"
	"github.com/yt-dashboard/internal/store"
)

type staticSource struct {
	failing bool
}

func (s *staticSource) ListVideos(ctx context.Context, page, pageSize int) (*models.Page, error) {
	if s.failing {
		return nil, errors.New("connection refused")
	}
	return &models.Page{
		Records: []models.VideoRecord{
			{ID: int64((page-1)*pageSize + 1), Title: "Second Test", ChannelTitle: "Cricket", PublishedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
			{ID: int64((page-1)*pageSize + 2), Title: "asia cup", ChannelTitle: "Sports", PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		Pagination: models.PaginationMeta{
			CurrentPage: page,
			TotalPages:  3,
			TotalCount:  6,
			HasPrevious: page > 1,
			HasNext:     page < 3,
		},
	}, nil
}

func newReplStore(t *testing.T, src store.Source) (*store.Store, *store.MemoryLocation) {
	t.Helper()
	loc := store.NewMemoryLocation("/")
	st := store.New(src, store.Options{PageSize: 2, Location: loc})
	t.Cleanup(st.Close)
	return st, loc
}

func TestApplyIntent(t *testing.T) {
	st, loc := newReplStore(t, &staticSource{})
	require.NoError(t, st.Initialize(""))
	st.Wait()

	require.NoError(t, applyIntent(st, "page 3"))
	require.NoError(t, applyIntent(st, "prev"))
	require.NoError(t, applyIntent(st, "search  asia cup "))
	require.NoError(t, applyIntent(st, "sort title"))
	require.NoError(t, applyIntent(st, "toggle"))
	st.Wait()

	view := st.Snapshot().View
	assert.Equal(t, models.ViewState{
		Page:       2,
		SearchTerm: "asia cup",
		SortKey:    models.SortByTitle,
		SortOrder:  models.Ascending,
	}, view)
	assert.Equal(t, "/?order=asc&page=2&search=asia+cup&sort=title", loc.URL())

	assert.ErrorIs(t, applyIntent(st, "page 0"), store.ErrInvalidPage)
	assert.ErrorIs(t, applyIntent(st, "sort views"), store.ErrInvalidSortKey)
	assert.ErrorIs(t, applyIntent(st, "order up"), store.ErrInvalidSortOrder)
	assert.Error(t, applyIntent(st, "page two"))
	assert.Error(t, applyIntent(st, "dance"))
	assert.ErrorIs(t, applyIntent(st, "quit"), errQuit)
	assert.ErrorIs(t, applyIntent(st, "help"), errHelp)
}

func TestRunReplRendersEachStep(t *testing.T) {
	st, loc := newReplStore(t, &staticSource{})
	require.NoError(t, st.Initialize("page=2"))

	var out bytes.Buffer
	in := strings.NewReader("next\nsearch asia\nbogus\nquit\nnext\n")
	require.NoError(t, runRepl(st, loc, in, &out))

	text := out.String()
	assert.Contains(t, text, "[loaded] page=2")
	assert.Contains(t, text, "[loaded] page=3")
	assert.Contains(t, text, "    5. Second Test | Cricket | 2025-02-01")
	assert.Contains(t, text, "    5. asia cup | Sports | 2025-01-01")
	assert.Contains(t, text, `unknown intent "bogus"`)
	assert.Equal(t, 3, st.Snapshot().View.Page, "input after quit is ignored")
}

func TestRunReplPrintsHelp(t *testing.T) {
	st, loc := newReplStore(t, &staticSource{})
	require.NoError(t, st.Initialize(""))

	var out bytes.Buffer
	require.NoError(t, runRepl(st, loc, strings.NewReader("help\n?\n"), &out))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, replHelp))
	assert.NotContains(t, text, "error:")
}

func TestRunReplShowsFailure(t *testing.T) {
	st, loc := newReplStore(t, &staticSource{failing: true})
	require.NoError(t, st.Initialize(""))

	var out bytes.Buffer
	require.NoError(t, runRepl(st, loc, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "[failed]")
	assert.Contains(t, out.String(), store.FetchFailedMessage)
}

func TestLoadViewWaitsForFetch(t *testing.T) {
	st, _ := newReplStore(t, &staticSource{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := loadView(ctx, st, "?page=2&order=asc")
	require.NoError(t, err)

	assert.True(t, snap.Displayable())
	assert.Equal(t, 2, snap.View.Page)
	rows := snap.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Index)
	assert.Equal(t, "asia cup", rows[0].Video.Title)
}

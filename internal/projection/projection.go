// Package projection derives the displayed video sequence from a fetched page.
//
// Filtering and sorting only ever see the records of the page that was
// fetched; records on other pages of the collection are never considered.
package projection

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/yt-dashboard/internal/models"
)

// Row is a projected record with its 1-based position in the whole collection
type Row struct {
	Index int                `json:"index"`
	Video models.VideoRecord `json:"video"`
}

// Project filters page by search and orders the result by key and order.
// The page is never modified. Records with equal sort keys keep their fetch order.
func Project(page *models.Page, search string, key models.SortKey, order models.SortOrder) []models.VideoRecord {
	if page == nil || len(page.Records) == 0 {
		return []models.VideoRecord{}
	}

	// A Caser carries state and must not be shared between goroutines.
	fold := cases.Fold()
	needle := fold.String(search)

	out := make([]models.VideoRecord, 0, len(page.Records))
	for _, v := range page.Records {
		if matches(fold, v, needle) {
			out = append(out, v)
		}
	}

	compare := comparator(fold, key)
	if order == models.Ascending {
		slices.SortStableFunc(out, compare)
	} else {
		slices.SortStableFunc(out, func(a, b models.VideoRecord) int {
			return -compare(a, b)
		})
	}
	return out
}

func matches(fold cases.Caser, v models.VideoRecord, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(fold.String(v.Title), needle) ||
		strings.Contains(fold.String(v.ChannelTitle), needle)
}

func comparator(fold cases.Caser, key models.SortKey) func(a, b models.VideoRecord) int {
	switch key {
	case models.SortByTitle:
		return func(a, b models.VideoRecord) int {
			return strings.Compare(fold.String(a.Title), fold.String(b.Title))
		}
	case models.SortByPublishedAt:
		return func(a, b models.VideoRecord) int {
			return a.PublishedAt.Compare(b.PublishedAt)
		}
	default:
		return func(a, b models.VideoRecord) int {
			return cmp.Compare(a.ID, b.ID)
		}
	}
}

// DisplayIndex returns the 1-based row number shown for the record at
// localIndex on currentPage.
func DisplayIndex(currentPage, pageSize, localIndex int) int {
	return (currentPage-1)*pageSize + localIndex + 1
}

// Rows projects page for view and numbers each record for display
func Rows(page *models.Page, view models.ViewState, pageSize int) []Row {
	records := Project(page, view.SearchTerm, view.SortKey, view.SortOrder)
	if len(records) == 0 {
		return []Row{}
	}

	current := page.Pagination.CurrentPage
	if current < 1 {
		current = view.Page
	}

	rows := make([]Row, len(records))
	for i, v := range records {
		rows[i] = Row{
			Index: DisplayIndex(current, pageSize, i),
			Video: v,
		}
	}
	return rows
}

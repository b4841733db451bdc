package models

// SortKey represents the field the video list is ordered by
type SortKey string

const (
	SortByID          SortKey = "id"
	SortByTitle       SortKey = "title"
	SortByPublishedAt SortKey = "published_at"
)

// Valid reports whether k is one of the known sort keys
func (k SortKey) Valid() bool {
	switch k {
	case SortByID, SortByTitle, SortByPublishedAt:
		return true
	}
	return false
}

// SortOrder represents the sorting direction
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Valid reports whether o is asc or desc
func (o SortOrder) Valid() bool {
	return o == Ascending || o == Descending
}

// Reverse returns the opposite direction
func (o SortOrder) Reverse() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// Defaults applied when a query parameter is absent or invalid
const (
	DefaultPage      = 1
	DefaultSortKey   = SortByPublishedAt
	DefaultSortOrder = Descending
)

// ViewState holds the user-controllable parameters of the current list view
type ViewState struct {
	Page       int       `json:"page"`
	SearchTerm string    `json:"search"`
	SortKey    SortKey   `json:"sort"`
	SortOrder  SortOrder `json:"order"`
}

// DefaultViewState returns the view shown at the bare path
func DefaultViewState() ViewState {
	return ViewState{
		Page:      DefaultPage,
		SortKey:   DefaultSortKey,
		SortOrder: DefaultSortOrder,
	}
}

// IsDefault reports whether every field equals its default
func (v ViewState) IsDefault() bool {
	return v == DefaultViewState()
}

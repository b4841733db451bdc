package store

import "errors"

// FetchFailedMessage is the only failure reason shown to the user
const FetchFailedMessage = "Failed to fetch videos"

var (
	ErrInvalidPage      = errors.New("page must be at least 1")
	ErrInvalidSortKey   = errors.New("unknown sort key")
	ErrInvalidSortOrder = errors.New("sort order must be asc or desc")
	ErrClosed           = errors.New("store is closed")
)

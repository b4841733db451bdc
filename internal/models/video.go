package models

import "time"

const (
	youtubeWatchBaseURL   = "https://www.youtube.com/watch?v="
	youtubeChannelBaseURL = "https://www.youtube.com/channel/"
)

// VideoRecord represents a stored YouTube video as returned by the videos API
type VideoRecord struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	PublishedAt  time.Time `json:"published_at"`
	ThumbnailURL string    `json:"thumbnail_url"`
	VideoID      string    `json:"video_id"`
}

// WatchURL returns the YouTube watch link for the video
func (v VideoRecord) WatchURL() string {
	if v.VideoID == "" {
		return ""
	}
	return youtubeWatchBaseURL + v.VideoID
}

// ChannelURL returns the YouTube channel link for the video's channel
func (v VideoRecord) ChannelURL() string {
	if v.ChannelID == "" {
		return ""
	}
	return youtubeChannelBaseURL + v.ChannelID
}

// PaginationMeta describes where a fetched page sits in the full collection
type PaginationMeta struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Page is one fetched batch of records plus its pagination metadata.
// A Page is replaced wholesale on every successful fetch and never merged.
type Page struct {
	Records    []VideoRecord  `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// VideoListResponse represents the response body of GET /videos
type VideoListResponse struct {
	Data       []VideoRecord  `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// Page converts the wire response into a Page
func (r VideoListResponse) Page() *Page {
	records := r.Data
	if records == nil {
		records = []VideoRecord{}
	}
	return &Page{
		Records:    records,
		Pagination: r.Pagination,
	}
}

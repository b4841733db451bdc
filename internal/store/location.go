package store

import "sync"

// Location receives the canonical query string whenever the view state changes.
// It stands in for the browser address bar.
type Location interface {
	SetQuery(query string)
}

// LocationFunc adapts a plain function to Location
type LocationFunc func(query string)

// SetQuery calls f(query)
func (f LocationFunc) SetQuery(query string) { f(query) }

// MemoryLocation is an in-process address bar that records every query it was given
type MemoryLocation struct {
	mu      sync.RWMutex
	path    string
	query   string
	history []string
}

// NewMemoryLocation creates a location rooted at path, e.g. "/" or "/videos"
func NewMemoryLocation(path string) *MemoryLocation {
	if path == "" {
		path = "/"
	}
	return &MemoryLocation{path: path}
}

// SetQuery replaces the current query and appends it to the history
func (l *MemoryLocation) SetQuery(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = query
	l.history = append(l.history, query)
}

// Query returns the current query without a leading '?'
func (l *MemoryLocation) Query() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query
}

// URL returns the path plus query, or the bare path for the default view
func (l *MemoryLocation) URL() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.query == "" {
		return l.path
	}
	return l.path + "?" + l.query
}

// History returns a copy of every query pushed so far
func (l *MemoryLocation) History() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]string, len(l.history))
	copy(cp, l.history)
	return cp
}

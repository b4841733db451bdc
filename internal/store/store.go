// Package store owns the list view state: the ViewState, the last fetched page
// and the request lifecycle.
//
// Every intent is applied as one atomic transition. Only page changes trigger a
// fetch; search and sort are applied locally by the projection package over the
// page already held. Each fetch carries a token taken from a counter that only
// grows, and a completion is committed only if its token is still the latest one
// issued, so the most recently requested page always wins regardless of the order
// responses arrive in.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yt-dashboard/internal/models"
	"github.com/yt-dashboard/internal/projection"
	"github.com/yt-dashboard/internal/querystate"
)

// DefaultPageSize is the number of records requested per page
const DefaultPageSize = 10

// Source fetches one page of videos
type Source interface {
	ListVideos(ctx context.Context, page, pageSize int) (*models.Page, error)
}

// Options configures a Store
type Options struct {
	PageSize int
	Location Location
	Logger   logrus.FieldLogger
}

// Snapshot is a consistent read of the store at one version
type Snapshot struct {
	View     models.ViewState     `json:"state"`
	Query    string               `json:"query"`
	Status   models.RequestStatus `json:"status"`
	Page     *models.Page         `json:"-"`
	PageSize int                  `json:"page_size"`
	Version  uint64               `json:"version"`
}

// Displayable reports whether the list and pagination controls should be shown.
// A page retained from before a failure is not displayable.
func (s Snapshot) Displayable() bool {
	return s.Status.IsLoaded() && s.Page != nil
}

// Rows returns the projected, numbered records, or an empty slice when nothing
// is displayable.
func (s Snapshot) Rows() []projection.Row {
	if !s.Displayable() {
		return []projection.Row{}
	}
	return projection.Rows(s.Page, s.View, s.PageSize)
}

// Pagination returns the metadata of the displayed page
func (s Snapshot) Pagination() (models.PaginationMeta, bool) {
	if !s.Displayable() {
		return models.PaginationMeta{}, false
	}
	return s.Page.Pagination, true
}

// Store is the single writer of the list view state
type Store struct {
	source   Source
	location Location
	pageSize int
	log      logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	// pushMu orders Location pushes; it is never held together with mu.
	pushMu        sync.Mutex
	pushedVersion uint64

	mu          sync.Mutex
	view        models.ViewState
	query       string
	page        *models.Page
	status      models.RequestStatus
	token       uint64
	inflight    context.CancelFunc
	version     uint64
	closed      bool
	subscribers map[int]chan struct{}
	nextSubID   int
	pending     int
	idle        chan struct{}
}

// locationPush is a canonical query waiting to be handed to the Location
type locationPush struct {
	query   string
	version uint64
	changed bool
}

// New creates a store in the Idle state holding the default view
func New(source Source, opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.PanicLevel)
		opts.Logger = logger
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		source:      source,
		location:    opts.Location,
		pageSize:    opts.PageSize,
		log:         opts.Logger.WithField("component", "store"),
		ctx:         ctx,
		cancel:      cancel,
		view:        models.DefaultViewState(),
		status:      models.Idle(),
		subscribers: make(map[int]chan struct{}),
	}
}

// Initialize decodes query into the view state, corrects the location to the
// canonical query and fetches the decoded page.
func (s *Store) Initialize(query string) error {
	return s.transition("initialize", func() error {
		s.view = querystate.Decode(query)
		// Forces a push when the incoming query was not canonical.
		s.query = strings.TrimPrefix(query, "?")
		s.fetch()
		return nil
	})
}

// SetPage moves to page n and fetches it. No upper bound is enforced; the
// source decides what an out-of-range page contains.
func (s *Store) SetPage(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, n)
	}
	return s.transition("set_page", func() error {
		s.view.Page = n
		s.fetch()
		return nil
	})
}

// NextPage moves forward one page
func (s *Store) NextPage() error {
	return s.transition("next_page", func() error {
		s.view.Page++
		s.fetch()
		return nil
	})
}

// PreviousPage moves back one page
func (s *Store) PreviousPage() error {
	return s.transition("previous_page", func() error {
		if s.view.Page <= 1 {
			return fmt.Errorf("%w: already on page %d", ErrInvalidPage, s.view.Page)
		}
		s.view.Page--
		s.fetch()
		return nil
	})
}

// SetSearchTerm changes the local search term. The current page is not refetched.
func (s *Store) SetSearchTerm(term string) error {
	return s.transition("set_search", func() error {
		s.view.SearchTerm = term
		return nil
	})
}

// SetSortKey changes the local sort key without refetching
func (s *Store) SetSortKey(key models.SortKey) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}
	return s.transition("set_sort", func() error {
		s.view.SortKey = key
		return nil
	})
}

// SetSortOrder changes the local sort direction without refetching
func (s *Store) SetSortOrder(order models.SortOrder) error {
	if !order.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, order)
	}
	return s.transition("set_order", func() error {
		s.view.SortOrder = order
		return nil
	})
}

// ToggleSortOrder flips between ascending and descending
func (s *Store) ToggleSortOrder() error {
	return s.transition("toggle_order", func() error {
		s.view.SortOrder = s.view.SortOrder.Reverse()
		return nil
	})
}

// Reload fetches the current page again
func (s *Store) Reload() error {
	return s.transition("reload", func() error {
		s.fetch()
		return nil
	})
}

// Snapshot returns the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		View:     s.view,
		Query:    s.query,
		Status:   s.status,
		Page:     s.page,
		PageSize: s.pageSize,
		Version:  s.version,
	}
}

// Subscribe returns a channel that receives a signal after every state change.
// Signals coalesce: a slow reader sees at least one signal after the latest
// change and should read Snapshot on each. The returned func unsubscribes and
// closes the channel.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	if s.closed {
		close(ch)
	} else {
		s.subscribers[id] = ch
	}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close cancels every in-flight fetch. Responses arriving afterwards are
// dropped and further intents return ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.log.Debug("store closed")
}

// Wait blocks until no fetch is in flight, including fetches issued by other
// goroutines while it waits. It is safe to call concurrently with intents.
func (s *Store) Wait() {
	s.mu.Lock()
	if s.pending == 0 {
		s.mu.Unlock()
		return
	}
	idle := s.idle
	s.mu.Unlock()
	<-idle
}

// transition applies fn atomically, then publishes the canonical query and
// notifies subscribers. Nothing is published when fn fails. The Location is
// updated after mu is released, so it may read the store.
func (s *Store) transition(intent string, fn func() error) error {
	push, err := s.apply(intent, fn)
	if err != nil {
		return err
	}
	s.push(push)
	return nil
}

func (s *Store) apply(intent string, fn func() error) (locationPush, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return locationPush{}, ErrClosed
	}
	if err := fn(); err != nil {
		return locationPush{}, err
	}

	s.log.WithFields(logrus.Fields{
		"intent": intent,
		"page":   s.view.Page,
		"search": s.view.SearchTerm,
		"sort":   s.view.SortKey,
		"order":  s.view.SortOrder,
	}).Debug("view state changed")

	return s.publishLocked(), nil
}

// publishLocked bumps the version, records the canonical query and notifies
// subscribers. The returned push must be applied once mu is released.
func (s *Store) publishLocked() locationPush {
	s.version++
	push := locationPush{version: s.version}
	if q := querystate.Encode(s.view); q != s.query {
		s.query = q
		push.query = q
		push.changed = true
	}
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return push
}

// push hands a changed query to the Location. A push older than one already
// delivered is dropped, so the Location always ends on the latest query.
// Must be called without mu held.
func (s *Store) push(p locationPush) {
	if !p.changed || s.location == nil {
		return
	}
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	if p.version <= s.pushedVersion {
		return
	}
	s.pushedVersion = p.version
	s.location.SetQuery(p.query)
}

// fetch issues a request for the current page. Must be called with mu held.
func (s *Store) fetch() {
	if s.inflight != nil {
		s.inflight()
	}
	s.token++
	token := s.token
	page := s.view.Page

	ctx, cancel := context.WithCancel(s.ctx)
	s.inflight = cancel
	s.status = models.Loading()

	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++
	go s.run(ctx, cancel, token, page)
}

func (s *Store) run(ctx context.Context, cancel context.CancelFunc, token uint64, page int) {
	defer s.settle()
	defer cancel()

	result, err := s.source.ListVideos(ctx, page, s.pageSize)
	if push, ok := s.commit(token, page, result, err); ok {
		s.push(push)
	}
}

// settle marks one fetch as returned and releases Wait when none remain
func (s *Store) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
}

// commit applies a fetch result if its token is still the latest one
func (s *Store) commit(token uint64, page int, result *models.Page, err error) (locationPush, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.log.WithFields(logrus.Fields{"page": page, "token": token})
	if s.closed {
		entry.Debug("dropping response after close")
		return locationPush{}, false
	}
	if token != s.token {
		entry.WithField("latest_token", s.token).Debug("dropping stale response")
		return locationPush{}, false
	}
	s.inflight = nil

	if err != nil {
		entry.WithError(err).Error("fetch videos failed")
		// The previous page is retained but no longer displayable.
		s.status = models.Failed(FetchFailedMessage)
	} else {
		if result == nil {
			result = &models.Page{Records: []models.VideoRecord{}}
		}
		entry.WithField("records", len(result.Records)).Info("fetched videos")
		s.page = result
		s.status = models.Loaded()
	}
	return s.publishLocked(), true
}

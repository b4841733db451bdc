package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yt-dashboard/internal/config"
	"github.com/yt-dashboard/internal/logging"
	"github.com/yt-dashboard/internal/models"
	"github.com/yt-dashboard/internal/store"
)

// Server exposes the list view over HTTP. It only forwards intents to the
// store and renders snapshots; all state lives in the store.
type Server struct {
	router *gin.Engine
	store  *store.Store
	log    logrus.FieldLogger
}

type initRequest struct {
	Query string `json:"query"`
}

type pageRequest struct {
	Page  *int `json:"page" binding:"omitempty,gte=1"`
	Delta *int `json:"delta" binding:"omitempty,oneof=-1 1"`
}

type searchRequest struct {
	Search string `json:"search"`
}

type sortRequest struct {
	Sort string `json:"sort" binding:"required,oneof=id title published_at"`
}

type orderRequest struct {
	Order string `json:"order" binding:"omitempty,oneof=asc desc"`
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, st *store.Store, logger logrus.FieldLogger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.GinMiddleware(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router: router,
		store:  st,
		log:    logger.WithField("component", "server"),
	}
	server.setupRoutes()
	return server
}

// setupRoutes configures all the routes for the server
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	s.router.GET("/view", s.getView)

	view := s.router.Group("/view")
	view.POST("/init", s.initView)
	view.POST("/page", s.changePage)
	view.POST("/search", s.changeSearch)
	view.POST("/sort", s.changeSortKey)
	view.POST("/order", s.changeSortOrder)
	view.POST("/reload", s.reload)
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve runs the server on port until ctx is done, then shuts it down
func (s *Server) Serve(ctx context.Context, port string) error {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("port", port).Info("server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// getView returns the current snapshot
func (s *Server) getView(c *gin.Context) {
	c.JSON(http.StatusOK, ViewJSON(s.store.Snapshot()))
}

// initView initializes the view from a query string
func (s *Server) initView(c *gin.Context) {
	var req initRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	s.respond(c, s.store.Initialize(req.Query))
}

// changePage handles absolute and relative page changes
func (s *Server) changePage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var err error
	switch {
	case req.Page != nil && req.Delta != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and delta are mutually exclusive"})
		return
	case req.Page != nil:
		err = s.store.SetPage(*req.Page)
	case req.Delta != nil && *req.Delta > 0:
		err = s.store.NextPage()
	case req.Delta != nil:
		err = s.store.PreviousPage()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "page or delta is required"})
		return
	}
	s.respond(c, err)
}

// changeSearch sets the search term
func (s *Server) changeSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.store.SetSearchTerm(req.Search))
}

// changeSortKey sets the sort key
func (s *Server) changeSortKey(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.store.SetSortKey(models.SortKey(req.Sort)))
}

// changeSortOrder sets the sort order, or toggles it when no order is given
func (s *Server) changeSortOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if req.Order == "" {
		s.respond(c, s.store.ToggleSortOrder())
		return
	}
	s.respond(c, s.store.SetSortOrder(models.SortOrder(req.Order)))
}

// reload refetches the current page
func (s *Server) reload(c *gin.Context) {
	s.respond(c, s.store.Reload())
}

func (s *Server) respond(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ViewJSON(s.store.Snapshot()))
	case errors.Is(err, store.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		badRequest(c, err)
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
	})
}

// ViewJSON renders a snapshot for the presentation layer. Videos and
// pagination are only present once the page is loaded, error only on failure.
func ViewJSON(snap store.Snapshot) gin.H {
	body := gin.H{
		"state":   snap.View,
		"query":   snap.Query,
		"status":  snap.Status.State,
		"version": snap.Version,
	}
	if snap.Status.IsFailed() {
		body["error"] = snap.Status.Reason
	}

	meta, ok := snap.Pagination()
	if !ok {
		return body
	}
	body["pagination"] = meta

	rows := snap.Rows()
	videos := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		v := row.Video
		videos = append(videos, gin.H{
			"index":         row.Index,
			"id":            v.ID,
			"title":         v.Title,
			"channel_id":    v.ChannelID,
			"channel_title": v.ChannelTitle,
			"published_at":  v.PublishedAt,
			"thumbnail_url": v.ThumbnailURL,
			"video_id":      v.VideoID,
			"watch_url":     v.WatchURL(),
			"channel_url":   v.ChannelURL(),
		})
	}
	body["videos"] = videos
	return body
}

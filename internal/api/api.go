// Package api serves stored events over HTTP and triggers ingestion runs.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/bizevents/internal/calendar"
	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/ingest"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/metrics"
	"github.com/pfrederiksen/bizevents/internal/storage"
)

// Ingester runs sites and stores their events
type Ingester interface {
	Run(ctx context.Context, sites []string) (*ingest.Report, error)
}

// Server holds the dependencies of the HTTP handlers
type Server struct {
	Store    storage.Store
	Ingester Ingester
	SitesDir string
	Metrics  *metrics.Metrics
	Log      *logger.Logger
	Now      func() time.Time
}

type fetchRequest struct {
	Websites []string `json:"websites" binding:"required,min=1"`
}

type createRequest struct {
	Title     string          `json:"title" binding:"required"`
	Organizer string          `json:"organizer" binding:"required"`
	Link      string          `json:"event_link" binding:"required"`
	Market    string          `json:"market"`
	Industry  string          `json:"industry"`
	Attending string          `json:"attending"`
	Color     string          `json:"color"`
	Note      string          `json:"note"`
	Start     event.Timestamp `json:"start_datetime"`
	End       event.Timestamp `json:"end_datetime"`
	Valid     *bool           `json:"valid"`
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	if s.Log == nil {
		s.Log = logger.Default()
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests())

	events := router.Group("/events")
	events.POST("", s.fetchEvents)
	events.GET("", s.listEvents)
	events.POST("/new", s.createEvent)
	events.GET("/:id", s.getEvent)
	events.PUT("/:id", s.updateEvent)
	events.DELETE("/:id", s.deleteEvent)

	router.GET("/calendar.ics", s.exportCalendar)
	router.GET("/sites", s.listSites)
	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	return router
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := logger.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			s.Log.Error("Request failed", fields, err)
			return
		}
		s.Log.Debug("Request served", fields)
	}
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		abort(c, http.StatusNotFound, "Event not found")
		return
	}
	_ = c.Error(err)
	abort(c, http.StatusInternalServerError, err.Error())
}

func (s *Server) fetchEvents(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "websites must list at least one site")
		return
	}
	if s.Ingester == nil {
		abort(c, http.StatusServiceUnavailable, "ingestion is not configured")
		return
	}

	report, err := s.Ingester.Run(c.Request.Context(), req.Websites)
	if err != nil {
		s.fail(c, fmt.Errorf("running ingestion: %w", err))
		return
	}
	c.JSON(http.StatusOK, report.Events)
}

func (s *Server) listEvents(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	events, err := s.Store.List(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) getEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := s.Store.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// updateEvent applies a partial update. Omitted fields are kept; a null
// start_datetime or end_datetime clears it.
func (s *Server) updateEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var p storage.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, http.StatusBadRequest, "invalid update: "+err.Error())
		return
	}
	e, err := s.Store.Update(c.Request.Context(), id, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := s.Store.Delete(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) createEvent(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "title, organizer and event_link are required")
		return
	}
	valid := true
	if req.Valid != nil {
		valid = *req.Valid
	}
	e, err := s.Store.Create(c.Request.Context(), storage.Event{
		Title:     req.Title,
		Organizer: req.Organizer,
		Link:      req.Link,
		Market:    req.Market,
		Industry:  req.Industry,
		Attending: req.Attending,
		Color:     req.Color,
		Note:      req.Note,
		Start:     req.Start,
		End:       req.End,
		Valid:     valid,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) exportCalendar(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	events, err := s.Store.List(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="events.ics"`)
	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Status(http.StatusOK)
	if err := calendar.Write(c.Writer, events, s.Now()); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) listSites(c *gin.Context) {
	c.JSON(http.StatusOK, ingest.SiteInfos(s.SitesDir))
}

func (s *Server) health(c *gin.Context) {
	if err := s.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func eventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		abort(c, http.StatusBadRequest, "invalid event id")
		return 0, false
	}
	return id, true
}

// parseQuery reads the list filters. valid defaults to true; "all" lifts
// the filter.
func parseQuery(c *gin.Context) (storage.Query, error) {
	q := storage.Query{
		Search:     c.Query("search"),
		Markets:    listParam(c, "market"),
		Industries: listParam(c, "industry"),
		Organizers: listParam(c, "organizer"),
		Sort:       c.DefaultQuery("sort", "start_datetime"),
	}

	switch order := strings.ToLower(c.DefaultQuery("order", "asc")); order {
	case "asc":
	case "desc":
		q.Descending = true
	default:
		return q, fmt.Errorf("invalid order: %s (must be 'asc' or 'desc')", order)
	}

	switch v := strings.ToLower(c.DefaultQuery("valid", "true")); v {
	case "all", "":
	default:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("invalid valid: %s", v)
		}
		q.Valid = &b
	}

	var err error
	if q.StartAfter, err = event.ParseTimestamp(c.Query("start_after")); err != nil {
		return q, fmt.Errorf("invalid start_after: %w", err)
	}
	if q.StartBefore, err = event.ParseTimestamp(c.Query("start_before")); err != nil {
		return q, fmt.Errorf("invalid start_before: %w", err)
	}
	if q.Limit, err = intParam(c, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(c, "offset"); err != nil {
		return q, err
	}
	return q, nil
}

// listParam accepts repeated parameters and comma-separated values.
func listParam(c *gin.Context, name string) []string {
	var out []string
	for _, v := range c.QueryArray(name) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(c *gin.Context, name string) (int, error) {
	s := strings.TrimSpace(c.Query(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, s)
	}
	return n, nil
}

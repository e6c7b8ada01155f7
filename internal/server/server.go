// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the ranking service over HTTP.
//
//	GET /healthz
//	GET /metrics
//	GET /api/venues
//	GET /api/rankings?venue=SOSP&area=databases&year_low=2000&year_high=2025
//	GET /api/distribution?institution=Mit&author=A.%20Smith
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/j-mckerracher/comp-sys-rankings/internal/ranking"
	"github.com/j-mckerracher/comp-sys-rankings/internal/service"
	"github.com/j-mckerracher/comp-sys-rankings/internal/snapshot"
	"github.com/j-mckerracher/comp-sys-rankings/internal/venues"
	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// Server is the HTTP front end of a service.Service.
type Server struct {
	svc    *service.Service
	cfg    types.ServerConfig
	logger *zap.Logger
	engine *gin.Engine
}

// New builds the router for svc.
func New(svc *service.Service, cfg types.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{svc: svc, cfg: cfg, logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestID(), accessLog(logger), observe(svc.Metrics()))

	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(svc.Metrics().Handler()))

	api := s.engine.Group("/api")
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)))
	}
	api.GET("/venues", s.venues)
	api.GET("/rankings", s.rankings)
	api.GET("/distribution", s.distribution)
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) venues(c *gin.Context) {
	cl := s.svc.Classifier()
	out := make(map[string][]string)
	for _, area := range cl.Areas() {
		list, _ := cl.VenuesIn(area)
		out[area] = list
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) rankings(c *gin.Context) {
	sel, err := s.selection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.svc.Rank(c.Request.Context(), sel)
	switch {
	case errors.Is(err, venues.ErrUnclassifiableVenue), errors.Is(err, venues.ErrUnknownArea):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.logger.Error("ranking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ranking failed"})
		return
	}

	cacheStatus := "miss"
	if res.Cached {
		cacheStatus = "hit"
	}
	c.Header("X-Run-ID", res.RunID)
	c.Header("X-Dataset-Origin", string(res.Origin))
	c.Header("X-Cache", cacheStatus)
	c.Data(http.StatusOK, "application/json; charset=utf-8", res.JSON)
}

// selection reads venue, area, year_low and year_high. Venues and areas may
// repeat or be comma separated. With neither, every venue is selected;
// missing years default to the full range.
func (s *Server) selection(c *gin.Context) (ranking.Selection, error) {
	full := s.svc.FullSelection()
	sel := ranking.Selection{
		Venues:   splitList(c.QueryArray("venue")),
		Areas:    splitList(c.QueryArray("area")),
		YearLow:  full.YearLow,
		YearHigh: full.YearHigh,
	}
	if len(sel.Venues) == 0 && len(sel.Areas) == 0 {
		sel.Venues = full.Venues
	}

	var err error
	if v := c.Query("year_low"); v != "" {
		if sel.YearLow, err = strconv.Atoi(v); err != nil {
			return sel, errors.New("year_low must be an integer")
		}
	}
	if v := c.Query("year_high"); v != "" {
		if sel.YearHigh, err = strconv.Atoi(v); err != nil {
			return sel, errors.New("year_high must be an integer")
		}
	}
	return sel, nil
}

func (s *Server) distribution(c *gin.Context) {
	inst, author := c.Query("institution"), c.Query("author")
	if inst == "" || author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "institution and author are required"})
		return
	}
	dist, err := s.svc.Distribution(c.Request.Context(), inst, author)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "author not found in snapshot"})
		return
	case err != nil:
		s.logger.Error("distribution lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, dist)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

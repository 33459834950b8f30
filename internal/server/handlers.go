package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/cleanse369/internal/codec"
	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/session"
)

type beginRequest struct {
	ProgramKey string `json:"program_key"`
	Start      string `json:"start"`
}

type toggleRequest struct {
	Identity string `json:"identity"`
	Day      int    `json:"day"`
	Section  int    `json:"section"`
	Item     int    `json:"item"`
	Done     *bool  `json:"done"`
}

type finishRequest struct {
	Force bool `json:"force"`
}

func (s *Server) handlePrograms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"programs": programViews()})
}

func (s *Server) handleGetCycle(c *gin.Context) {
	e, err := s.acquire(c)
	defer e.mu.Unlock()
	s.respond(c, e, err)
}

func (s *Server) handleBegin(c *gin.Context) {
	var req beginRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	e, warn := s.acquire(c)
	defer e.mu.Unlock()

	start, err := cycle.ParseStart(req.Start, s.now())
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	err = e.coord.Begin(c.Request.Context(), e.sess, req.ProgramKey, start)
	s.respond(c, e, errors.Join(warn, err))
}

func (s *Server) handleToggle(c *gin.Context) {
	var req toggleRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if req.Done == nil {
		writeError(c, http.StatusBadRequest, fmt.Errorf("done is required"))
		return
	}
	e, warn := s.acquire(c)
	defer e.mu.Unlock()

	ctx := c.Request.Context()
	var err error
	if req.Identity != "" {
		_, err = e.coord.Toggle(ctx, e.sess, req.Identity, *req.Done)
	} else {
		_, err = e.coord.ToggleItem(ctx, e.sess, req.Day, req.Section, req.Item, *req.Done)
	}
	s.respond(c, e, errors.Join(warn, err))
}

func (s *Server) handleFinish(c *gin.Context) {
	var req finishRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			return
		}
	}
	e, warn := s.acquire(c)
	defer e.mu.Unlock()

	res, err := e.coord.Finish(c.Request.Context(), e.sess, req.Force)
	err = errors.Join(warn, err)
	if err != nil && !session.IsWarning(err) {
		writeCoordError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"finished":      res.Finished,
		"needs_confirm": res.NeedsConfirm,
		"percent":       cycle.Percent(res.Ratio),
		"session":       s.render(e, err),
	})
}

func (s *Server) handleStartOver(c *gin.Context) {
	e, warn := s.acquire(c)
	defer e.mu.Unlock()

	err := e.coord.StartOver(c.Request.Context(), e.sess)
	s.respond(c, e, errors.Join(warn, err))
}

func (s *Server) handleExport(c *gin.Context) {
	e, _ := s.acquire(c)
	defer e.mu.Unlock()

	data, err := e.coord.Export(e.sess)
	if err != nil {
		writeCoordError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="mm369_progress.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handleImport(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if len(data) > maxImportSize {
		writeError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("import exceeds maximum size of 1MB"))
		return
	}
	e, warn := s.acquire(c)
	defer e.mu.Unlock()

	err = e.coord.Import(c.Request.Context(), e.sess, data)
	s.respond(c, e, errors.Join(warn, err))
}

// respond writes the session view, or an error status when err is more
// than a persistence warning.
func (s *Server) respond(c *gin.Context, e *entry, err error) {
	if err != nil && !session.IsWarning(err) {
		writeCoordError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.render(e, err))
}

func writeCoordError(c *gin.Context, err error) {
	var invalid *cycle.InvalidProgramError
	var validation *codec.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   validation.Error(),
			"missing": validation.Missing,
		})
	case errors.As(err, &invalid), errors.Is(err, cycle.ErrUnknownItem):
		writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, session.ErrNoActiveCycle):
		writeError(c, http.StatusConflict, err)
	default:
		writeError(c, http.StatusInternalServerError, err)
	}
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

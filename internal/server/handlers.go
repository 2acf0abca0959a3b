package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/sentidash/internal/llm"
	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/session"
)

const sessionParam = "session"

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// selection loads the caller's selection. Unknown or missing sessions
// read as the unconstrained selection.
func (s *Server) selection(c *gin.Context) model.Selection {
	id := c.Query(sessionParam)
	if id == "" {
		return model.Selection{}
	}
	return s.sessions.Load(c.Request.Context(), id)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": model.Version, "rows": s.dash.Store().Len()})
}

func (s *Server) newSession(c *gin.Context) {
	id, err := s.sessions.New(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error(err, "create session")
		c.JSON(http.StatusInternalServerError, errorBody("could not create session"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": id})
}

func (s *Server) getSelection(c *gin.Context) {
	id := c.Query(sessionParam)
	if id == "" {
		c.JSON(http.StatusBadRequest, errorBody("session is required"))
		return
	}
	sel, err := s.sessions.Get(c.Request.Context(), id)
	if errors.Is(err, session.ErrNoSession) {
		c.JSON(http.StatusNotFound, errorBody("session not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, session.Save(sel))
}

func (s *Server) putSelection(c *gin.Context) {
	id := c.Query(sessionParam)
	if id == "" {
		c.JSON(http.StatusBadRequest, errorBody("session is required"))
		return
	}

	var snap session.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid snapshot: "+err.Error()))
		return
	}

	sel := session.Restore(snap)
	if err := s.sessions.Put(c.Request.Context(), id, sel); err != nil {
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selection": session.Save(sel),
		"stale":     s.dash.Stale(c.Request.Context(), sel),
	})
}

func (s *Server) options(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.Options(c.Request.Context(), s.selection(c)))
}

func (s *Server) optionsFor(c *gin.Context) {
	dim, err := model.ParseDimension(c.Param("dimension"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.dash.OptionsFor(c.Request.Context(), dim, s.selection(c)))
}

func (s *Server) chart(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.Chart(s.selection(c)))
}

func (s *Server) timeseries(c *gin.Context) {
	window := 0
	if raw := c.Query("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorBody("window must be a non-negative integer"))
			return
		}
		window = n
	}
	c.JSON(http.StatusOK, s.dash.Trend(s.selection(c), window))
}

func (s *Server) features(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.Features(s.selection(c)))
}

func (s *Server) highlights(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.Highlights())
}

func (s *Server) view(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.View(c.DefaultQuery("path", "/")))
}

func (s *Server) click(c *gin.Context) {
	var click model.Click
	if err := c.ShouldBindJSON(&click); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid click: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": s.dash.Click(click, s.selection(c))})
}

func (s *Server) digest(c *gin.Context) {
	if !s.dash.DigestEnabled() {
		c.JSON(http.StatusServiceUnavailable, errorBody(llm.ErrDisabled.Error()))
		return
	}

	d, err := s.dash.Digest(c.Request.Context(), c.Param("model"))
	if err != nil {
		logger.FromContext(c.Request.Context()).Error(err, "digest failed", "model", c.Param("model"))
		c.JSON(http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, d)
}

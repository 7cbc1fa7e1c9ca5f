// Package api exposes the analysis loop over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"adinsight/app"
	"adinsight/domain/core"
	"adinsight/domain/report"
	apperrors "adinsight/internal/errors"
	"adinsight/internal/render"
	"adinsight/internal/telemetry"
	"adinsight/ports"
)

// Server routes analysis requests to the orchestrator and serves stored
// reports. Reports is optional; without it only ad-hoc analyses work.
type Server struct {
	router       *gin.Engine
	orchestrator *app.Orchestrator
	reports      ports.ReportRepository
	dataPath     string
	sink         telemetry.EventSink
}

// NewServer creates the HTTP surface.
func NewServer(orchestrator *app.Orchestrator, reports ports.ReportRepository, dataPath string, sink telemetry.EventSink) *Server {
	if sink == nil {
		sink = telemetry.Nop()
	}
	s := &Server{
		router:       gin.Default(),
		orchestrator: orchestrator,
		reports:      reports,
		dataPath:     dataPath,
		sink:         sink,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	s.router.POST("/api/analyses", s.handleAnalyze)
	s.router.GET("/api/reports", s.handleListReports)
	s.router.GET("/api/reports/:id", s.handleGetReport)
	s.router.GET("/api/reports/:id/html", s.handleGetReportHTML)
}

// Handler returns the router for embedding in an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type analyzeRequest struct {
	Query    string `json:"query" binding:"required"`
	DataFile string `json:"data_file"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	if s.orchestrator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis unavailable: no generation backend configured"})
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	dataPath := req.DataFile
	if dataPath == "" {
		dataPath = s.dataPath
	}

	result, err := s.orchestrator.Run(c.Request.Context(), req.Query, dataPath)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsDataLoadError(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if s.reports != nil {
		if err := s.reports.Save(c.Request.Context(), result.Report); err != nil {
			s.sink.Emit("API", "report_save_error", "error", telemetry.Fields{
				"report_id": result.Report.ReportID,
				"error":     err.Error(),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": result.RunID.String(),
		"plan":   result.Plan,
		"report": result.Report,
	})
}

func (s *Server) handleListReports(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report storage not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	metas, err := s.reports.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": metas})
}

func (s *Server) handleGetReport(c *gin.Context) {
	rep, ok := s.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleGetReportHTML(c *gin.Context) {
	rep, ok := s.loadReport(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", render.HTML(rep))
}

func (s *Server) loadReport(c *gin.Context) (*report.FinalReport, bool) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report storage not configured"})
		return nil, false
	}
	rep, err := s.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return rep, true
}

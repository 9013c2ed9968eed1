package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/pipeline"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/report"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/storage"
)

const indexTemplate = "index.html.tmpl"

type analyzeRequest struct {
	URL string `json:"url" form:"url" binding:"required"`
}

type pageData struct {
	URL          string
	Error        string
	Result       *pipeline.Result
	GaugeSVG     template.HTML
	AnalysisJSON string
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, pageData{})
}

func (s *Server) analyzeForm(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, indexTemplate, pageData{Error: "Please enter a declarations URL."})
		return
	}

	res, err := s.auditor.Run(c.Request.Context(), req.URL)
	if err != nil {
		status, msg := s.errorStatus(req.URL, err)
		c.HTML(status, indexTemplate, pageData{URL: req.URL, Error: msg})
		return
	}

	analysis, _ := json.MarshalIndent(res.Analysis, "", "  ")
	c.HTML(http.StatusOK, indexTemplate, pageData{
		URL:          req.URL,
		Result:       &res,
		GaugeSVG:     template.HTML(res.Report.Gauge.SVG()),
		AnalysisJSON: string(analysis),
	})
}

func (s *Server) analyzeJSON(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	res, err := s.auditor.Run(c.Request.Context(), req.URL)
	if err != nil {
		status, msg := s.errorStatus(req.URL, err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) latestReport(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}
	res, err := s.auditor.Latest(url)
	if err != nil {
		status, msg := s.errorStatus(url, err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, res)
}

// gauge renders the dial for an arbitrary score, as SVG or JSON.
func (s *Server) gauge(c *gin.Context) {
	score, err := strconv.ParseFloat(c.Query("score"), 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be a finite number"})
		return
	}
	g := report.NewGauge(score)
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, g)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(g.SVG()))
}

func (s *Server) errorStatus(url string, err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrEmptyURL):
		return http.StatusBadRequest, "url is required"
	case errors.Is(err, pipeline.ErrNoDeclarations):
		return http.StatusUnprocessableEntity, "no declarations found at this URL"
	case errors.Is(err, storage.ErrReportNotFound):
		return http.StatusNotFound, "no archived report for this URL"
	default:
		s.log.ErrorObj("audit failed", "audit_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return http.StatusBadGateway, "analysis failed: " + err.Error()
	}
}

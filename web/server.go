// Package web serves the browser interface of the trace analyzer.
//
// Every analysis request opens its own read-only database handle and closes
// it before responding, so concurrent requests never share connection state.
package web

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/TheKiteRunner24/tage-trace-analyzer/engine"
	"github.com/TheKiteRunner24/tage-trace-analyzer/report"
	"github.com/TheKiteRunner24/tage-trace-analyzer/tracedb"
)

// Server wires the analysis engine behind an HTTP interface.
type Server struct {
	dbPath string
	router *gin.Engine

	mu          sync.Mutex
	lastRecords []engine.BranchRecord
	lastSummary engine.Summary
}

// New builds a Server for the trace database at dbPath.
func New(dbPath string) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{dbPath: dbPath, router: r}

	r.GET("/", s.handleIndex)
	r.POST("/analyze", s.handleAnalyze)
	r.GET("/export/csv", s.handleExportCSV)
	r.GET("/export/chart", s.handleExportChart)
	r.GET("/health", s.handleHealth)

	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("web: serving trace analysis at http://%s", addr)
	log.Printf("web: database %s", s.dbPath)
	return s.router.Run(addr)
}

// analyzeRequest carries the form values as the page submits them. Numeric
// fields arrive as strings; empty or unparsable values fall back to the
// engine defaults.
type analyzeRequest struct {
	TopN        string `json:"top_n"`
	MinBranches string `json:"min_branches"`
	TickStart   string `json:"tick_start"`
	TickEnd     string `json:"tick_end"`
}

// options translates request strings into engine options.
func (r analyzeRequest) options() []engine.Option {
	var opts []engine.Option
	if n, err := strconv.Atoi(r.TopN); err == nil {
		opts = append(opts, engine.WithTopN(n))
	}
	if n, err := strconv.ParseInt(r.MinBranches, 10, 64); err == nil {
		opts = append(opts, engine.WithMinBranches(n))
	}
	start, serr := strconv.ParseInt(r.TickStart, 10, 64)
	end, eerr := strconv.ParseInt(r.TickEnd, 10, 64)
	if serr == nil && eerr == nil {
		opts = append(opts, engine.WithTickRange(start, end))
	}
	return opts
}

// aggregate runs one full analysis against a fresh database handle.
func (s *Server) aggregate(opts []engine.Option) ([]engine.BranchRecord, error) {
	store, err := tracedb.Open(s.dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return engine.Aggregate(store, opts...)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAnalyze runs the analysis and returns results, summary statistics,
// and an inline chart. Failures are reported in the body so the page can
// surface them without a separate error channel.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": fmt.Sprintf("bad request: %v", err)})
		return
	}

	records, err := s.aggregate(req.options())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"error": "No data found with current filters. Try reducing Minimum Branches.",
		})
		return
	}

	sum := engine.Summarize(records)
	s.mu.Lock()
	s.lastRecords = records
	s.lastSummary = sum
	s.mu.Unlock()

	results := make([]gin.H, len(records))
	for i, r := range records {
		results[i] = gin.H{
			"rank":    i + 1,
			"pc":      fmt.Sprintf("0x%x", r.DisplayAddr),
			"startPc": fmt.Sprintf("0x%x", r.StartAddr<<1),
			"total":   r.Total,
			"mispred": r.Mispredicted,
			"rate":    round2(r.Rate * 100),
		}
	}

	resp := gin.H{
		"results": results,
		"stats": gin.H{
			"total_pcs":     sum.PCs,
			"total_count":   sum.Total,
			"total_mispred": sum.Mispredicted,
			"avg_rate":      round2(sum.OverallRate * 100),
		},
	}

	if data, err := report.RenderChart(records); err != nil {
		log.Printf("web: chart rendering failed: %v", err)
	} else {
		resp["chart_image"] = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	}

	c.JSON(http.StatusOK, resp)
}

// handleExportCSV re-runs the analysis with the query parameters and
// streams the result as a CSV download.
func (s *Server) handleExportCSV(c *gin.Context) {
	records, err := s.aggregate(queryOptions(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=misprediction_analysis.csv")
	c.Header("Content-Type", "text/csv")
	if err := report.WriteCSV(c.Writer, records); err != nil {
		log.Printf("web: csv export failed: %v", err)
	}
}

// handleExportChart re-runs the analysis and returns the chart as a PNG
// download.
func (s *Server) handleExportChart(c *gin.Context) {
	records, err := s.aggregate(queryOptions(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	data, err := report.RenderChart(records)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=misprediction_chart.png")
	c.Data(http.StatusOK, "image/png", data)
}

// queryOptions reads the same parameters handleAnalyze takes from JSON out
// of the URL query string.
func queryOptions(c *gin.Context) []engine.Option {
	req := analyzeRequest{
		TopN:        c.Query("top_n"),
		MinBranches: c.Query("min_branches"),
		TickStart:   c.Query("tick_start"),
		TickEnd:     c.Query("tick_end"),
	}
	return req.options()
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

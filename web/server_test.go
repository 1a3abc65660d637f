package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// ============================================================================
// SERVER TESTS — httptest against the full route tree
// ============================================================================

// newTraceDB builds a one-partition database with two branch PCs.
func newTraceDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("creating fixture db: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE CondTrace_0 (
		CFIPC INTEGER, STARTPC_ADDR INTEGER, STAMP INTEGER, MISPREDICT INTEGER
	)`)
	if err != nil {
		t.Fatalf("creating partition: %v", err)
	}

	// PC 0x4: 20 outcomes, 4 mispredictions. PC 0x10: 30 outcomes, 12.
	for i := 0; i < 20; i++ {
		mp := 0
		if i < 4 {
			mp = 1
		}
		if _, err := db.Exec(
			`INSERT INTO CondTrace_0 VALUES (?, ?, ?, ?)`, 0x4, 0x2, i, mp,
		); err != nil {
			t.Fatalf("inserting event: %v", err)
		}
	}
	for i := 0; i < 30; i++ {
		mp := 0
		if i < 12 {
			mp = 1
		}
		if _, err := db.Exec(
			`INSERT INTO CondTrace_0 VALUES (?, ?, ?, ?)`, 0x10, 0x6, 100+i, mp,
		); err != nil {
			t.Fatalf("inserting event: %v", err)
		}
	}
	return path
}

func doJSON(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := New(newTraceDB(t))
	w := doJSON(t, srv, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s, want {\"status\":\"ok\"}", got)
	}
}

func TestAnalyze(t *testing.T) {
	srv := New(newTraceDB(t))
	w := doJSON(t, srv, http.MethodPost, "/analyze",
		`{"top_n":"10","min_branches":"1","tick_start":"","tick_end":""}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Error   string `json:"error"`
		Results []struct {
			Rank    int     `json:"rank"`
			PC      string  `json:"pc"`
			StartPC string  `json:"startPc"`
			Total   int64   `json:"total"`
			Mispred int64   `json:"mispred"`
			Rate    float64 `json:"rate"`
		} `json:"results"`
		Stats struct {
			TotalPCs     int     `json:"total_pcs"`
			TotalCount   int64   `json:"total_count"`
			TotalMispred int64   `json:"total_mispred"`
			AvgRate      float64 `json:"avg_rate"`
		} `json:"stats"`
		ChartImage string `json:"chart_image"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}

	// PC 0x10 has more mispredictions, so it ranks first. Addresses are
	// shifted for display.
	top := resp.Results[0]
	if top.Rank != 1 || top.PC != "0x20" || top.StartPC != "0xc" {
		t.Errorf("top result = %+v, want rank 1, pc 0x20, startPc 0xc", top)
	}
	if top.Total != 30 || top.Mispred != 12 || top.Rate != 40.0 {
		t.Errorf("top result counts = %+v, want 30/12/40.00", top)
	}

	if resp.Stats.TotalPCs != 2 || resp.Stats.TotalCount != 50 || resp.Stats.TotalMispred != 16 {
		t.Errorf("stats = %+v, want 2 PCs, 50 total, 16 mispredicted", resp.Stats)
	}
	if !strings.HasPrefix(resp.ChartImage, "data:image/png;base64,") {
		t.Errorf("chart_image does not carry an inline PNG: %.40s", resp.ChartImage)
	}
}

func TestAnalyzeTickRange(t *testing.T) {
	srv := New(newTraceDB(t))
	// Only PC 0x10 has events with STAMP >= 100.
	w := doJSON(t, srv, http.MethodPost, "/analyze",
		`{"top_n":"10","min_branches":"1","tick_start":"100","tick_end":"200"}`)

	var resp struct {
		Results []struct {
			PC string `json:"pc"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].PC != "0x20" {
		t.Errorf("results = %+v, want only pc 0x20", resp.Results)
	}
}

func TestAnalyzeNoData(t *testing.T) {
	srv := New(newTraceDB(t))
	w := doJSON(t, srv, http.MethodPost, "/analyze",
		`{"top_n":"10","min_branches":"100000","tick_start":"","tick_end":""}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if _, ok := resp["error"]; !ok {
		t.Errorf("response has no error field: %v", resp)
	}
}

func TestAnalyzeMissingDatabase(t *testing.T) {
	srv := New(filepath.Join(t.TempDir(), "nope.db"))
	w := doJSON(t, srv, http.MethodPost, "/analyze", `{"top_n":"10"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if _, ok := resp["error"]; !ok {
		t.Errorf("response has no error field: %v", resp)
	}
}

func TestExportCSV(t *testing.T) {
	srv := New(newTraceDB(t))
	w := doJSON(t, srv, http.MethodGet, "/export/csv?top_n=10&min_branches=1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "misprediction_analysis.csv") {
		t.Errorf("Content-Disposition = %q, want csv attachment", cd)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if lines[0] != "Rank,PC,Start PC,Count,Mispred Count,Mispred Rate (%)" {
		t.Errorf("csv header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Errorf("got %d csv lines, want header plus 2 rows", len(lines))
	}
	if lines[1] != "1,0x20,0xc,30,12,40.00" {
		t.Errorf("first row = %q, want 1,0x20,0xc,30,12,40.00", lines[1])
	}
}

func TestExportChart(t *testing.T) {
	srv := New(newTraceDB(t))
	w := doJSON(t, srv, http.MethodGet, "/export/chart?top_n=10&min_branches=1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "misprediction_chart.png") {
		t.Errorf("Content-Disposition = %q, want png attachment", cd)
	}
	if body := w.Body.Bytes(); len(body) < 8 || string(body[1:4]) != "PNG" {
		t.Error("body is not a PNG")
	}
}

func TestIndexPage(t *testing.T) {
	srv := New(newTraceDB(t))
	w := doJSON(t, srv, http.MethodGet, "/", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TAGE Trace Analyzer") {
		t.Error("index page missing title")
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spektr-org/erlens"
	"github.com/spektr-org/erlens/config"
	"github.com/spektr-org/erlens/source"
)

func sampleAnalysis(t *testing.T) *erlens.Analysis {
	t.Helper()
	a, err := erlens.AnalyzeCSV(source.SampleCSV())
	if err != nil {
		t.Fatalf("sample analysis failed: %v", err)
	}
	return a
}

func TestRender_CSVTableView(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, sampleAnalysis(t), "weekday", "csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "weekday,mean_er,count\n") {
		t.Errorf("unexpected CSV header: %q", buf.String())
	}
}

func TestRender_CSVInsights(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, sampleAnalysis(t), "insights", "csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "priority,category,title,finding,recommendation\n") {
		t.Errorf("unexpected CSV header: %q", buf.String())
	}
}

func TestRender_CSVNeedsTable(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, sampleAnalysis(t), "summary", "csv"); err == nil {
		t.Error("expected error for non-tabular view")
	}
}

func TestRender_JSONSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, sampleAnalysis(t), "summary", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ov map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ov); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if ov["total_posts"] != float64(30) {
		t.Errorf("expected 30 posts, got %v", ov["total_posts"])
	}
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, sampleAnalysis(t), "report", "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "30 posts analyzed") {
		t.Errorf("expected headline, got %q", buf.String())
	}

	buf.Reset()
	if err := render(&buf, sampleAnalysis(t), "hourly", "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Average ER by Hour") {
		t.Errorf("expected table title, got %q", buf.String())
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	if err := render(&bytes.Buffer{}, sampleAnalysis(t), "report", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPickSource(t *testing.T) {
	if _, err := pickSource("", false, false, config.SourceConfig{}); err == nil {
		t.Error("expected error when no source is chosen")
	}
	if _, err := pickSource("a.csv", true, false, config.SourceConfig{}); err == nil {
		t.Error("expected error when two sources are chosen")
	}
	if _, err := pickSource("", false, true, config.SourceConfig{}); err == nil {
		t.Error("expected error for --source without a driver")
	}

	src, err := pickSource("", false, true, config.SourceConfig{Driver: "mongo", DSN: "mongodb://x", Collection: "posts"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(source.Mongo); !ok {
		t.Errorf("expected Mongo source, got %T", src)
	}
	src, err = pickSource("", false, true, config.SourceConfig{Driver: "pgx", DSN: "postgres://x"})
	if err != nil {
		t.Fatal(err)
	}
	if sq, ok := src.(source.SQL); !ok || sq.Driver != "pgx" {
		t.Errorf("expected SQL pgx source, got %#v", src)
	}
}

func TestValidView(t *testing.T) {
	for _, v := range []string{"report", "summary", "top", "frequency", "diagnostics"} {
		if !validView(v) {
			t.Errorf("%s should be valid", v)
		}
	}
	if validView("pie") {
		t.Error("pie should be invalid")
	}
}

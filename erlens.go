// Package erlens analyzes social media post exports for engagement.
//
// Usage:
//
//	import "github.com/spektr-org/erlens"
//
//	analysis, err := erlens.AnalyzeCSV(data,
//	    erlens.WithBasis(engine.BasisReach),
//	    erlens.WithTopN(5),
//	)
//
// A CSV export (or any schema.RawTable from the source package) is mapped
// onto canonical post columns, engagement rates are computed under the chosen
// basis, and every aggregate view, insight and recommendation is returned in
// one Analysis. Presentation is left to the caller: the engine package turns
// a Report into chart, table or text data.
//
// All computation is local and every call works on its own table.
package erlens

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spektr-org/erlens/engine"
	"github.com/spektr-org/erlens/insight"
	"github.com/spektr-org/erlens/schema"
	"github.com/spektr-org/erlens/source"
)

// Analysis is the full result of one run.
type Analysis struct {
	ID              string                `json:"id"`
	Diagnostics     schema.Diagnostics    `json:"diagnostics"`
	Report          *engine.Report        `json:"report"`
	Insights        []insight.Finding     `json:"insights"`
	Recommendations []insight.Finding     `json:"recommendations"`
	Content         insight.ContentReport `json:"content"`
}

// Option configures an analysis run.
type Option func(*settings)

type settings struct {
	engine []engine.Option
	schema []schema.Option
}

// WithBasis selects the ER denominator (followers, reach or impressions).
func WithBasis(b engine.Basis) Option {
	return func(s *settings) { s.engine = append(s.engine, engine.WithBasis(b)) }
}

// WithTopN sets how many posts the top and bottom rankings hold.
func WithTopN(n int) Option {
	return func(s *settings) { s.engine = append(s.engine, engine.WithTopN(n)) }
}

// WithHashtagLimit caps the hashtag views; zero or negative means all tags.
func WithHashtagLimit(n int) Option {
	return func(s *settings) { s.engine = append(s.engine, engine.WithHashtagLimit(n)) }
}

// WithStrictDateFormat accepts only "YYYY-MM-DD HH:MM" timestamps.
func WithStrictDateFormat() Option {
	return func(s *settings) { s.schema = append(s.schema, schema.WithStrictDateFormat()) }
}

// Analyze normalizes raw rows and runs every analysis over them.
// A *schema.SchemaError is returned when required columns cannot be found.
func Analyze(raw schema.RawTable, opts ...Option) (*Analysis, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	table, diag, err := schema.Normalize(raw, s.schema...)
	if err != nil {
		return nil, err
	}

	report, err := engine.Execute(table, s.engine...)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	return &Analysis{
		ID:              uuid.NewString(),
		Diagnostics:     diag,
		Report:          report,
		Insights:        insight.Generate(report.Table),
		Recommendations: insight.Recommend(report.Table),
		Content:         insight.AnalyzeContent(report.Table),
	}, nil
}

// AnalyzeCSV reads CSV bytes and analyzes them. data is never modified.
func AnalyzeCSV(data []byte, opts ...Option) (*Analysis, error) {
	raw, err := source.CSV{Label: "csv", Data: data}.Load(context.Background())
	if err != nil {
		return nil, err
	}
	return Analyze(raw, opts...)
}

// AnalyzeSource loads rows from src and analyzes them.
func AnalyzeSource(ctx context.Context, src source.Source, opts ...Option) (*Analysis, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	return Analyze(raw, opts...)
}

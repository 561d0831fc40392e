package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/erlens"
	"github.com/spektr-org/erlens/engine"
	"github.com/spektr-org/erlens/helpers"
	"github.com/spektr-org/erlens/schema"
	"github.com/spektr-org/erlens/source"
)

// errBadParam marks query parameter problems (400).
var errBadParam = errors.New("invalid parameter")

func (s *Server) analyze(c *gin.Context) {
	a, ok := s.runUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) sample(c *gin.Context) {
	a, ok := s.run(c, source.SampleCSV())
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) chart(c *gin.Context) {
	chartType, ok := chartParam(c)
	if !ok {
		return
	}
	a, ok := s.runUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.ID, "chart": engine.BuildChart(chartType, a.Report)})
}

func (s *Server) sampleChart(c *gin.Context) {
	chartType, ok := chartParam(c)
	if !ok {
		return
	}
	a, ok := s.run(c, source.SampleCSV())
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.ID, "chart": engine.BuildChart(chartType, a.Report)})
}

func (s *Server) export(c *gin.Context) {
	view := c.Param("view")
	if !contains(engine.TableViews, view) {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown view %q, expected one of %s", view, strings.Join(engine.TableViews, ", ")))
		return
	}
	a, ok := s.runUpload(c)
	if !ok {
		return
	}
	data, err := helpers.TableCSV(engine.BuildTable(view, a.Report))
	if err != nil {
		log.Printf("❌ [server] %s export failed: %v", view, err)
		respondError(c, http.StatusInternalServerError, "export failed")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="erlens-%s.csv"`, view))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ============================================================================
// PIPELINE
// ============================================================================

func (s *Server) runUpload(c *gin.Context) (*erlens.Analysis, bool) {
	data, err := readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		respondError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return s.run(c, data)
}

func (s *Server) run(c *gin.Context, data []byte) (*erlens.Analysis, bool) {
	opts, err := s.options(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}

	a, err := erlens.AnalyzeCSV(data, opts...)
	if err != nil {
		var schemaErr *schema.SchemaError
		switch {
		case errors.As(err, &schemaErr):
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"error":          schemaErr.Error(),
				"missingColumns": schemaErr.MissingColumns,
				"requestId":      c.GetString("requestID"),
			})
		case errors.Is(err, schema.ErrEmptyInput):
			respondError(c, http.StatusBadRequest, "no data: upload a CSV with a header and at least one row")
		default:
			log.Printf("❌ [server] %s: analysis failed: %v", c.GetString("requestID"), err)
			respondError(c, http.StatusInternalServerError, "analysis failed")
		}
		return nil, false
	}

	log.Printf("📊 [server] %s: analysis %s, %d posts, %d warnings",
		c.GetString("requestID"), a.ID, a.Report.Overview.TotalPosts, a.Diagnostics.WarningCount())
	return a, true
}

// readUpload returns the multipart "file" part when present, else the raw body.
func readUpload(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing multipart field \"file\": %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}

// options reads basis, top, hashtags and strict from the query string over
// the configured defaults.
func (s *Server) options(c *gin.Context) ([]erlens.Option, error) {
	def := s.cfg.Analysis

	basis, err := engine.ParseBasis(c.DefaultQuery("basis", def.Basis))
	if err != nil {
		return nil, err
	}
	top, err := intParam(c, "top", def.TopN, 1)
	if err != nil {
		return nil, err
	}
	hashtags, err := intParam(c, "hashtags", def.HashtagLimit, 0)
	if err != nil {
		return nil, err
	}

	opts := []erlens.Option{
		erlens.WithBasis(basis),
		erlens.WithTopN(top),
		erlens.WithHashtagLimit(hashtags),
	}

	strict := def.StrictDates
	if v := c.Query("strict"); v != "" {
		if strict, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("%w: strict=%q", errBadParam, v)
		}
	}
	if strict {
		opts = append(opts, erlens.WithStrictDateFormat())
	}
	return opts, nil
}

func intParam(c *gin.Context, name string, def, min int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("%w: %s must be an integer >= %d, got %q", errBadParam, name, min, v)
	}
	return n, nil
}

func chartParam(c *gin.Context) (string, bool) {
	chartType := c.Param("type")
	if !contains(engine.ChartTypes, chartType) {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown chart type %q, expected one of %s", chartType, strings.Join(engine.ChartTypes, ", ")))
		return "", false
	}
	return chartType, true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

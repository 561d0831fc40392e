package source

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spektr-org/erlens/engine"
	"github.com/spektr-org/erlens/schema"
)

// ============================================================================
// SOURCES — where post rows come from
// ============================================================================
// Every source yields a schema.RawTable of text cells, so the normalizer
// applies one set of coercion rules whatever the origin. Sources only read;
// nothing is written back.
// ============================================================================

// Source loads raw post rows.
type Source interface {
	Name() string
	Load(ctx context.Context) (schema.RawTable, error)
}

//go:embed sample.csv
var sampleCSV []byte

// SampleCSV returns a copy of the embedded sample dataset.
func SampleCSV() []byte {
	return bytes.Clone(sampleCSV)
}

// Sample returns the embedded sample dataset as a source.
func Sample() Source {
	return CSV{Label: "sample", Data: sampleCSV}
}

// CSV is an in-memory CSV document.
type CSV struct {
	Label string
	Data  []byte
}

func (c CSV) Name() string { return c.Label }

func (c CSV) Load(ctx context.Context) (schema.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return schema.RawTable{}, err
	}
	if len(bytes.TrimSpace(c.Data)) == 0 {
		return schema.RawTable{}, schema.ErrEmptyInput
	}
	return schema.ReadCSV(bytes.NewReader(c.Data))
}

// File reads a CSV file from disk.
type File struct {
	Path string
}

func (f File) Name() string { return f.Path }

func (f File) Load(ctx context.Context) (schema.RawTable, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return schema.RawTable{}, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	raw, err := CSV{Label: f.Path, Data: data}.Load(ctx)
	if err != nil {
		return schema.RawTable{}, err
	}
	log.Printf("📄 [source] %s: %d rows", f.Path, len(raw.Rows))
	return raw, nil
}

// cellText renders a database value the way it would appear in a CSV export.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(engine.PostedAtLayout)
	case []string:
		return strings.Join(x, ",")
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

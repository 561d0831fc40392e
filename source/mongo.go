package source

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spektr-org/erlens/schema"
)

const mongoTimeout = 10 * time.Second

// Mongo reads post documents from a collection. Canonical field names found
// in any document lead the header in canonical order; the first document's
// remaining keys follow in document order.
type Mongo struct {
	URI        string
	Database   string
	Collection string
	Filter     bson.D
}

func (m Mongo) Name() string { return "mongo:" + m.Collection }

func (m Mongo) Load(ctx context.Context) (schema.RawTable, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.URI))
	if err != nil {
		return schema.RawTable{}, fmt.Errorf("mongo connect failed: %w", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		return schema.RawTable{}, fmt.Errorf("mongo ping failed: %w", err)
	}

	filter := m.Filter
	if filter == nil {
		filter = bson.D{}
	}
	coll := client.Database(m.Database).Collection(m.Collection)
	cursor, err := coll.Find(ctx, filter, options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}}))
	if err != nil {
		return schema.RawTable{}, fmt.Errorf("mongo find failed: %w", err)
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return schema.RawTable{}, fmt.Errorf("mongo decode failed: %w", err)
	}

	log.Printf("🍃 [source] %s.%s: %d documents", m.Database, m.Collection, len(docs))
	return DocumentsToRaw(docs), nil
}

// DocumentsToRaw flattens documents into a raw table. Missing fields become
// empty cells; arrays are joined with commas.
func DocumentsToRaw(docs []bson.D) schema.RawTable {
	if len(docs) == 0 {
		return schema.RawTable{}
	}

	seen := map[string]bool{}
	for _, doc := range docs {
		for _, e := range doc {
			seen[e.Key] = true
		}
	}

	var header []string
	inHeader := map[string]bool{}
	for _, col := range schema.SourceColumns {
		if seen[col] {
			header = append(header, col)
			inHeader[col] = true
		}
	}
	for _, e := range docs[0] {
		if !inHeader[e.Key] {
			header = append(header, e.Key)
			inHeader[e.Key] = true
		}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	raw := schema.RawTable{Header: header, Rows: make([][]string, 0, len(docs))}
	for _, doc := range docs {
		row := make([]string, len(header))
		for _, e := range doc {
			if i, ok := index[e.Key]; ok {
				row[i] = bsonText(e.Value)
			}
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw
}

func bsonText(v any) string {
	switch x := v.(type) {
	case primitive.DateTime:
		return cellText(x.Time())
	case primitive.ObjectID:
		return x.Hex()
	case primitive.Decimal128:
		return x.String()
	case primitive.Null, primitive.Undefined:
		return ""
	case bson.A:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, bsonText(item))
		}
		return strings.Join(parts, ",")
	}
	return cellText(v)
}

package mongostore

import (
	"encoding/base64"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"featurestore/internal/table"
)

// toRecord flattens a driver document into a record, converting driver
// types to plain Go values so the table package stays driver-agnostic.
func toRecord(doc bson.D) table.Record {
	rec := make(table.Record, len(doc))
	for i, e := range doc {
		rec[i] = table.Field{Key: e.Key, Value: plainValue(e.Value)}
	}
	return rec
}

func plainValue(v any) any {
	switch x := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return nil
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).UTC()
	case primitive.Decimal128:
		return x.String()
	case primitive.Binary:
		return base64.StdEncoding.EncodeToString(x.Data)
	case primitive.Regex:
		return x.String()
	case primitive.Symbol:
		return string(x)
	case primitive.JavaScript:
		return string(x)
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plainValue(e)
		}
		return m
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(kv ...any) Record {
	var r Record
	for i := 0; i < len(kv); i += 2 {
		r = append(r, Field{Key: kv[i].(string), Value: kv[i+1]})
	}
	return r
}

func TestFromRecords(t *testing.T) {
	frag := FromRecords([]Record{
		rec("_id", "a1", "age", int32(31)),
		rec("_id", "a2", "city", "Lyon", "age", int32(40)),
	})

	assert.Equal(t, []string{"_id", "age", "city"}, frag.Columns)
	require.Equal(t, 2, frag.Len())
	assert.Equal(t, []any{"a1", int32(31), nil}, frag.Rows[0])
	assert.Equal(t, []any{"a2", int32(40), "Lyon"}, frag.Rows[1])
}

func TestConcat(t *testing.T) {
	first := FromRecords([]Record{rec("a", 1, "b", 2)})
	second := FromRecords([]Record{rec("c", 3, "a", 4), rec("a", 5)})

	out := Concat(first, second)

	assert.Equal(t, []string{"a", "b", "c"}, out.Columns)
	assert.Equal(t, [][]any{
		{1, 2, nil},
		{4, nil, 3},
		{5, nil, nil},
	}, out.Rows)
}

func TestConcatNone(t *testing.T) {
	out := Concat()
	assert.True(t, out.Empty())
	assert.Empty(t, out.Columns)
}

func TestDropColumns(t *testing.T) {
	tbl := FromRecords([]Record{rec("_id", "x", "a", 1, "b", 2)})

	assert.Equal(t, 1, tbl.DropColumns(IDColumn, "missing"))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Equal(t, []any{1, 2}, tbl.Rows[0])
	assert.Equal(t, 0, tbl.DropColumns(IDColumn))
}

func TestNormalizeNulls(t *testing.T) {
	tbl := FromRecords([]Record{
		rec("a", "na", "b", "NA", "c", "nan"),
		rec("a", "value", "b", "na", "c", 7),
	})

	assert.Equal(t, 2, tbl.NormalizeNulls("na"))
	assert.Equal(t, []any{nil, "NA", "nan"}, tbl.Rows[0])
	assert.Equal(t, []any{"value", nil, 7}, tbl.Rows[1])

	// Idempotent: the marker is gone after the first pass.
	assert.Equal(t, 0, tbl.NormalizeNulls("na"))
	assert.Equal(t, []any{nil, "NA", "nan"}, tbl.Rows[0])
}

func TestSelect(t *testing.T) {
	tbl := FromRecords([]Record{rec("a", 0), rec("a", 1), rec("a", 2)})
	out := tbl.Select([]int{2, 0})

	assert.Equal(t, [][]any{{2}, {0}}, out.Rows)
	assert.Equal(t, tbl.Columns, out.Columns)
}

func TestMatchColumns(t *testing.T) {
	cols := []string{"meta_source", "age", "meta_ts", "income"}

	matched, err := MatchColumns(cols, []string{"meta_*", "inc?me"})
	require.NoError(t, err)
	assert.Equal(t, []string{"meta_source", "meta_ts", "income"}, matched)

	_, err = MatchColumns(cols, []string{"[unclosed"})
	assert.Error(t, err)
}

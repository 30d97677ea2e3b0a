package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disasterresponse/pkg/etl"
)

func mustInfer(t *testing.T, header []string, rows [][]string) *Table {
	t.Helper()
	tbl, err := Infer(header, rows)
	require.NoError(t, err)
	return tbl
}

func TestInferKinds(t *testing.T) {
	tbl := mustInfer(t,
		[]string{"id", "message", "original", "score"},
		[][]string{
			{"007", "help", "", "1"},
			{"8", "water", "", "x"},
		},
	)

	cols := tbl.Columns()
	assert.Equal(t, KindInteger, cols[0].Kind)
	assert.Equal(t, KindText, cols[1].Kind)
	assert.Equal(t, KindText, cols[2].Kind, "all-null column stays text")
	assert.Equal(t, KindText, cols[3].Kind)

	v, ok := tbl.Value(0, "id")
	require.True(t, ok)
	assert.Equal(t, "7", v, "integer cells are canonical")
}

func TestNewRejectsBadInput(t *testing.T) {
	t.Run("duplicate column", func(t *testing.T) {
		_, err := New([]Column{{Name: "a"}, {Name: "a"}}, nil)
		require.Error(t, err)
	})

	t.Run("short row", func(t *testing.T) {
		_, err := New([]Column{{Name: "a"}, {Name: "b"}}, [][]string{{"1"}})
		require.Error(t, err)
	})

	t.Run("non integer cell", func(t *testing.T) {
		_, err := New([]Column{{Name: "a", Kind: KindInteger}}, [][]string{{"x"}})
		require.Error(t, err)
	})
}

func TestAccessorsReturnCopies(t *testing.T) {
	tbl := mustInfer(t, []string{"id", "message"}, [][]string{{"1", "help"}})

	row := tbl.Row(0)
	row[1] = "changed"
	rows := tbl.Rows()
	rows[0][1] = "changed"
	cols := tbl.Columns()
	cols[0].Name = "changed"

	v, _ := tbl.Value(0, "message")
	assert.Equal(t, "help", v)
	assert.Equal(t, []string{"id", "message"}, tbl.ColumnNames())
}

func TestDrop(t *testing.T) {
	tbl := mustInfer(t, []string{"id", "categories", "genre"}, [][]string{{"1", "a-1", "news"}})

	out, err := tbl.Drop("categories")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "genre"}, out.ColumnNames())
	assert.Equal(t, []string{"1", "news"}, out.Row(0))
	assert.Equal(t, 3, tbl.Width(), "source table untouched")

	_, err = tbl.Drop("missing")
	require.Error(t, err)
}

func TestConcatAlignsByPosition(t *testing.T) {
	left := mustInfer(t, []string{"id"}, [][]string{{"1"}, {"2"}, {"3"}})
	right := mustInfer(t, []string{"related"}, [][]string{{"1"}, {"0"}})

	out, err := left.Concat(right)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len(), "inner positional join truncates to the shorter side")
	assert.Equal(t, [][]string{{"1", "1"}, {"2", "0"}}, out.Rows())

	_, err = left.Concat(left)
	require.Error(t, err, "duplicate column names are rejected")
}

func TestDropDuplicates(t *testing.T) {
	tbl := mustInfer(t, []string{"id", "message"}, [][]string{
		{"1", "help"},
		{"2", "water"},
		{"1", "help"},
		{"1", "help!"},
	})

	out, removed := tbl.DropDuplicates()
	assert.Equal(t, 1, removed)
	assert.Equal(t, [][]string{{"1", "help"}, {"2", "water"}, {"1", "help!"}}, out.Rows())

	again, removed := out.DropDuplicates()
	assert.Zero(t, removed)
	assert.True(t, again.Equal(out))
}

func TestDropDuplicatesKeyIsUnambiguous(t *testing.T) {
	tbl := mustInfer(t, []string{"a", "b"}, [][]string{
		{"x:", "y"},
		{"x", ":y"},
	})

	_, removed := tbl.DropDuplicates()
	assert.Zero(t, removed)
}

func TestReadCSV(t *testing.T) {
	t.Run("pads short rows and strips bom", func(t *testing.T) {
		in := "\ufeffid,message,original,genre\n1,help,,direct\n2,water\n\n"
		tbl, err := ReadCSV(strings.NewReader(in), ',')
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "message", "original", "genre"}, tbl.ColumnNames())
		assert.Equal(t, []string{"2", "water", "", ""}, tbl.Row(1))
	})

	t.Run("custom delimiter", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("id\tcategories\n1\trelated-1;offer-0\n"), '\t')
		require.NoError(t, err)
		v, _ := tbl.Value(0, "categories")
		assert.Equal(t, "related-1;offer-0", v)
	})

	t.Run("long row", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("id,message\n1,a,b\n"), ',')
		require.ErrorIs(t, err, etl.ErrParse)
	})

	t.Run("bad quoting", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("id,message\n1,\"unterminated\n"), ',')
		require.ErrorIs(t, err, etl.ErrParse)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""), ',')
		require.ErrorIs(t, err, etl.ErrParse)
	})

	t.Run("duplicate header", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("id,id\n1,2\n"), ',')
		require.ErrorIs(t, err, etl.ErrSchema)
	})
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := mustInfer(t, []string{"id", "message"}, [][]string{{"1", "help, please"}, {"2", "say \"hi\""}})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	back, err := ReadCSV(&buf, ',')
	require.NoError(t, err)
	assert.True(t, back.Equal(tbl))
}

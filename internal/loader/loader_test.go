package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disasterresponse/internal/table"
	"disasterresponse/pkg/etl"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadInnerJoin(t *testing.T) {
	messages := writeFile(t, "messages.csv",
		"id,message,original,genre\n"+
			"1,help,,direct\n"+
			"2,water please,agua,direct\n"+
			"3,orphan message,,news\n")
	categories := writeFile(t, "categories.csv",
		"id,categories\n"+
			"2,related-1;request-1;offer-0\n"+
			"1,related-1;request-0;offer-0\n"+
			"9,related-0;request-0;offer-0\n")

	merged, stats, err := Load(messages, categories, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "message", "original", "genre", "categories"}, merged.ColumnNames())
	assert.Equal(t, [][]string{
		{"1", "help", "", "direct", "related-1;request-0;offer-0"},
		{"2", "water please", "agua", "direct", "related-1;request-1;offer-0"},
	}, merged.Rows(), "rows follow message order")

	assert.Equal(t, Stats{
		MessageRows:      3,
		CategoryRows:     3,
		MergedRows:       2,
		OrphanMessages:   1,
		OrphanCategories: 1,
	}, stats)
}

func TestLoadManyToMany(t *testing.T) {
	messages := writeFile(t, "messages.csv", "id,message\n1,help\n")
	categories := writeFile(t, "categories.csv", "id,categories\n1,related-1\n1,related-1\n")

	merged, stats, err := Load(messages, categories, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len(), "duplicates survive the join; the cleaner removes them")
	assert.Zero(t, stats.OrphanCategories)
}

func TestLoadCanonicalKeys(t *testing.T) {
	messages := writeFile(t, "messages.csv", "id,message\n007,help\n")
	categories := writeFile(t, "categories.csv", "id,categories\n7,related-1\n")

	merged, _, err := Load(messages, categories, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	v, _ := merged.Value(0, "id")
	assert.Equal(t, "7", v)
}

func TestLoadCustomDelimiter(t *testing.T) {
	messages := writeFile(t, "messages.tsv", "id\tmessage\n1\thelp, now\n")
	categories := writeFile(t, "categories.tsv", "id\tcategories\n1\trelated-1\n")

	merged, _, err := Load(messages, categories, Options{Delimiter: '\t'})
	require.NoError(t, err)
	v, _ := merged.Value(0, "message")
	assert.Equal(t, "help, now", v)
}

func TestLoadErrors(t *testing.T) {
	good := writeFile(t, "good.csv", "id,categories\n1,related-1\n")

	t.Run("missing file", func(t *testing.T) {
		_, _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), good, Options{})
		require.ErrorIs(t, err, etl.ErrIO)
	})

	t.Run("missing id column", func(t *testing.T) {
		noID := writeFile(t, "noid.csv", "message\nhelp\n")
		_, _, err := Load(noID, good, Options{})
		require.ErrorIs(t, err, etl.ErrSchema)
	})

	t.Run("malformed csv", func(t *testing.T) {
		bad := writeFile(t, "bad.csv", "id,message\n1,\"open\n")
		_, _, err := Load(bad, good, Options{})
		require.ErrorIs(t, err, etl.ErrParse)
	})

	t.Run("key kind mismatch", func(t *testing.T) {
		textIDs := writeFile(t, "text.csv", "id,message\nabc,help\n")
		_, _, err := Load(textIDs, good, Options{})
		require.ErrorIs(t, err, etl.ErrSchema)
	})
}

func TestInnerJoinSuffixesCollisions(t *testing.T) {
	left, err := table.Infer([]string{"id", "genre"}, [][]string{{"1", "news"}})
	require.NoError(t, err)
	right, err := table.Infer([]string{"id", "genre", "categories"}, [][]string{{"1", "social", "related-1"}})
	require.NoError(t, err)

	out, err := InnerJoin(left, right, "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "genre_x", "genre_y", "categories"}, out.ColumnNames())
}

func TestInnerJoinNullKeysNeverMatch(t *testing.T) {
	left, err := table.Infer([]string{"id", "message"}, [][]string{{"", "a"}, {"1", "b"}})
	require.NoError(t, err)
	right, err := table.Infer([]string{"id", "categories"}, [][]string{{"", "x-1"}, {"1", "y-1"}})
	require.NoError(t, err)

	out, err := InnerJoin(left, right, "id")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "b", "y-1"}}, out.Rows())
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disasterresponse/internal/table"
	"disasterresponse/pkg/database"
	"disasterresponse/pkg/etl"
)

func TestExportTable(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "DisasterResponse.db")
	writer, err := database.OpenStore(database.ConfigFor(dbPath))
	require.NoError(t, err)

	tbl, err := table.New(
		[]table.Column{
			{Name: "id", Kind: table.KindInteger},
			{Name: "message", Kind: table.KindText},
			{Name: "original", Kind: table.KindText},
			{Name: "related", Kind: table.KindInteger},
		},
		[][]string{{"1", "help, now", "", "1"}, {"2", "water", "agua", "0"}},
	)
	require.NoError(t, err)
	require.NoError(t, writer.ReplaceTable(context.Background(), etl.DefaultTableName, tbl))
	require.NoError(t, writer.Close())

	cfg := database.ConfigFor(dbPath)
	cfg.ReadOnly = true
	store, err := database.OpenStore(cfg)
	require.NoError(t, err)
	defer store.Close()

	out := filepath.Join(dir, "nested", "out.csv")
	n, err := exportTable(context.Background(), store, etl.DefaultTableName, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "id,message,original,related\n1,\"help, now\",,1\n2,water,agua,0\n", string(data))
}

func TestExportMissingTable(t *testing.T) {
	store, err := database.OpenStore(database.ConfigFor(filepath.Join(t.TempDir(), "empty.db")))
	require.NoError(t, err)
	defer store.Close()

	_, err = exportTable(context.Background(), store, "nope", filepath.Join(t.TempDir(), "x.csv"))
	require.ErrorIs(t, err, database.ErrTableNotFound)
	assert.Equal(t, etl.ExitIOError, etl.ExitCodeForError(err))
}

func TestExportMistypedDatabaseCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := database.ConfigFor(filepath.Join(dir, "typo", "Disaster.db"))
	cfg.ReadOnly = true

	_, err := database.OpenStore(cfg)
	require.ErrorIs(t, err, etl.ErrIO)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/solatis/fieldfilter/internal/core/api"
	"github.com/solatis/fieldfilter/internal/core/config"
	"github.com/solatis/fieldfilter/internal/core/db"
	"github.com/solatis/fieldfilter/internal/filter"
	"github.com/solatis/fieldfilter/internal/types"
	"github.com/stretchr/testify/require"
)

func employeesDataset() types.Dataset {
	return types.Dataset{
		Name: "employees",
		Fields: []types.FieldDefinition{
			{Key: "name", Label: "Name", Type: types.FieldText},
			{Key: "age", Label: "Age", Type: types.FieldNumber},
			{Key: "skills", Label: "Skills", Type: types.FieldMultiSelect, Options: []types.FieldOption{
				{Value: "go", Label: "Go"},
				{Value: "sql", Label: "SQL"},
				{Value: "rust", Label: "Rust"},
			}},
		},
		Records: []types.Record{
			{"name": "Carol", "age": float64(41), "skills": []any{"rust"}},
			{"name": "Alice", "age": float64(30), "skills": []any{"go", "sql"}},
			{"name": "Bob", "age": float64(25), "skills": []any{"go"}},
		},
	}
}

// newTestService wires a QueryService over a migrated SQLite store holding
// the employees dataset.
func newTestService(t *testing.T) (*api.QueryService, *config.Config) {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "ff.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = db.MigrateUp(ctx, database)
	require.NoError(t, err)

	store, err := db.NewRecordStore(database)
	require.NoError(t, err)
	_, err = store.SaveDataset(ctx, employeesDataset())
	require.NoError(t, err)

	cfg := config.Default()
	svc, err := api.NewQueryService(store, filter.NewEngine(), filter.NewResultCache(filter.DefaultCacheConfig()), cfg, nil)
	require.NoError(t, err)
	return svc, cfg
}

func names(records []types.Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r["name"]
	}
	return out
}

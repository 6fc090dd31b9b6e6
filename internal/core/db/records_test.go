package db

import (
	"context"
	"testing"
	"time"

	"github.com/solatis/fieldfilter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	store, err := NewRecordStore(openTestDB(t))
	require.NoError(t, err)
	return store
}

func employeesDataset() types.Dataset {
	return types.Dataset{
		Name: "employees",
		Fields: []types.FieldDefinition{
			{Key: "name", Label: "Name", Type: types.FieldText},
			{Key: "age", Label: "Age", Type: types.FieldNumber},
			{Key: "department", Label: "Department", Type: types.FieldSingleSelect, Options: []types.FieldOption{
				{Value: "Engineering", Label: "Engineering"},
			}},
		},
		Records: []types.Record{
			{"name": "Carol", "age": float64(41), "address": map[string]any{"city": "Porto"}},
			{"name": "Alice", "age": float64(30)},
			{"name": "Bob", "age": float64(25), "skills": []any{"go", "sql"}},
		},
	}
}

func TestRecordStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	version, err := store.SaveDataset(ctx, employeesDataset())
	require.NoError(t, err)
	assert.Len(t, version, versionLength)

	ds, err := store.LoadDataset(ctx, "employees")
	require.NoError(t, err)
	assert.Equal(t, "employees", ds.Name)
	assert.Equal(t, version, ds.Version)
	assert.Equal(t, employeesDataset().Fields, ds.Fields)
	assert.Equal(t, employeesDataset().Records, ds.Records)

	got, err := store.DatasetVersion(ctx, "employees")
	require.NoError(t, err)
	assert.Equal(t, version, got)

	fields, err := store.LoadFields(ctx, "employees")
	require.NoError(t, err)
	assert.Len(t, fields, 3)
}

func TestRecordStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.SaveDataset(ctx, employeesDataset())
	require.NoError(t, err)

	// identical content keeps the version
	again, err := store.SaveDataset(ctx, employeesDataset())
	require.NoError(t, err)
	assert.Equal(t, first, again)

	smaller := employeesDataset()
	smaller.Records = smaller.Records[:1]
	second, err := store.SaveDataset(ctx, smaller)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	ds, err := store.LoadDataset(ctx, "employees")
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
}

func TestRecordStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.LoadDataset(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrDatasetNotFound)

	_, err = store.DatasetVersion(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrDatasetNotFound)

	_, err = store.LoadFields(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrDatasetNotFound)

	err = store.DeleteDataset(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrDatasetNotFound)
}

func TestRecordStore_RejectsInvalidFields(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ds := employeesDataset()
	ds.Fields = append(ds.Fields, types.FieldDefinition{Key: "age", Type: types.FieldNumber})
	_, err := store.SaveDataset(ctx, ds)
	assert.ErrorIs(t, err, types.ErrDuplicateField)

	_, err = store.SaveDataset(ctx, types.Dataset{Name: " "})
	assert.Error(t, err)

	infos, err := store.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestRecordStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	for _, name := range []string{"zeta", "alpha"} {
		ds := employeesDataset()
		ds.Name = name
		_, err := store.SaveDataset(ctx, ds)
		require.NoError(t, err)
	}

	infos, err := store.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "zeta", infos[1].Name)
	assert.Equal(t, 3, infos[0].RecordCount)
	assert.True(t, fixed.Equal(infos[0].UpdatedAt), "updated_at = %v", infos[0].UpdatedAt)

	require.NoError(t, store.DeleteDataset(ctx, "zeta"))
	infos, err = store.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestChecksum(t *testing.T) {
	ds := employeesDataset()
	a, err := Checksum(ds.Fields, ds.Records)
	require.NoError(t, err)

	// map key order does not matter
	reordered := []types.Record{
		{"address": map[string]any{"city": "Porto"}, "age": float64(41), "name": "Carol"},
		ds.Records[1],
		ds.Records[2],
	}
	b, err := Checksum(ds.Fields, reordered)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Checksum(ds.Fields, ds.Records[1:])
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

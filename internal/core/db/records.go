package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/fieldfilter/internal/types"
)

/*
 * Dataset store.
 *
 * A dataset is a named bundle of field definitions and records. Records are
 * stored one row each, keyed by (dataset, position), so LoadDataset returns
 * them in the order they were saved. Bodies and field lists are JSON.
 *
 * SaveDataset replaces the whole dataset in one transaction. The version is
 * a content checksum over fields and records: saving identical content
 * yields the same version, so result caches keyed on it stay valid across
 * re-imports of unchanged data.
 */

// versionLength is the number of hex chars kept from the sha256 checksum.
const versionLength = 16

// DatasetInfo summarises a stored dataset without its records.
type DatasetInfo struct {
	Name        string    `db:"name" json:"name"`
	Version     string    `db:"version" json:"version"`
	RecordCount int       `db:"record_count" json:"recordCount"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type datasetRow struct {
	DatasetInfo
	Fields string `db:"fields"`
}

// RecordStore persists datasets.
type RecordStore struct {
	db      *sqlx.DB
	queries *Queries
	now     func() time.Time
}

// NewRecordStore binds a store to an open, migrated database.
func NewRecordStore(db *sqlx.DB) (*RecordStore, error) {
	queries, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &RecordStore{db: db, queries: queries, now: time.Now}, nil
}

// Checksum computes the content version of fields and records.
// encoding/json sorts map keys, so equal content always hashes equally.
func Checksum(fields []types.FieldDefinition, records []types.Record) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(fields); err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:versionLength], nil
}

// SaveDataset replaces the dataset named ds.Name and returns its new version.
// Field definitions are validated before anything is written.
func (s *RecordStore) SaveDataset(ctx context.Context, ds types.Dataset) (string, error) {
	if strings.TrimSpace(ds.Name) == "" {
		return "", errors.New("dataset name is empty")
	}
	if _, err := types.NewFieldSet(ds.Fields); err != nil {
		return "", fmt.Errorf("dataset %q: %w", ds.Name, err)
	}

	version, err := Checksum(ds.Fields, ds.Records)
	if err != nil {
		return "", fmt.Errorf("dataset %q: %w", ds.Name, err)
	}
	fieldsJSON, err := json.Marshal(ds.Fields)
	if err != nil {
		return "", fmt.Errorf("dataset %q: encode fields: %w", ds.Name, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)

	// records first: no reliance on ON DELETE CASCADE being enabled
	if _, err := q.Exec(ctx, "delete-records", ds.Name); err != nil {
		return "", fmt.Errorf("dataset %q: clear records: %w", ds.Name, err)
	}
	if _, err := q.Exec(ctx, "delete-dataset", ds.Name); err != nil {
		return "", fmt.Errorf("dataset %q: clear dataset: %w", ds.Name, err)
	}
	if _, err := q.Exec(ctx, "insert-dataset",
		ds.Name, string(fieldsJSON), version, len(ds.Records), s.now().UTC()); err != nil {
		return "", fmt.Errorf("dataset %q: insert: %w", ds.Name, err)
	}

	for i, rec := range ds.Records {
		body, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("dataset %q: encode record %d: %w", ds.Name, i, err)
		}
		if _, err := q.Exec(ctx, "insert-record", ds.Name, i, string(body)); err != nil {
			return "", fmt.Errorf("dataset %q: insert record %d: %w", ds.Name, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit dataset %q: %w", ds.Name, err)
	}
	return version, nil
}

// getRow loads the dataset header, mapping no rows to ErrDatasetNotFound.
func (s *RecordStore) getRow(ctx context.Context, name string) (datasetRow, error) {
	var row datasetRow
	if err := s.queries.Get(ctx, "get-dataset", &row, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, fmt.Errorf("%q: %w", name, types.ErrDatasetNotFound)
		}
		return row, fmt.Errorf("load dataset %q: %w", name, err)
	}
	return row, nil
}

// LoadFields returns the field definitions of a stored dataset.
func (s *RecordStore) LoadFields(ctx context.Context, name string) ([]types.FieldDefinition, error) {
	row, err := s.getRow(ctx, name)
	if err != nil {
		return nil, err
	}
	return decodeFields(row)
}

// LoadDataset returns the dataset with records in saved order.
func (s *RecordStore) LoadDataset(ctx context.Context, name string) (*types.Dataset, error) {
	row, err := s.getRow(ctx, name)
	if err != nil {
		return nil, err
	}
	fields, err := decodeFields(row)
	if err != nil {
		return nil, err
	}

	var bodies []string
	if err := s.queries.Select(ctx, "list-records", &bodies, name); err != nil {
		return nil, fmt.Errorf("load records of %q: %w", name, err)
	}

	records := make([]types.Record, len(bodies))
	for i, body := range bodies {
		if err := json.Unmarshal([]byte(body), &records[i]); err != nil {
			return nil, fmt.Errorf("decode record %d of %q: %w", i, name, err)
		}
	}

	return &types.Dataset{
		Name:    row.Name,
		Fields:  fields,
		Records: records,
		Version: row.Version,
	}, nil
}

// DatasetVersion returns the content version without loading records.
func (s *RecordStore) DatasetVersion(ctx context.Context, name string) (string, error) {
	var version string
	if err := s.queries.Get(ctx, "get-dataset-version", &version, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%q: %w", name, types.ErrDatasetNotFound)
		}
		return "", fmt.Errorf("dataset version %q: %w", name, err)
	}
	return version, nil
}

// ListDatasets returns stored datasets ordered by name.
func (s *RecordStore) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	infos := []DatasetInfo{}
	if err := s.queries.Select(ctx, "list-datasets", &infos); err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return infos, nil
}

// DeleteDataset removes a dataset and its records.
func (s *RecordStore) DeleteDataset(ctx context.Context, name string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)
	if _, err := q.Exec(ctx, "delete-records", name); err != nil {
		return fmt.Errorf("delete records of %q: %w", name, err)
	}
	res, err := q.Exec(ctx, "delete-dataset", name)
	if err != nil {
		return fmt.Errorf("delete dataset %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%q: %w", name, types.ErrDatasetNotFound)
	}
	return tx.Commit()
}

func decodeFields(row datasetRow) ([]types.FieldDefinition, error) {
	var fields []types.FieldDefinition
	if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
		return nil, fmt.Errorf("decode fields of %q: %w", row.Name, err)
	}
	return fields, nil
}

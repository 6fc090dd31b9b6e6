// Package api provides the query service behind the gRPC and HTTP endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/solatis/fieldfilter/internal/core/config"
	"github.com/solatis/fieldfilter/internal/core/db"
	"github.com/solatis/fieldfilter/internal/filter"
	"github.com/solatis/fieldfilter/internal/types"
)

// DatasetStore is the read side of the dataset store.
type DatasetStore interface {
	LoadDataset(ctx context.Context, name string) (*types.Dataset, error)
	DatasetVersion(ctx context.Context, name string) (string, error)
	LoadFields(ctx context.Context, name string) ([]types.FieldDefinition, error)
	ListDatasets(ctx context.Context) ([]db.DatasetInfo, error)
}

// QueryRequest selects records from a stored dataset or inline records.
// Exactly one of Dataset and Records is used; Fields applies to inline
// records only and enables condition validation.
type QueryRequest struct {
	Dataset    string                  `json:"dataset,omitempty"`
	Records    []types.Record          `json:"records,omitempty"`
	Fields     []types.FieldDefinition `json:"fields,omitempty"`
	Conditions []types.Condition       `json:"conditions"`
	Sort       *types.SortConfig       `json:"sort,omitempty"`
}

// QueryResponse carries the filtered, sorted records and run statistics.
type QueryResponse struct {
	Records  []types.Record `json:"records"`
	Total    int            `json:"total"`
	Matched  int            `json:"matched"`
	Dropped  int            `json:"dropped"`
	Version  string         `json:"version,omitempty"`
	Cached   bool           `json:"cached"`
	Warnings []string       `json:"warnings,omitempty"`
}

// QueryService runs filter queries.
// Thin orchestration layer over the store, the engine and the result cache.
type QueryService struct {
	store      DatasetStore // nil: inline records only
	engine     *filter.Engine
	cache      *filter.ResultCache
	logger     *slog.Logger
	timeout    time.Duration
	maxRecords int
	strict     bool
}

// NewQueryService creates a service. store may be nil when no database is
// configured; dataset queries then fail with ErrNoStore.
func NewQueryService(store DatasetStore, engine *filter.Engine, cache *filter.ResultCache, cfg *config.Config, logger *slog.Logger) (*QueryService, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &QueryService{
		store:      store,
		engine:     engine,
		cache:      cache,
		logger:     logger,
		timeout:    cfg.Server.RequestTimeout,
		maxRecords: cfg.Server.MaxRecords,
		strict:     cfg.Filter.StrictOperators,
	}, nil
}

// Query filters and sorts the requested records.
// Dataset results are memoised under the dataset's content version.
func (s *QueryService) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := checkEnvelope(req); err != nil {
		return nil, err
	}

	if req.Dataset != "" {
		return s.queryDataset(ctx, req)
	}
	return s.queryInline(ctx, req)
}

// checkEnvelope rejects requests that are malformed regardless of data.
func checkEnvelope(req QueryRequest) error {
	if req.Dataset != "" && req.Records != nil {
		return fmt.Errorf("dataset and records are mutually exclusive: %w", types.ErrInvalidRequest)
	}
	if req.Dataset != "" && len(req.Fields) > 0 {
		return fmt.Errorf("fields come from the stored dataset: %w", types.ErrInvalidRequest)
	}
	if len(req.Conditions) > types.MaxConditions {
		return fmt.Errorf("%d conditions: %w", len(req.Conditions), types.ErrTooManyConditions)
	}
	if req.Sort != nil {
		if req.Sort.Key == "" {
			return fmt.Errorf("sort key is empty: %w", types.ErrInvalidRequest)
		}
		if err := req.Sort.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *QueryService) queryDataset(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}

	version, err := s.store.DatasetVersion(ctx, req.Dataset)
	if err != nil {
		return nil, err
	}

	// validation runs on hits too so warnings and strict failures do not
	// depend on cache state
	fields, err := s.store.LoadFields(ctx, req.Dataset)
	if err != nil {
		return nil, err
	}
	warnings, err := s.checkConditions(fields, req.Conditions)
	if err != nil {
		return nil, err
	}

	key := filter.Fingerprint(req.Dataset+"@"+version, req.Conditions, req.Sort)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("query cache hit", "dataset", req.Dataset, "version", version)
		resp := newResponse(cached, version)
		resp.Cached = true
		resp.Warnings = warnings
		return resp, nil
	}

	ds, err := s.store.LoadDataset(ctx, req.Dataset)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := s.engine.Run(ds.Records, req.Conditions, req.Sort)
	// a concurrent re-import may have changed the content; key on what ran
	s.cache.Set(filter.Fingerprint(req.Dataset+"@"+ds.Version, req.Conditions, req.Sort), result)

	resp := newResponse(result, ds.Version)
	resp.Warnings = warnings
	return resp, nil
}

func (s *QueryService) queryInline(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if len(req.Records) > s.maxRecords {
		return nil, fmt.Errorf("%d records, limit %d: %w", len(req.Records), s.maxRecords, types.ErrTooManyRecords)
	}

	warnings, err := s.checkConditions(req.Fields, req.Conditions)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := newResponse(s.engine.Run(req.Records, req.Conditions, req.Sort), "")
	resp.Warnings = warnings
	return resp, nil
}

// checkConditions validates conditions against defs when any are given.
// Strict mode returns the failures; otherwise they become warnings and the
// engine's fail-open semantics apply.
func (s *QueryService) checkConditions(defs []types.FieldDefinition, conds []types.Condition) ([]string, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	fields, err := types.NewFieldSet(defs)
	if err != nil {
		return nil, err
	}

	err = filter.ValidateConditions(fields, conds)
	if err == nil {
		return nil, nil
	}
	if s.strict {
		return nil, err
	}

	var warnings []string
	for _, e := range unjoin(err) {
		warnings = append(warnings, e.Error())
	}
	s.logger.Warn("conditions failed validation", "count", len(warnings))
	return warnings, nil
}

// Fields returns the field catalogue of a stored dataset.
func (s *QueryService) Fields(ctx context.Context, dataset string) ([]types.FieldDefinition, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.LoadFields(ctx, dataset)
}

// Datasets lists stored datasets.
func (s *QueryService) Datasets(ctx context.Context) ([]db.DatasetInfo, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.ListDatasets(ctx)
}

func newResponse(result filter.Result, version string) *QueryResponse {
	records := result.Records
	if records == nil {
		records = []types.Record{}
	}
	return &QueryResponse{
		Records: records,
		Total:   result.Total,
		Matched: result.Matched,
		Dropped: result.Dropped,
		Version: version,
	}
}

// unjoin flattens an errors.Join result.
func unjoin(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

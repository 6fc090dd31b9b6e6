package filter

import (
	"log/slog"

	"github.com/solatis/fieldfilter/internal/types"
	"golang.org/x/text/language"
)

// Engine composes filtering and sorting behind one call with logging.
// Holds no per-call state; safe for concurrent use.
type Engine struct {
	logger *slog.Logger
	sorter *Sorter
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLocale sets the collation language for string sorting.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.sorter = NewSorter(tag)
	}
}

// NewEngine creates an engine. Defaults: discard logger, English collation.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.DiscardHandler),
		sorter: defaultSorter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one Run.
type Result struct {
	Records []types.Record
	Total   int // input record count
	Matched int // records kept by the filter
	Groups  int // field groups evaluated
	Dropped int // conditions discarded as empty
}

// Run filters records by conds, then sorts the survivors by cfg (if non-nil).
func (e *Engine) Run(records []types.Record, conds []types.Condition, cfg *types.SortConfig) Result {
	compiled := Compile(conds)
	kept := compiled.Apply(records)
	sorted := e.sorter.Sort(kept, cfg)

	e.logger.Debug("filter run",
		"records", len(records),
		"conditions", len(conds),
		"dropped", compiled.Dropped,
		"groups", len(compiled.Groups),
		"matched", len(kept),
		"sorted", cfg != nil,
	)

	return Result{
		Records: sorted,
		Total:   len(records),
		Matched: len(kept),
		Groups:  len(compiled.Groups),
		Dropped: compiled.Dropped,
	}
}

package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/workforcedata/occsearch/pkg/document"
	"github.com/workforcedata/occsearch/pkg/observability"
)

// Config holds engine configuration
type Config struct {
	DataDir  string
	Rules    document.Rules
	Schemas  []Schema
	MinScore float64
	Workers  int
}

// DefaultConfig returns the engine defaults for dataDir
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:  dataDir,
		Rules:    document.DefaultRules(),
		Schemas:  DefaultSchemas(),
		MinScore: DefaultMinScore,
		Workers:  2 * runtime.NumCPU(),
	}
}

// Engine runs searches against the data directory
type Engine struct {
	dataDir  string
	loader   *document.Loader
	resolver *Resolver
	minScore float64
	workers  int
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewEngine creates an engine. metrics may be nil.
func NewEngine(cfg Config, logger *observability.Logger, metrics *observability.Metrics) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 2 * runtime.NumCPU()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Engine{
		dataDir:  cfg.DataDir,
		loader:   document.NewLoader(cfg.Rules),
		resolver: NewResolver(cfg.Schemas),
		minScore: cfg.MinScore,
		workers:  cfg.Workers,
		logger:   logger,
		metrics:  metrics,
	}
}

// DataDir returns the directory being searched
func (e *Engine) DataDir() string {
	return e.dataDir
}

// Search validates req, scans every document concurrently and returns the
// requested page of results sorted by score, highest first. Documents that
// fail to load are logged and skipped. A cancelled ctx aborts the scan.
func (e *Engine) Search(ctx context.Context, req Request) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.Tracer().Start(ctx, "Engine.Search",
		trace.WithAttributes(
			attribute.String("search.term", req.Term),
			attribute.Int("search.page", req.Page),
			attribute.Int("search.per_page", req.PerPage),
			attribute.Bool("search.case_sensitive", req.CaseSensitive),
			attribute.StringSlice("search.fields", req.Fields),
		),
	)
	defer span.End()

	start := time.Now()
	log := observability.WithTraceContext(ctx, observability.FromContextOr(ctx, e.logger))

	names, err := document.ListDocuments(e.dataDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list documents")
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	matcher := NewMatcher(req.Term, req.Fields, req.CaseSensitive, e.resolver)
	slots := make([]*Result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := e.searchDocument(gctx, name, req, matcher)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WithField("file", name).WithError(err).Warn("Skipping unreadable document")
				if e.metrics != nil {
					e.metrics.DocumentErrorsTotal.WithLabelValues(name).Inc()
				}
				return nil
			}
			slots[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search aborted")
		return nil, err
	}

	results := make([]Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	results = dedupeResults(results)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	page := &Page{
		Results: paginate(results, req.Offset(), req.PerPage),
		Total:   len(results),
		PerPage: req.PerPage,
		Offset:  req.Offset(),
	}

	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.SearchDuration.Observe(elapsed.Seconds())
		e.metrics.SearchResultsTotal.Observe(float64(page.Total))
	}
	span.SetAttributes(
		attribute.Int("search.documents", len(names)),
		attribute.Int("search.total", page.Total),
	)
	log.WithFields(map[string]interface{}{
		"term":        req.Term,
		"documents":   len(names),
		"total":       page.Total,
		"duration_ms": elapsed.Milliseconds(),
	}).Debug("Search complete")

	return page, nil
}

// searchDocument loads, matches and scores one document. It returns a nil
// result without error when the document is skipped, has no matches or
// scores below the minimum.
func (e *Engine) searchDocument(ctx context.Context, name string, req Request, matcher *Matcher) (result *Result, err error) {
	defer func() {
		if perr := observability.PanicError(recover()); perr != nil {
			result, err = nil, perr
		}
	}()

	doc, err := e.loader.Load(ctx, e.dataDir, name, req.Subset)
	if errors.Is(err, document.ErrSkipped) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.DocumentsScannedTotal.Inc()
	}

	matches := matcher.Match(doc)
	if len(matches) == 0 {
		return nil, nil
	}

	score := Score(matches, matcher.TermLength())
	if score < e.minScore {
		return nil, nil
	}

	result = &Result{
		File:    name,
		Matches: Dedupe(matches),
		Score:   score,
		Snippet: Snippet(matches),
	}
	if req.Subset != "" && e.loader.Rules().AcceptsSubset(name) {
		result.SearchedArray = req.Subset
	}
	return result, nil
}

// paginate returns results[offset:offset+limit], clamped. A negative offset
// comes from page*per_page overflowing and yields an empty page.
func paginate(results []Result, offset, limit int) []Result {
	if offset < 0 || offset >= len(results) {
		return []Result{}
	}
	if limit > len(results)-offset {
		limit = len(results) - offset
	}
	return results[offset : offset+limit]
}

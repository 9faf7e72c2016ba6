package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	"github.com/gorilla/mux"

	"github.com/workforcedata/occsearch/pkg/async"
	"github.com/workforcedata/occsearch/pkg/cache"
	"github.com/workforcedata/occsearch/pkg/history"
	"github.com/workforcedata/occsearch/pkg/httputil"
	"github.com/workforcedata/occsearch/pkg/observability"
)

const (
	defaultPage    = 1
	defaultPerPage = 10

	// CacheStatusHeader reports HIT, MISS or BYPASS
	CacheStatusHeader = "X-Cache"

	internalErrorMessage = "An error occurred while processing your search"
)

// Searcher runs a validated search
type Searcher interface {
	Search(ctx context.Context, req Request) (*Page, error)
}

// HandlerOptions wires the optional collaborators of the search handlers
type HandlerOptions struct {
	Cache   cache.Cache
	History history.Recorder
	Tasks   *async.Tasks
	Logger  *observability.Logger
	Metrics *observability.Metrics
	// Production hides error details from 500 responses
	Production bool
}

// Handlers provides HTTP handlers for search
type Handlers struct {
	engine     Searcher
	cache      cache.Cache
	history    history.Recorder
	tasks      *async.Tasks
	logger     *observability.Logger
	metrics    *observability.Metrics
	production bool
}

// NewHandlers creates search handlers. Missing options fall back to a
// disabled cache, no history and a discarding logger.
func NewHandlers(engine Searcher, opts HandlerOptions) *Handlers {
	h := &Handlers{
		engine:     engine,
		cache:      opts.Cache,
		history:    opts.History,
		tasks:      opts.Tasks,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		production: opts.Production,
	}
	if h.cache == nil {
		h.cache = cache.Disabled{}
	}
	if h.history == nil {
		h.history = history.Noop{}
	}
	if h.logger == nil {
		h.logger = observability.NopLogger()
	}
	if h.tasks == nil {
		h.tasks = async.NewTasks(h.logger, 0)
	}
	return h
}

// RegisterRoutes registers search routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/search", h.search).Methods(http.MethodGet)
	router.HandleFunc("/search/suggestions", h.suggestions).Methods(http.MethodGet)
	router.HandleFunc("/search/cache/stats", h.cacheStats).Methods(http.MethodGet)
	router.HandleFunc("/search/cache", h.purgeCache).Methods(http.MethodDelete)
}

// search handles GET /search
func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observability.FromContextOr(ctx, h.logger)
	start := time.Now()

	req, err := parseRequest(r)
	if err != nil {
		h.countRequest("invalid")
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	useCache := httputil.ParseQueryBool(r, "cache", true)

	key := cache.Key(cache.Params{
		Term:          req.Term,
		Fields:        req.Fields,
		CaseSensitive: req.CaseSensitive,
		Page:          req.Page,
		PerPage:       req.PerPage,
		Subset:        req.Subset,
	})

	if useCache {
		body, err := h.cache.Get(ctx, key)
		if err == nil {
			h.countRequest("hit")
			total, _ := jsonparser.GetInt(body, "pagination", "total")
			h.record(ctx, req.Term, int(total), time.Since(start), true)
			w.Header().Set(CacheStatusHeader, "HIT")
			httputil.WriteRawJSON(w, http.StatusOK, body)
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.WithError(err).Warn("Result cache read failed")
		}
	}

	page, err := h.engine.Search(ctx, req)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	body, err := json.Marshal(shapeResponse(req, page))
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	status := "BYPASS"
	if useCache {
		status = "MISS"
		if err := h.cache.Set(ctx, key, body); err != nil {
			log.WithError(err).Warn("Result cache write failed")
		}
	}

	h.countRequest("computed")
	h.record(ctx, req.Term, page.Total, time.Since(start), false)
	w.Header().Set(CacheStatusHeader, status)
	httputil.WriteRawJSON(w, http.StatusOK, body)
}

func (h *Handlers) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		h.countRequest("invalid")
		httputil.WriteBadRequest(w, err.Error())
		return
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		h.countRequest("cancelled")
		observability.FromContextOr(r.Context(), h.logger).Debug("Client went away during search")
		return
	}

	h.countRequest("error")
	observability.FromContextOr(r.Context(), h.logger).WithError(err).Error("Search failed")

	if h.production {
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	httputil.WriteDetailedError(w, http.StatusInternalServerError, internalErrorMessage, err.Error())
}

// suggestions handles GET /search/suggestions
func (h *Handlers) suggestions(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.ParseQueryInt(r, "limit", history.DefaultSuggestionLimit)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = r.URL.Query().Get("q")
	}

	suggestions, err := h.history.Suggestions(r.Context(), prefix, limit)
	if err != nil {
		observability.FromContextOr(r.Context(), h.logger).WithError(err).Error("Suggestions failed")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "failed to load suggestions")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"prefix":      prefix,
		"suggestions": suggestions,
	})
}

// cacheStats handles GET /search/cache/stats
func (h *Handlers) cacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		httputil.WriteServiceUnavailable(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// purgeCache handles DELETE /search/cache
func (h *Handlers) purgeCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Purge(r.Context()); err != nil {
		observability.FromContextOr(r.Context(), h.logger).WithError(err).Error("Cache purge failed")
		httputil.WriteServiceUnavailable(w, "failed to purge cache")
		return
	}
	if h.metrics != nil {
		h.metrics.CachePurgesTotal.WithLabelValues("api").Inc()
	}
	observability.FromContextOr(r.Context(), h.logger).Info("Result cache purged")
	httputil.WriteNoContent(w)
}

func (h *Handlers) countRequest(outcome string) {
	if h.metrics != nil {
		h.metrics.SearchRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handlers) record(ctx context.Context, term string, total int, elapsed time.Duration, hit bool) {
	entry := history.Entry{
		Query:       term,
		ResultCount: total,
		Duration:    elapsed,
		CacheHit:    hit,
	}
	h.tasks.Go(ctx, "record search", func(ctx context.Context) error {
		return h.history.Record(ctx, entry)
	})
}

// parseRequest reads and validates the query string of GET /search
func parseRequest(r *http.Request) (Request, error) {
	q := r.URL.Query()

	req := Request{
		Term:          q.Get("q"),
		Fields:        httputil.ParseQueryList(r, "fields"),
		CaseSensitive: httputil.ParseQueryBool(r, "case_sensitive", false),
		Subset:        q.Get("array"),
	}
	if req.Term == "" {
		return req, wrapInvalid(ErrEmptyQuery)
	}

	var err error
	if req.Page, err = httputil.ParsePositiveInt(r, "page", defaultPage); err != nil {
		return req, wrapInvalid(err)
	}
	if req.PerPage, err = httputil.ParsePositiveInt(r, "per_page", defaultPerPage); err != nil {
		return req, wrapInvalid(err)
	}
	return req, req.Validate()
}

// shapeResponse builds the JSON body for a computed page
func shapeResponse(req Request, page *Page) Response {
	totalPages := 0
	if page.PerPage > 0 {
		totalPages = (page.Total + page.PerPage - 1) / page.PerPage
	}

	results := page.Results
	if results == nil {
		results = []Result{}
	}

	return Response{
		Query:   req.Term,
		Results: results,
		Pagination: Pagination{
			Total:      page.Total,
			Page:       req.Page,
			PerPage:    page.PerPage,
			TotalPages: totalPages,
		},
		Meta: Meta{
			FieldsSearched: FieldList(req.Fields),
			CaseSensitive:  req.CaseSensitive,
			SearchedArray:  req.Subset,
		},
	}
}

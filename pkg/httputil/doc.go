// Package httputil provides the small set of HTTP helpers shared by the
// search API: JSON replies, query parsing and middleware.
//
// # Responses
//
// Errors always use the ErrorResponse shape:
//
//	httputil.WriteBadRequest(w, `Search query parameter "q" is required`)
//	httputil.WriteDetailedError(w, http.StatusInternalServerError, msg, err.Error())
//
// Cached bodies are written back verbatim with WriteRawJSON.
//
// # Query Parsing
//
//	page, err := httputil.ParsePositiveInt(r, "page", 1)
//	fields := httputil.ParseQueryList(r, "fields")
//	useCache := httputil.ParseQueryBool(r, "cache", true)
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware(logger),
//		httputil.LoggingMiddleware,
//		httputil.RecoveryMiddleware,
//		httputil.CORSMiddleware([]string{"*"}),
//	)(router)
package httputil

// Package api serves the classification pipeline over HTTP.
//
// Routes:
//
//	POST /               classify a query string body
//	POST /api/classify   same as POST /
//	GET  /api/health     model and store names
//	GET  /metrics        Prometheus exposition
//
// Classification responses are {"class": ...} with 200, or {"error": ...} with
// 400 for malformed bodies, 404 for unknown records, 422 for incomplete
// records, 413 for oversized bodies, 429 when rate limited, and 500
// otherwise.
package api

// Package scorer runs the duplicate classification pipeline for one request.
//
// A request body of the form q_sr_id=<id>&m_sr_id=<id> moves through the
// stages received, parsed, fetched, featurized, classified, and responded.
// Service.Handle always resolves to a Response: either {"class": ...} or
// {"error": ...}. Classify maps pipeline errors to HTTP status codes and
// client-facing messages for the API layer.
//
// Service holds no per-request state. The record store and the model are
// built once at startup and shared by every request.
package scorer

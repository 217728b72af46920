// Package httputil provides the shared JSON response helpers for handlers.
//
// Handlers respond through these helpers rather than raw http.ResponseWriter
// calls so that status codes, error bodies and the not-configured/upstream
// degradation paths stay uniform across the API, portal, webhook and cron
// surfaces.
package httputil

// Package observability provides structured logging and Prometheus
// metrics for the blog server.
package observability

// Package api implements the REST client for the public player namespace
// (/api). It is a thin transport layer: one method per endpoint, context on
// every call, no retries. Callers decide how failures surface.
package api

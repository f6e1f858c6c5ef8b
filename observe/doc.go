// Package observe provides observability primitives for ERP call dispatch.
//
// It is a pure instrumentation library: no dispatch, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the broker and
// server middleware.
package observe

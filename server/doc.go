// Package server exposes the gateway over HTTP.
//
// The surface is small: minting and validating sealed credential tokens
// (/auth/generate, /auth/validate), a tool catalog (/tools/list), a single
// dispatch endpoint (/tools/call) and the health probes. Callers authenticate
// per request by presenting either a sealed token (X-API-Key header or
// Authorization: Bearer) or base64-encoded raw credentials
// (X-Auth-Credentials header); both shapes normalize to the same credentials
// value before the broker sees them.
//
// Every failure mode maps to a stable machine-readable status string in the
// response body alongside the HTTP status code, so automation callers can
// branch without parsing prose.
package server

// Package secret resolves secret references in configuration values, so the
// gateway's encryption key never has to sit in plain text in an environment
// file or unit definition.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider + Registry)
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:file:/run/secrets/gateway_key
//   - Inline use:  Bearer secretref:env:UPSTREAM_API_TOKEN
//
// The env and file providers are built in; NewDefaultResolver returns a
// resolver with both registered.
package secret

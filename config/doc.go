// Package config loads the gateway's process configuration from ODOOGATE_*
// environment variables.
//
// Every setting has a default except the encryption key: the gateway refuses
// to start without ODOOGATE_ENCRYPTION_KEY, because tokens sealed under an
// ad-hoc key would all be invalidated by a restart. The key value may be a
// literal, or a secret reference such as
//
//	ODOOGATE_ENCRYPTION_KEY=secretref:file:/run/secrets/gateway_key
//
// which is resolved through the secret package before validation.
package config

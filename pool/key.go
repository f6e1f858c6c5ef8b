package pool

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key identifies one pooled session: one caller identity against one
// database with one scope. Keys are derived, never constructed from raw
// caller input.
type Key string

// keyPayload fixes the field order of the hashed form.
type keyPayload struct {
	Endpoint string `json:"endpoint"`
	Database string `json:"database"`
	Username string `json:"username"`
	Scope    string `json:"scope"`
}

// KeyFor derives the pool key for a caller. The scope argument is the raw
// scope string as presented: two callers with the same identity but
// different scope strings get distinct sessions. The password is
// deliberately absent, so key material never embeds a secret.
func KeyFor(endpoint, database, username, scope string) Key {
	payload, err := json.Marshal(keyPayload{
		Endpoint: endpoint,
		Database: database,
		Username: username,
		Scope:    scope,
	})
	if err != nil {
		// Marshaling four strings cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(payload)
	return Key(hex.EncodeToString(sum[:]))
}

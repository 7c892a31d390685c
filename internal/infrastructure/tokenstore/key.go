// Package tokenstore holds the slot naming shared by every TokenStore backend
// and the in-memory backend used for development and tests.
package tokenstore

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// KeyPrefix is the constant name of the credential slot.
const KeyPrefix = "gympulse_token"

// SlotKey names the slot of one browser session. The session id is hashed so
// raw cookie values never reach storage.
func SlotKey(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return KeyPrefix + ":" + hex.EncodeToString(sum[:])
}

// Package fingerprint computes the cache key for task generation: a
// deterministic digest over everything that can change the generated plan.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/bytedance/sonic"
)

// AssetSnapshot is the reduced view of an asset that feeds generation.
// Mutable fields that do not influence the plan (condition, location, image)
// are deliberately excluded so editing them does not invalidate the cache.
// JSON field order is fixed by struct declaration, which keeps the digest
// stable across restarts.
type AssetSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SubType     string `json:"subtype"`
	Brand       string `json:"brand"`
	ModelNumber string `json:"model_number"`
	Year        string `json:"year"`
}

type payload struct {
	Prompt  string `json:"prompt"`
	Asset   string `json:"asset"`
	Version int    `json:"version"`
}

// PromptHash returns the hex SHA-256 fingerprint of a generation request:
// prompt text, asset snapshot digest, and the operator-bumped recipe version.
func PromptHash(prompt string, snap AssetSnapshot, version int) string {
	if version < 1 {
		version = 1
	}
	return sha256Hex(mustJSON(payload{
		Prompt:  prompt,
		Asset:   SnapshotDigest(snap),
		Version: version,
	}))
}

// SnapshotDigest returns the hex SHA-256 of the canonical snapshot JSON.
func SnapshotDigest(snap AssetSnapshot) string {
	return sha256Hex(mustJSON(snap))
}

func mustJSON(v any) []byte {
	b, err := sonic.Marshal(v)
	if err != nil {
		// Marshalling flat string/int structs cannot fail.
		panic(err)
	}
	return b
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

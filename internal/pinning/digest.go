package pinning

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest computes the content digest of a description. The digest is
// one-way and deterministic; an absent description maps to the
// canonical empty digest, so two scans of a description-less entity can
// never disagree.
func Digest(description string) string {
	sum := sha256.Sum256([]byte(description))
	return hex.EncodeToString(sum[:])
}

package crypto_util

import (
	"encoding/hex"
	"strings"

	"lukechampine.com/blake3"
)

// CalculateBlake3 returns the hex Blake3-256 digest of data.
func CalculateBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint derives a stable identifier from ordered parts, e.g. the
// event id of an outbox message: Fingerprint("payout.completed", "42").
func Fingerprint(parts ...string) string {
	return CalculateBlake3([]byte(strings.Join(parts, "\x1f")))
}

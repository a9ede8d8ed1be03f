// Package idhash derives deterministic identifiers so replayed inputs map
// to the same ids instead of minting new ones.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeSubmissionID computes a deterministic submission id using SHA256.
// Formula: SHA256(asset|side|signal_time_unix_nano)
// Returns hex-encoded hash (64 characters).
func ComputeSubmissionID(asset, side string, signalTime time.Time) string {
	data := fmt.Sprintf("%s|%s|%d", asset, side, signalTime.UnixNano())
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

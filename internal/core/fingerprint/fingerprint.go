// Package fingerprint derives deterministic cache keys for analysis requests.
// The key is a SHA-256 over the request kind and the normalized content, so
// byte-identical requests always map to the same key across restarts
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"sleuth/internal/core/normalize"
)

// Kind tags the request family a fingerprint belongs to
type Kind string

const (
	// KindText is a text analysis request
	KindText Kind = "text"

	// KindVideo is a video analysis request
	KindVideo Kind = "video"
)

// Compute returns the hex fingerprint for kind + content.
// Content is normalized first so semantically identical requests collide on purpose
func Compute(kind Kind, content string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(normalize.Text(content)))
	return hex.EncodeToString(h.Sum(nil))
}

// Text is shorthand for Compute(KindText, content)
func Text(content string) string { return Compute(KindText, content) }

// Video is shorthand for Compute(KindVideo, content)
func Video(content string) string { return Compute(KindVideo, content) }

package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 32
	keyLength  = 32
	iterations = 120_000
)

// Hasher derives and verifies salted password digests.
// A digest is the raw concatenation salt||key (32+32 bytes), produced with
// PBKDF2-HMAC-SHA256. The work factor is deliberately slow; callers should
// not expect sub-millisecond latency from Derive or Verify.
type Hasher struct{}

func NewHasher() *Hasher { return &Hasher{} }

// Derive hashes a secret with a fresh random salt.
// Neither the secret nor the derived key is ever logged.
func (h *Hasher) Derive(secret []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	key := pbkdf2.Key(secret, salt, iterations, keyLength, sha256.New)

	digest := make([]byte, 0, saltLength+keyLength)
	digest = append(digest, salt...)
	digest = append(digest, key...)
	return digest, nil
}

// Verify re-derives the key from the digest's salt prefix and compares in
// constant time. A malformed digest yields false, never a panic.
func (h *Hasher) Verify(digest, candidate []byte) bool {
	if len(digest) != saltLength+keyLength {
		return false
	}
	salt, expected := digest[:saltLength], digest[saltLength:]
	key := pbkdf2.Key(candidate, salt, iterations, keyLength, sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// Package crypto derives the portal cookie keys from one configured secret.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// Params
const (
	HashKeyLen  = 64 // HMAC-SHA256 signing key
	BlockKeyLen = 32 // AES-256 encryption key

	minSecretLen = 16

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
	masterLen    uint32 = 32
)

// cookieSalt is fixed so the same secret yields the same keys across restarts.
var cookieSalt = []byte("policydesk/cookie/v1")

// ErrShortSecret is returned for secrets shorter than 16 bytes.
var ErrShortSecret = errors.New("cookie secret must be at least 16 bytes")

// Rand returns n cryptographically secure random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// CookieKeys stretches secret with Argon2id and expands it with HKDF-SHA256 into
// independent signing and encryption keys.
func CookieKeys(secret []byte) (hashKey, blockKey []byte, err error) {
	if len(secret) < minSecretLen {
		return nil, nil, ErrShortSecret
	}
	master := argon2.IDKey(secret, cookieSalt, argonTime, argonMemory, argonThreads, masterLen)

	hashKey, err = expand(master, "hash", HashKeyLen)
	if err != nil {
		return nil, nil, err
	}
	blockKey, err = expand(master, "block", BlockKeyLen)
	if err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

func expand(master []byte, info string, n int) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte("policydesk/cookie/"+info))
	key := make([]byte, n)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

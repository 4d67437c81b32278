package fieldcrypt

import (
	"crypto/sha256"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"taskvault/internal/model"
)

// Key identifiers are user or group IDs the backend already exposes, so
// they are stretched rather than used as raw cipher keys. The salt is a
// fixed application-wide constant: derivation must stay deterministic
// across devices for the same identifier.
const (
	keySalt       = "taskvault-field-encryption-v1"
	keyIterations = 100_000
	keyLength     = 32
)

// DeriveKey stretches an opaque key identifier into an AES-256 key via
// PBKDF2-SHA256. The same identifier always yields the same key.
// An empty identifier returns model.ErrMissingKeyIdentifier.
//
// The returned key bytes are owned by the caller's stack; they must not
// be persisted or logged.
func DeriveKey(identifier string) ([]byte, error) {
	if identifier == "" {
		return nil, model.ErrMissingKeyIdentifier
	}
	return pbkdf2.Key([]byte(identifier), []byte(keySalt), keyIterations, keyLength, sha256.New), nil
}

// KeyCache memoizes derived keys by identifier for migration-scale
// workloads, where re-deriving per record would dominate runtime.
// Entries live in process memory only. Safe for concurrent use.
type KeyCache struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// NewKeyCache creates an empty key cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{keys: make(map[string][]byte)}
}

// Derive returns the cached key for identifier, deriving and storing it
// on first use.
func (c *KeyCache) Derive(identifier string) ([]byte, error) {
	c.mu.RLock()
	key, ok := c.keys[identifier]
	c.mu.RUnlock()
	if ok {
		return key, nil
	}

	key, err := DeriveKey(identifier)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.keys[identifier] = key
	c.mu.Unlock()

	return key, nil
}

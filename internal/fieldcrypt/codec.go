// Package fieldcrypt implements field-level encryption for sensitive
// text values using AES-256-GCM with keys derived from opaque
// identifiers.
//
// Encrypted values are stored as "enc:v1:<base64(nonce||ciphertext)>" so
// they can coexist with legacy plaintext: any value without the prefix
// is treated as plaintext and passed through unchanged.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Prefix tags an encrypted field value. Any consumer must treat a value
// not starting with it as plaintext.
const Prefix = "enc:v1:"

const nonceSize = 12

var (
	// ErrInvalidKeySize is returned when the key is not 32 bytes.
	ErrInvalidKeySize = errors.New("fieldcrypt: key must be 32 bytes")
	// ErrCiphertextTooShort is returned when an encoded value decodes
	// to fewer bytes than a nonce.
	ErrCiphertextTooShort = errors.New("fieldcrypt: ciphertext too short")
)

// Codec encrypts and decrypts single string fields under one key.
// Operations are pure functions of their inputs; a Codec is safe for
// concurrent use.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a Codec from a 32-byte key, typically produced by
// DeriveKey.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != keyLength {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Encrypt encrypts plaintext and returns the prefixed encoded value.
// Empty input and already-encrypted input are returned unchanged, so
// Encrypt is idempotent and never double-encrypts.
//
// A fresh random nonce is generated on every call; nonces are never
// reused under a given key.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" || IsEncrypted(plaintext) {
		return plaintext, nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("fieldcrypt: failed to generate nonce: %w", err)
	}

	ciphertext := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return Prefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts a value previously produced by Encrypt. Empty input
// and unprefixed input are returned unchanged: untagged values are
// legacy plaintext and are never interpreted as ciphertext.
//
// Any corruption of the nonce or ciphertext, and any key mismatch,
// fails the GCM authentication and returns an error. Callers decide the
// fallback; see the adapter layer.
func (c *Codec) Decrypt(stored string) (string, error) {
	if stored == "" || !IsEncrypted(stored) {
		return stored, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, Prefix))
	if err != nil {
		return "", fmt.Errorf("fieldcrypt: invalid base64: %w", err)
	}
	if len(data) < nonceSize {
		return "", ErrCiphertextTooShort
	}

	plaintext, err := c.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("fieldcrypt: decryption failed: %w", err)
	}

	return string(plaintext), nil
}

// IsEncrypted reports whether stored carries the encryption prefix.
func IsEncrypted(stored string) bool {
	return strings.HasPrefix(stored, Prefix)
}

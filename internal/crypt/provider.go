// Package crypt holds the process-wide cryptographic material used by the
// reference codecs: the shared symmetric cipher key/vector pair and the
// per-entity, per-version signing salts. Providers are constructed once at
// startup from configuration and passed by reference to whatever needs them.
package crypt

import (
	"crypto/aes"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the cipher key length in bytes (AES-256).
const KeySize = 32

var (
	ErrBadKeySize    = errors.New("cipher key must be 32 bytes")
	ErrBadVectorSize = errors.New("cipher vector is shorter than one block")
)

// Provider carries the shared cipher key and initialization vector used for
// every entity key. The vector is truncated to the cipher block size at the
// point of use, which allows configs to carry a longer random string.
type Provider struct {
	key    []byte
	vector []byte
}

// NewProvider validates and wraps raw key material.
func NewProvider(key, vector []byte) (*Provider, error) {
	if len(key) != KeySize {
		return nil, ErrBadKeySize
	}
	if len(vector) < aes.BlockSize {
		return nil, ErrBadVectorSize
	}
	return &Provider{key: key, vector: vector}, nil
}

// NewProviderFromPassphrase derives the cipher key from a master passphrase
// with argon2id and uses the derivation salt as the vector source. The same
// passphrase and salt always yield the same provider, so every process of
// one installation agrees on the cipher.
func NewProviderFromPassphrase(passphrase, salt string) (*Provider, error) {
	if len(salt) < aes.BlockSize {
		return nil, ErrBadVectorSize
	}
	key := argon2.IDKey([]byte(passphrase), []byte(salt), 1, 64*1024, 4, KeySize)
	return &Provider{key: key, vector: []byte(salt)}, nil
}

// Key returns the cipher key.
func (p *Provider) Key() []byte { return p.key }

// Vector returns the raw vector source. Callers truncate it to the block
// size of the cipher they use.
func (p *Provider) Vector() []byte { return p.vector }

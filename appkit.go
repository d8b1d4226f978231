// Package appkit is the shared application kit for company services:
// opaque reference codecs (maps and keys), the cipher material behind
// them, and the per-company tenant context. It re-exports the packing
// subsystem so services outside this module can build a codec; the
// gateways and helpers under internal stay private to the services
// compiled into this module.
package appkit

import (
	"github.com/workroomhq/appkit/internal/crypt"
	"github.com/workroomhq/appkit/internal/pack"
)

// Codec packs, signs, encrypts and verifies entity references. Build
// one per request with the tenant of that request.
type Codec = pack.Codec

// Cache memoizes codec work within one request. Never share it across
// tenants.
type Cache = pack.Cache

// TenantProvider yields the company the current request runs under.
type TenantProvider = pack.TenantProvider

// Packet is a decoded, verified map.
type Packet = pack.Packet

// CipherProvider holds the AES key and vector of the map cipher.
type CipherProvider = crypt.Provider

// SaltProvider resolves per-entity per-version signing salts.
type SaltProvider = crypt.PackProvider

// Error classes of the packing subsystem.
var (
	ErrUnpackFailed     = pack.ErrUnpackFailed
	ErrInvalidKey       = pack.ErrInvalidKey
	ErrInvalidReference = pack.ErrInvalidReference
)

type (
	DecryptError     = pack.DecryptError
	CrossTenantError = pack.CrossTenantError
	ProgrammingError = pack.ProgrammingError
)

// NewCodec builds a codec over the given cipher material, signing salts
// and tenant. cache may be nil to disable memoization.
func NewCodec(provider *CipherProvider, salts *SaltProvider, tenant TenantProvider, cache *Cache) *Codec {
	return pack.NewCodec(provider, salts, tenant, cache)
}

// NewCache builds an empty per-request memoization cache.
func NewCache() *Cache {
	return pack.NewCache()
}

// NewCipherProvider validates and wraps raw cipher material.
func NewCipherProvider(key, vector []byte) (*CipherProvider, error) {
	return crypt.NewProvider(key, vector)
}

// NewCipherProviderFromPassphrase derives the cipher material from a
// master passphrase with argon2id.
func NewCipherProviderFromPassphrase(passphrase, salt string) (*CipherProvider, error) {
	return crypt.NewProviderFromPassphrase(passphrase, salt)
}

// NewSaltProvider wraps the per-entity per-version salt table, keyed by
// entity tag then schema version.
func NewSaltProvider(salts map[string]map[int]string) *SaltProvider {
	return crypt.NewPackProvider(salts)
}

// EntityTag reports which entity a plaintext map describes without
// validating anything else about it.
func EntityTag(m string) (string, error) {
	return pack.EntityTag(m)
}

// Package pack implements the opaque reference codecs of the platform.
//
// An internal composite identifier (shard, table, record, timestamps) is
// serialized into a signed, versioned JSON envelope called a map, and a map
// is encrypted into a key before it crosses the trust boundary. A key is
// the only form a client ever sees; on the way back in it is decrypted,
// structurally validated, signature-checked and tenant-checked before any
// field inside it is trusted.
//
// One generic engine drives all entity types; each entity contributes a
// declarative schema-version table plus a couple of hooks (tenant marker
// extraction, version-dependent field reinterpretation). Outside this
// package both maps and keys exist only as plain strings.
package pack

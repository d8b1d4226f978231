package pack

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/workroomhq/appkit/internal/crypt"
)

// TenantProvider yields the tenant the current request acts for. It is
// read at decode time by the isolation guard.
type TenantProvider interface {
	CompanyID() int64
}

// Codec drives packing, signing, encryption and tenant verification for
// every entity type. Construct one per request together with its Cache;
// the codec itself is stateless beyond the memoization tables.
type Codec struct {
	crypt  *crypt.Provider
	salts  *crypt.PackProvider
	tenant TenantProvider
	cache  *Cache

	// now stamps tenant markers at pack time; replaced in tests.
	now func() time.Time
}

// NewCodec wires a codec to its cryptographic material and tenant context.
// cache may be nil to disable memoization.
func NewCodec(provider *crypt.Provider, salts *crypt.PackProvider, tenant TenantProvider, cache *Cache) *Codec {
	return &Codec{
		crypt:  provider,
		salts:  salts,
		tenant: tenant,
		cache:  cache,
		now:    time.Now,
	}
}

// EntityTag extracts the entity-type discriminator of a plaintext map
// without validating anything else about it.
func EntityTag(m string) (string, error) {
	wire, err := decodeWire(m)
	if err != nil {
		return "", err
	}
	tag, ok := wire[wireEntityField].(string)
	if !ok {
		return "", ErrUnpackFailed
	}
	return tag, nil
}

// --- generic pack/unpack ---

// packFields validates the semantic fields against the entity's current
// schema, rewrites them to wire aliases, attaches version, tag and
// signature and serializes the result. An unknown field is a bug in the
// caller, never user input.
func (c *Codec) packFields(ent *entity, fields map[string]any) (string, error) {
	return c.packFieldsAt(ent, ent.currentVersion, fields)
}

// packFieldsAt packs against an explicit schema version. Production code
// always packs at the current version; decode paths and compatibility
// tests need the historical ones.
func (c *Codec) packFieldsAt(ent *entity, version int, fields map[string]any) (string, error) {
	schema, ok := ent.schema(version)
	if !ok {
		return "", programmingErrorf("entity %s has no schema for version %d", ent.tag, version)
	}

	wire := make(map[string]any, len(fields)+3)
	for field, value := range fields {
		alias, ok := schema[field]
		if !ok {
			return "", programmingErrorf("field %q is not in the %s v%d schema", field, ent.tag, version)
		}
		wire[alias] = value
	}

	wire[wireVersionField] = int64(version)
	wire[wireEntityField] = ent.tag

	sign, err := c.signWire(ent, wire)
	if err != nil {
		return "", err
	}
	wire[wireSignField] = sign

	raw, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// unpackMap validates and decodes a plaintext map back into its semantic
// fields. Every structural defect, including a bad signature, surfaces as the
// same ErrUnpackFailed.
func (c *Codec) unpackMap(ent *entity, m string) (Packet, error) {
	if p, ok := c.cache.lookupPacket(ent.tag, m); ok {
		return p, nil
	}

	wire, err := decodeWire(m)
	if err != nil {
		return Packet{}, err
	}

	if _, ok := wire[wireVersionField]; !ok {
		return Packet{}, ErrUnpackFailed
	}
	if tag, ok := wire[wireEntityField].(string); !ok || tag != ent.tag {
		return Packet{}, ErrUnpackFailed
	}

	version, err := wireVersion(wire)
	if err != nil {
		return Packet{}, err
	}
	schema, ok := ent.schema(version)
	if !ok {
		return Packet{}, ErrUnpackFailed
	}

	passedSign, ok := wire[wireSignField].(string)
	if !ok {
		return Packet{}, ErrUnpackFailed
	}
	delete(wire, wireSignField)

	sign, err := c.signWire(ent, wire)
	if err != nil {
		return Packet{}, err
	}
	if sign != passedSign {
		return Packet{}, errSignatureMismatch
	}

	delete(wire, wireVersionField)
	delete(wire, wireEntityField)

	inverted := schema.invert()
	fields := make(map[string]any, len(wire))
	for alias, value := range wire {
		field, ok := inverted[alias]
		if !ok {
			return Packet{}, ErrUnpackFailed
		}
		fields[field] = value
	}

	if ent.requireAllFields {
		for field := range schema {
			if _, ok := fields[field]; !ok {
				return Packet{}, ErrUnpackFailed
			}
		}
	}

	p := Packet{Version: version, fields: fields}
	c.cache.storePacket(ent.tag, m, p)
	return p, nil
}

// decodeWire parses a map string into its wire fields, with integers
// normalized to int64. Anything that is not a string or an integral number
// fails closed.
func decodeWire(m string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(m))
	dec.UseNumber()

	var wire map[string]any
	if err := dec.Decode(&wire); err != nil {
		return nil, ErrUnpackFailed
	}

	for k, v := range wire {
		switch t := v.(type) {
		case string:
		case json.Number:
			n, err := t.Int64()
			if err != nil {
				return nil, ErrUnpackFailed
			}
			wire[k] = n
		default:
			return nil, ErrUnpackFailed
		}
	}
	return wire, nil
}

// --- generic encrypt/decrypt ---

// encryptMap wraps a map into the encrypted envelope handed to clients.
// Memoized per map string unless override key material is supplied.
func (c *Codec) encryptMap(ent *entity, m string, key, vector []byte) (string, error) {
	override := key != nil || vector != nil
	if !override {
		if cached, ok := c.cache.lookupKey(ent.tag, m); ok {
			return cached, nil
		}
		key, vector = c.crypt.Key(), c.crypt.Vector()
	}

	envelope, err := json.Marshal(map[string]string{ent.envelopeField: m})
	if err != nil {
		return "", err
	}

	encrypted, err := crypt.EncryptCBC(envelope, key, vector)
	if err != nil {
		return "", err
	}

	if !override {
		c.cache.storeKey(ent.tag, m, encrypted)
	}
	return encrypted, nil
}

// decryptRawKey turns validated ciphertext back into the map string. The
// caller runs the tenant guard and owns caching, so a key that fails the
// guard is never remembered as good.
func (c *Codec) decryptRawKey(ent *entity, encrypted string, key, vector []byte) (string, error) {
	if key == nil && vector == nil {
		key, vector = c.crypt.Key(), c.crypt.Vector()
	}

	plain, err := crypt.DecryptCBC(encrypted, key, vector)
	if err != nil {
		return "", newDecryptError(ent.tag, err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(plain, &envelope); err != nil {
		return "", newDecryptError(ent.tag, err)
	}
	m, ok := envelope[ent.envelopeField].(string)
	if !ok {
		return "", newDecryptError(ent.tag, fmt.Errorf("missing %s field", ent.envelopeField))
	}
	return m, nil
}

// checkCorrectKey rejects a client-supplied key before any cryptographic
// operation: empty strings and strings that are not valid base64 fail
// closed.
func checkCorrectKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if _, err := base64.StdEncoding.DecodeString(key); err != nil {
		return fmt.Errorf("%w: character outside alphabet", ErrInvalidKey)
	}
	return nil
}

// --- tenant markers ---

// makeUniq builds the tenant marker embedded into several packet types:
// owning company id plus issuance time. It recovers the tenant on decode
// and is not a nonce; it is unique only tenant-scoped.
func (c *Codec) makeUniq() string {
	return strconv.FormatInt(c.tenant.CompanyID(), 10) + "_" + strconv.FormatInt(c.now().Unix(), 10)
}

// companyIDFromUniq recovers the owning company id from a tenant marker.
// The marker sits under the packet signature, so a malformed one means the
// packing side has a bug.
func companyIDFromUniq(uniq string) (int64, error) {
	parts := strings.Split(uniq, "_")
	if len(parts) != 2 {
		return 0, programmingErrorf("incorrect value for uniq parameter of packet")
	}
	companyID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, programmingErrorf("incorrect value for uniq parameter of packet")
	}
	return companyID, nil
}

// assertOwnedByCurrentTenant is the guard every uniq-bearing entity runs
// before returning a decrypted map to its caller.
func (c *Codec) assertOwnedByCurrentTenant(ent *entity, p Packet) error {
	uniq, err := p.String("uniq")
	if err != nil {
		return err
	}
	companyID, err := companyIDFromUniq(uniq)
	if err != nil {
		return err
	}
	if current := c.tenant.CompanyID(); companyID != current {
		return &CrossTenantError{Entity: ent.tag, WantCompanyID: current, GotCompanyID: companyID}
	}
	return nil
}

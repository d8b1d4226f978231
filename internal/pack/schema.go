package pack

// Reserved wire fields present in every packed map. Their names never
// collide with schema aliases, which are single lowercase letters.
const (
	wireVersionField = "_"
	wireEntityField  = "?"
	wireSignField    = "z"
)

// wireSchema maps a semantic field name to its single-character wire alias
// for one schema version. Published versions are immutable; adding a field
// means adding a version.
type wireSchema map[string]string

// invert returns the alias-to-field mapping of the schema.
func (s wireSchema) invert() map[string]string {
	inverted := make(map[string]string, len(s))
	for field, alias := range s {
		inverted[alias] = field
	}
	return inverted
}

// entity describes one packable entity type: its wire tag, its schema
// history and the envelope field its keys decrypt to.
type entity struct {
	tag            string
	currentVersion int
	schemas        map[int]wireSchema

	// envelopeField is the outer JSON field of the encrypted payload
	// ("conversation_map", "file_map", ...). It is the only thing that
	// distinguishes cross-type ciphertexts on decrypt, the cipher itself
	// accepts any of them.
	envelopeField string

	// requireAllFields makes unpack reject packets that miss any schema
	// field instead of tolerating sparse ones.
	requireAllFields bool

	// saltTag overrides the tag used for salt lookup. Both message
	// sub-entities sign through the shared "message" salt namespace.
	saltTag string
}

func (e *entity) saltNamespace() string {
	if e.saltTag != "" {
		return e.saltTag
	}
	return e.tag
}

func (e *entity) schema(version int) (wireSchema, bool) {
	s, ok := e.schemas[version]
	return s, ok
}

// Packet is one decoded map: semantic fields plus the schema version it
// was packed with. Callers that branch on legacy renames read Version.
type Packet struct {
	Version int
	fields  map[string]any
}

// Has reports whether the packet carries the given field.
func (p Packet) Has(field string) bool {
	_, ok := p.fields[field]
	return ok
}

// String projects a string field out of the packet.
func (p Packet) String(field string) (string, error) {
	v, ok := p.fields[field]
	if !ok {
		return "", ErrUnpackFailed
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrUnpackFailed
	}
	return s, nil
}

// Int projects an integer field out of the packet.
func (p Packet) Int(field string) (int64, error) {
	v, ok := p.fields[field]
	if !ok {
		return 0, ErrUnpackFailed
	}
	n, ok := v.(int64)
	if !ok {
		return 0, ErrUnpackFailed
	}
	return n, nil
}

// intOrZero is for fields that old schema versions may legitimately lack,
// such as image dimensions.
func (p Packet) intOrZero(field string) int64 {
	n, _ := p.Int(field)
	return n
}

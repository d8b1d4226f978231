package crypt

// PackProvider resolves the HMAC salt used to sign one entity's packets.
// Salts are keyed by entity tag and schema version; a version's salt is
// immutable once published, new schema versions get new salts.
type PackProvider struct {
	salts map[string]map[int][]byte
}

// NewPackProvider copies the given salt table. Keys of the outer map are
// entity tags ("conversation", "file", ...), keys of the inner map are
// schema versions. Conversation and thread messages share the single
// "message" entry.
func NewPackProvider(salts map[string]map[int]string) *PackProvider {
	table := make(map[string]map[int][]byte, len(salts))
	for tag, versions := range salts {
		table[tag] = make(map[int][]byte, len(versions))
		for version, salt := range versions {
			table[tag][version] = []byte(salt)
		}
	}
	return &PackProvider{salts: table}
}

// Salt returns the signing salt for the given entity tag and version.
// A missing salt means the installation config does not cover a schema
// version the code knows about; callers treat that as a configuration bug,
// not as user input.
func (p *PackProvider) Salt(entityTag string, version int) ([]byte, bool) {
	versions, ok := p.salts[entityTag]
	if !ok {
		return nil, false
	}
	salt, ok := versions[version]
	return salt, ok
}

package pack

var wikiSectionEntity = &entity{
	tag:            "wiki_section",
	currentVersion: 1,
	schemas: map[int]wireSchema{
		1: {
			"shard_id":   "a",
			"table_id":   "b",
			"section_id": "c",
			"uniq":       "d",
		},
	},
	envelopeField: "section_map",
}

// WikiSection packs and unpacks wiki-section references. Not used inside
// the wiki itself; other services need the reference for sane sharding.
// Section keys are only issued to pivot-scoped documents, which bypass the
// tenant guard by design.
type WikiSection struct{ c *Codec }

func (c *Codec) WikiSection() WikiSection { return WikiSection{c} }

// Pack builds a wiki-section map stamped with the current tenant marker.
func (e WikiSection) Pack(shardID string, tableID int64, sectionID string) (string, error) {
	return e.c.packFields(wikiSectionEntity, map[string]any{
		"shard_id":   shardID,
		"table_id":   tableID,
		"section_id": sectionID,
		"uniq":       e.c.makeUniq(),
	})
}

func (e WikiSection) ShardID(sectionMap string) (string, error) {
	p, err := e.c.unpackMap(wikiSectionEntity, sectionMap)
	if err != nil {
		return "", err
	}
	return p.String("shard_id")
}

func (e WikiSection) TableID(sectionMap string) (int64, error) {
	p, err := e.c.unpackMap(wikiSectionEntity, sectionMap)
	if err != nil {
		return 0, err
	}
	return p.Int("table_id")
}

func (e WikiSection) SectionID(sectionMap string) (string, error) {
	p, err := e.c.unpackMap(wikiSectionEntity, sectionMap)
	if err != nil {
		return "", err
	}
	return p.String("section_id")
}

// CompanyID recovers the owning tenant from the embedded marker.
func (e WikiSection) CompanyID(sectionMap string) (int64, error) {
	p, err := e.c.unpackMap(wikiSectionEntity, sectionMap)
	if err != nil {
		return 0, err
	}
	uniq, err := p.String("uniq")
	if err != nil {
		return 0, err
	}
	return companyIDFromUniq(uniq)
}

func (e WikiSection) Version(sectionMap string) (int, error) {
	p, err := e.c.unpackMap(wikiSectionEntity, sectionMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// Encrypt turns a wiki-section map into the key form exposed to clients.
func (e WikiSection) Encrypt(sectionMap string) (string, error) {
	return e.c.encryptMap(wikiSectionEntity, sectionMap, nil, nil)
}

// Decrypt turns a client-supplied section key back into a map.
func (e WikiSection) Decrypt(sectionKey string) (string, error) {
	if m, ok := e.c.cache.lookupMap(wikiSectionEntity.tag, sectionKey); ok {
		return m, nil
	}
	if err := checkCorrectKey(sectionKey); err != nil {
		return "", err
	}
	m, err := e.c.decryptRawKey(wikiSectionEntity, sectionKey, nil, nil)
	if err != nil {
		return "", err
	}
	e.c.cache.storeMap(wikiSectionEntity.tag, sectionKey, m)
	return m, nil
}

// TryDecrypt folds every validation failure into the uniform
// invalid-reference error.
func (e WikiSection) TryDecrypt(sectionKey string) (string, error) {
	m, err := e.Decrypt(sectionKey)
	if err != nil {
		return "", foldForUser(err)
	}
	return m, nil
}

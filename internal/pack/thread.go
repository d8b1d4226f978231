package pack

var threadEntity = &entity{
	tag:            "thread",
	currentVersion: 1,
	schemas: map[int]wireSchema{
		1: {
			"shard_id": "a",
			"table_id": "b",
			"meta_id":  "c",
			"uniq":     "d",
		},
	},
	envelopeField: "thread_map",
}

// Thread packs and unpacks thread references.
type Thread struct{ c *Codec }

func (c *Codec) Thread() Thread { return Thread{c} }

// Pack builds a thread map stamped with the current tenant marker.
func (e Thread) Pack(shardID string, tableID, metaID int64) (string, error) {
	return e.c.packFields(threadEntity, map[string]any{
		"shard_id": shardID,
		"table_id": tableID,
		"meta_id":  metaID,
		"uniq":     e.c.makeUniq(),
	})
}

func (e Thread) ShardID(threadMap string) (string, error) {
	p, err := e.c.unpackMap(threadEntity, threadMap)
	if err != nil {
		return "", err
	}
	return p.String("shard_id")
}

func (e Thread) TableID(threadMap string) (int64, error) {
	p, err := e.c.unpackMap(threadEntity, threadMap)
	if err != nil {
		return 0, err
	}
	return p.Int("table_id")
}

func (e Thread) MetaID(threadMap string) (int64, error) {
	p, err := e.c.unpackMap(threadEntity, threadMap)
	if err != nil {
		return 0, err
	}
	return p.Int("meta_id")
}

// CompanyID recovers the owning tenant from the embedded marker.
func (e Thread) CompanyID(threadMap string) (int64, error) {
	p, err := e.c.unpackMap(threadEntity, threadMap)
	if err != nil {
		return 0, err
	}
	uniq, err := p.String("uniq")
	if err != nil {
		return 0, err
	}
	return companyIDFromUniq(uniq)
}

func (e Thread) Version(threadMap string) (int, error) {
	p, err := e.c.unpackMap(threadEntity, threadMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// Encrypt turns a thread map into the key form exposed to clients.
func (e Thread) Encrypt(threadMap string) (string, error) {
	return e.c.encryptMap(threadEntity, threadMap, nil, nil)
}

// Decrypt turns a client-supplied thread key back into a map, rejecting
// keys issued for another tenant.
func (e Thread) Decrypt(threadKey string) (string, error) {
	if m, ok := e.c.cache.lookupMap(threadEntity.tag, threadKey); ok {
		return m, nil
	}
	if err := checkCorrectKey(threadKey); err != nil {
		return "", err
	}
	m, err := e.c.decryptRawKey(threadEntity, threadKey, nil, nil)
	if err != nil {
		return "", err
	}

	p, err := e.c.unpackMap(threadEntity, m)
	if err != nil {
		return "", err
	}
	if err := e.c.assertOwnedByCurrentTenant(threadEntity, p); err != nil {
		return "", err
	}

	e.c.cache.storeMap(threadEntity.tag, threadKey, m)
	return m, nil
}

// TryDecrypt folds every validation failure into the uniform
// invalid-reference error.
func (e Thread) TryDecrypt(threadKey string) (string, error) {
	m, err := e.Decrypt(threadKey)
	if err != nil {
		return "", foldForUser(err)
	}
	return m, nil
}

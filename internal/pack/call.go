package pack

var callEntity = &entity{
	tag:            "call",
	currentVersion: 1,
	schemas: map[int]wireSchema{
		1: {
			"shard_id": "a",
			"table_id": "b",
			"meta_id":  "c",
		},
	},
	envelopeField: "call_map",
}

// Call packs and unpacks call references. Call packets carry no tenant
// marker, so their keys decrypt without an ownership check.
type Call struct{ c *Codec }

func (c *Codec) Call() Call { return Call{c} }

// Pack builds a call map.
func (e Call) Pack(shardID string, tableID, metaID int64) (string, error) {
	return e.c.packFields(callEntity, map[string]any{
		"shard_id": shardID,
		"table_id": tableID,
		"meta_id":  metaID,
	})
}

func (e Call) ShardID(callMap string) (string, error) {
	p, err := e.c.unpackMap(callEntity, callMap)
	if err != nil {
		return "", err
	}
	return p.String("shard_id")
}

func (e Call) TableID(callMap string) (int64, error) {
	p, err := e.c.unpackMap(callEntity, callMap)
	if err != nil {
		return 0, err
	}
	return p.Int("table_id")
}

func (e Call) MetaID(callMap string) (int64, error) {
	p, err := e.c.unpackMap(callEntity, callMap)
	if err != nil {
		return 0, err
	}
	return p.Int("meta_id")
}

func (e Call) Version(callMap string) (int, error) {
	p, err := e.c.unpackMap(callEntity, callMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// Encrypt turns a call map into the key form exposed to clients.
func (e Call) Encrypt(callMap string) (string, error) {
	return e.c.encryptMap(callEntity, callMap, nil, nil)
}

// Decrypt turns a client-supplied call key back into a map.
func (e Call) Decrypt(callKey string) (string, error) {
	if m, ok := e.c.cache.lookupMap(callEntity.tag, callKey); ok {
		return m, nil
	}
	if err := checkCorrectKey(callKey); err != nil {
		return "", err
	}
	m, err := e.c.decryptRawKey(callEntity, callKey, nil, nil)
	if err != nil {
		return "", err
	}
	e.c.cache.storeMap(callEntity.tag, callKey, m)
	return m, nil
}

// TryDecrypt folds every validation failure into the uniform
// invalid-reference error.
func (e Call) TryDecrypt(callKey string) (string, error) {
	m, err := e.Decrypt(callKey)
	if err != nil {
		return "", foldForUser(err)
	}
	return m, nil
}

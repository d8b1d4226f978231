package pack

var inviteEntity = &entity{
	tag:            "invite",
	currentVersion: 1,
	schemas: map[int]wireSchema{
		1: {
			"shard_id": "a",
			"meta_id":  "b",
			"type":     "c",
			"uniq":     "d",
		},
	},
	envelopeField: "invite_map",
}

// Invite packs and unpacks invite references.
type Invite struct{ c *Codec }

func (c *Codec) Invite() Invite { return Invite{c} }

// Pack builds an invite map stamped with the current tenant marker.
func (e Invite) Pack(shardID string, metaID, inviteType int64) (string, error) {
	return e.c.packFields(inviteEntity, map[string]any{
		"shard_id": shardID,
		"meta_id":  metaID,
		"type":     inviteType,
		"uniq":     e.c.makeUniq(),
	})
}

func (e Invite) ShardID(inviteMap string) (string, error) {
	p, err := e.c.unpackMap(inviteEntity, inviteMap)
	if err != nil {
		return "", err
	}
	return p.String("shard_id")
}

func (e Invite) MetaID(inviteMap string) (int64, error) {
	p, err := e.c.unpackMap(inviteEntity, inviteMap)
	if err != nil {
		return 0, err
	}
	return p.Int("meta_id")
}

func (e Invite) Type(inviteMap string) (int64, error) {
	p, err := e.c.unpackMap(inviteEntity, inviteMap)
	if err != nil {
		return 0, err
	}
	return p.Int("type")
}

// CompanyID recovers the owning tenant from the embedded marker.
func (e Invite) CompanyID(inviteMap string) (int64, error) {
	p, err := e.c.unpackMap(inviteEntity, inviteMap)
	if err != nil {
		return 0, err
	}
	uniq, err := p.String("uniq")
	if err != nil {
		return 0, err
	}
	return companyIDFromUniq(uniq)
}

func (e Invite) Version(inviteMap string) (int, error) {
	p, err := e.c.unpackMap(inviteEntity, inviteMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// Encrypt turns an invite map into the key form exposed to clients.
func (e Invite) Encrypt(inviteMap string) (string, error) {
	return e.c.encryptMap(inviteEntity, inviteMap, nil, nil)
}

// Decrypt turns a client-supplied invite key back into a map, rejecting
// keys issued for another tenant.
func (e Invite) Decrypt(inviteKey string) (string, error) {
	if m, ok := e.c.cache.lookupMap(inviteEntity.tag, inviteKey); ok {
		return m, nil
	}
	if err := checkCorrectKey(inviteKey); err != nil {
		return "", err
	}
	m, err := e.c.decryptRawKey(inviteEntity, inviteKey, nil, nil)
	if err != nil {
		return "", err
	}

	p, err := e.c.unpackMap(inviteEntity, m)
	if err != nil {
		return "", err
	}
	if err := e.c.assertOwnedByCurrentTenant(inviteEntity, p); err != nil {
		return "", err
	}

	e.c.cache.storeMap(inviteEntity.tag, inviteKey, m)
	return m, nil
}

// TryDecrypt folds every validation failure into the uniform
// invalid-reference error.
func (e Invite) TryDecrypt(inviteKey string) (string, error) {
	m, err := e.Decrypt(inviteKey)
	if err != nil {
		return "", foldForUser(err)
	}
	return m, nil
}

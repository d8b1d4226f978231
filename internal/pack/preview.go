package pack

var previewEntity = &entity{
	tag:            "preview",
	currentVersion: 1,
	schemas: map[int]wireSchema{
		1: {
			"table_id":     "a",
			"preview_hash": "b",
			"created_at":   "c",
		},
	},
	envelopeField: "preview_map",
}

// Preview packs and unpacks link-preview references. Previews carry no
// tenant marker; the preview body itself holds nothing tenant-private.
type Preview struct{ c *Codec }

func (c *Codec) Preview() Preview { return Preview{c} }

// Pack builds a preview map.
func (e Preview) Pack(tableID int64, previewHash string, createdAt int64) (string, error) {
	return e.c.packFields(previewEntity, map[string]any{
		"table_id":     tableID,
		"preview_hash": previewHash,
		"created_at":   createdAt,
	})
}

func (e Preview) TableID(previewMap string) (int64, error) {
	p, err := e.c.unpackMap(previewEntity, previewMap)
	if err != nil {
		return 0, err
	}
	return p.Int("table_id")
}

func (e Preview) Hash(previewMap string) (string, error) {
	p, err := e.c.unpackMap(previewEntity, previewMap)
	if err != nil {
		return "", err
	}
	return p.String("preview_hash")
}

func (e Preview) CreatedAt(previewMap string) (int64, error) {
	p, err := e.c.unpackMap(previewEntity, previewMap)
	if err != nil {
		return 0, err
	}
	return p.Int("created_at")
}

func (e Preview) Version(previewMap string) (int, error) {
	p, err := e.c.unpackMap(previewEntity, previewMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// Encrypt turns a preview map into the key form exposed to clients.
func (e Preview) Encrypt(previewMap string) (string, error) {
	return e.c.encryptMap(previewEntity, previewMap, nil, nil)
}

// Decrypt turns a client-supplied preview key back into a map.
func (e Preview) Decrypt(previewKey string) (string, error) {
	if m, ok := e.c.cache.lookupMap(previewEntity.tag, previewKey); ok {
		return m, nil
	}
	if err := checkCorrectKey(previewKey); err != nil {
		return "", err
	}
	m, err := e.c.decryptRawKey(previewEntity, previewKey, nil, nil)
	if err != nil {
		return "", err
	}
	e.c.cache.storeMap(previewEntity.tag, previewKey, m)
	return m, nil
}

// TryDecrypt folds every validation failure into the uniform
// invalid-reference error.
func (e Preview) TryDecrypt(previewKey string) (string, error) {
	m, err := e.Decrypt(previewKey)
	if err != nil {
		return "", foldForUser(err)
	}
	return m, nil
}

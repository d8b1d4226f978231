package pack

import (
	"strconv"
	"time"
)

var conversationEntity = &entity{
	tag:            "conversation",
	currentVersion: 1,
	schemas: map[int]wireSchema{
		1: {
			"shard_id": "a",
			"table_id": "b",
			"meta_id":  "c",
			"uniq":     "d",
		},
	},
	envelopeField:    "conversation_map",
	requireAllFields: true,
}

// Conversation packs and unpacks conversation references. Outside this
// package a conversation map exists only as a plain string.
type Conversation struct{ c *Codec }

func (c *Codec) Conversation() Conversation { return Conversation{c} }

// Pack builds a conversation map stamped with the current tenant marker.
func (e Conversation) Pack(shardID, tableID, metaID int64) (string, error) {
	return e.c.packFields(conversationEntity, map[string]any{
		"shard_id": shardID,
		"table_id": tableID,
		"meta_id":  metaID,
		"uniq":     e.c.makeUniq(),
	})
}

func (e Conversation) ShardID(conversationMap string) (int64, error) {
	p, err := e.c.unpackMap(conversationEntity, conversationMap)
	if err != nil {
		return 0, err
	}
	return p.Int("shard_id")
}

func (e Conversation) TableID(conversationMap string) (int64, error) {
	p, err := e.c.unpackMap(conversationEntity, conversationMap)
	if err != nil {
		return 0, err
	}
	return p.Int("table_id")
}

func (e Conversation) MetaID(conversationMap string) (int64, error) {
	p, err := e.c.unpackMap(conversationEntity, conversationMap)
	if err != nil {
		return 0, err
	}
	return p.Int("meta_id")
}

// CompanyID recovers the owning tenant from the embedded marker.
func (e Conversation) CompanyID(conversationMap string) (int64, error) {
	p, err := e.c.unpackMap(conversationEntity, conversationMap)
	if err != nil {
		return 0, err
	}
	uniq, err := p.String("uniq")
	if err != nil {
		return 0, err
	}
	return companyIDFromUniq(uniq)
}

func (e Conversation) Version(conversationMap string) (int, error) {
	p, err := e.c.unpackMap(conversationEntity, conversationMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// ShardByTime derives the storage shard coordinates for a point in time:
// the year shard and the month table.
func ShardByTime(t time.Time) (string, int64) {
	return strconv.Itoa(t.Year()), int64(t.Month())
}

// Encrypt turns a conversation map into the key form exposed to clients.
func (e Conversation) Encrypt(conversationMap string) (string, error) {
	return e.c.encryptMap(conversationEntity, conversationMap, nil, nil)
}

// Decrypt turns a client-supplied conversation key back into a map,
// rejecting keys issued for another tenant.
func (e Conversation) Decrypt(conversationKey string) (string, error) {
	if m, ok := e.c.cache.lookupMap(conversationEntity.tag, conversationKey); ok {
		return m, nil
	}
	if err := checkCorrectKey(conversationKey); err != nil {
		return "", err
	}
	m, err := e.c.decryptRawKey(conversationEntity, conversationKey, nil, nil)
	if err != nil {
		return "", err
	}

	p, err := e.c.unpackMap(conversationEntity, m)
	if err != nil {
		return "", err
	}
	if err := e.c.assertOwnedByCurrentTenant(conversationEntity, p); err != nil {
		return "", err
	}

	e.c.cache.storeMap(conversationEntity.tag, conversationKey, m)
	return m, nil
}

// TryDecrypt folds every validation failure into the uniform
// invalid-reference error.
func (e Conversation) TryDecrypt(conversationKey string) (string, error) {
	m, err := e.Decrypt(conversationKey)
	if err != nil {
		return "", foldForUser(err)
	}
	return m, nil
}

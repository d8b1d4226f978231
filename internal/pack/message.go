package pack

// Message is the router over the two message packet kinds. A message map
// embeds a full parent map (conversation or thread) as one of its fields;
// the reserved entity tag of the embedded packet tells the two apart.
// Decoding a message packet never recursively decrypts the parent, it
// stays in map form until the parent codec is asked for it.
type Message struct{ c *Codec }

func (c *Codec) Message() Message { return Message{c} }

// messageRouterEntity only names the envelope of encrypted message keys;
// the schemas live on the two concrete sub-entities.
var messageRouterEntity = &entity{
	tag:           "message",
	envelopeField: "message_map",
}

// IsFromConversation reports whether the map is a conversation message.
func (e Message) IsFromConversation(messageMap string) bool {
	tag, err := EntityTag(messageMap)
	return err == nil && tag == conversationMessageEntity.tag
}

// IsFromThread reports whether the map is a thread message.
func (e Message) IsFromThread(messageMap string) bool {
	tag, err := EntityTag(messageMap)
	return err == nil && tag == threadMessageEntity.tag
}

// Encrypt turns a message map of either kind into the key form exposed to
// clients. An empty map encrypts to an empty key.
func (e Message) Encrypt(messageMap string) (string, error) {
	if messageMap == "" {
		return "", nil
	}
	return e.c.encryptMap(messageRouterEntity, messageMap, nil, nil)
}

// Decrypt turns a client-supplied message key back into a map. Tenant
// isolation is two-hop: the embedded parent map is decoded for its tenant
// marker before the message map is trusted.
func (e Message) Decrypt(messageKey string) (string, error) {
	if m, ok := e.c.cache.lookupMap(messageRouterEntity.tag, messageKey); ok {
		return m, nil
	}
	if err := checkCorrectKey(messageKey); err != nil {
		return "", err
	}
	messageMap, err := e.c.decryptRawKey(messageRouterEntity, messageKey, nil, nil)
	if err != nil {
		return "", err
	}

	var parentCompanyID int64
	switch {
	case e.IsFromConversation(messageMap):
		parentMap, err := e.c.ConversationMessage().ConversationMap(messageMap)
		if err != nil {
			return "", err
		}
		parentCompanyID, err = e.c.Conversation().CompanyID(parentMap)
		if err != nil {
			return "", err
		}
	case e.IsFromThread(messageMap):
		parentMap, err := e.c.ThreadMessage().ThreadMap(messageMap)
		if err != nil {
			return "", err
		}
		parentCompanyID, err = e.c.Thread().CompanyID(parentMap)
		if err != nil {
			return "", err
		}
	default:
		return "", ErrUnpackFailed
	}

	if current := e.c.tenant.CompanyID(); parentCompanyID != current {
		return "", &CrossTenantError{Entity: messageRouterEntity.tag, WantCompanyID: current, GotCompanyID: parentCompanyID}
	}

	e.c.cache.storeMap(messageRouterEntity.tag, messageKey, messageMap)
	return messageMap, nil
}

// TryDecrypt folds every validation failure into the uniform
// invalid-reference error.
func (e Message) TryDecrypt(messageKey string) (string, error) {
	m, err := e.Decrypt(messageKey)
	if err != nil {
		return "", foldForUser(err)
	}
	return m, nil
}

// --- conversation messages ---

var conversationMessageEntity = &entity{
	tag:            "conversation_message",
	currentVersion: 1,
	schemas: map[int]wireSchema{
		1: {
			"conversation_map":           "a",
			"block_id":                   "b",
			"block_message_index":        "c",
			"conversation_message_index": "d",
		},
	},
	envelopeField: "message_map",
	saltTag:       "message",
}

// ConversationMessage packs and unpacks message references for dialogs.
type ConversationMessage struct{ c *Codec }

func (c *Codec) ConversationMessage() ConversationMessage { return ConversationMessage{c} }

// Pack builds a conversation-message map around its parent conversation
// map. The parent map is embedded unencrypted at this layer.
func (e ConversationMessage) Pack(conversationMap string, blockID, blockMessageIndex, messageIndex int64) (string, error) {
	return e.c.packFields(conversationMessageEntity, map[string]any{
		"conversation_map":           conversationMap,
		"block_id":                   blockID,
		"block_message_index":        blockMessageIndex,
		"conversation_message_index": messageIndex,
	})
}

// ConversationMap extracts the embedded parent map, still in map form.
func (e ConversationMessage) ConversationMap(messageMap string) (string, error) {
	p, err := e.c.unpackMap(conversationMessageEntity, messageMap)
	if err != nil {
		return "", err
	}
	return p.String("conversation_map")
}

func (e ConversationMessage) BlockID(messageMap string) (int64, error) {
	p, err := e.c.unpackMap(conversationMessageEntity, messageMap)
	if err != nil {
		return 0, err
	}
	return p.Int("block_id")
}

func (e ConversationMessage) BlockMessageIndex(messageMap string) (int64, error) {
	p, err := e.c.unpackMap(conversationMessageEntity, messageMap)
	if err != nil {
		return 0, err
	}
	return p.Int("block_message_index")
}

func (e ConversationMessage) MessageIndex(messageMap string) (int64, error) {
	p, err := e.c.unpackMap(conversationMessageEntity, messageMap)
	if err != nil {
		return 0, err
	}
	return p.Int("conversation_message_index")
}

// TableID resolves through to the parent conversation.
func (e ConversationMessage) TableID(messageMap string) (int64, error) {
	parentMap, err := e.ConversationMap(messageMap)
	if err != nil {
		return 0, err
	}
	return e.c.Conversation().TableID(parentMap)
}

func (e ConversationMessage) Version(messageMap string) (int, error) {
	p, err := e.c.unpackMap(conversationMessageEntity, messageMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// --- thread messages ---

var threadMessageEntity = &entity{
	tag:            "thread_message",
	currentVersion: 1,
	schemas: map[int]wireSchema{
		1: {
			"thread_map":           "a",
			"block_id":             "b",
			"block_message_index":  "c",
			"thread_message_index": "d",
		},
	},
	envelopeField: "message_map",
	saltTag:       "message",
}

// ThreadMessage packs and unpacks message references for threads.
type ThreadMessage struct{ c *Codec }

func (c *Codec) ThreadMessage() ThreadMessage { return ThreadMessage{c} }

// Pack builds a thread-message map around its parent thread map. The
// parent map is embedded unencrypted at this layer.
func (e ThreadMessage) Pack(threadMap string, blockID, blockMessageIndex, messageIndex int64) (string, error) {
	return e.c.packFields(threadMessageEntity, map[string]any{
		"thread_map":           threadMap,
		"block_id":             blockID,
		"block_message_index":  blockMessageIndex,
		"thread_message_index": messageIndex,
	})
}

// ThreadMap extracts the embedded parent map, still in map form.
func (e ThreadMessage) ThreadMap(messageMap string) (string, error) {
	p, err := e.c.unpackMap(threadMessageEntity, messageMap)
	if err != nil {
		return "", err
	}
	return p.String("thread_map")
}

func (e ThreadMessage) BlockID(messageMap string) (int64, error) {
	p, err := e.c.unpackMap(threadMessageEntity, messageMap)
	if err != nil {
		return 0, err
	}
	return p.Int("block_id")
}

func (e ThreadMessage) BlockMessageIndex(messageMap string) (int64, error) {
	p, err := e.c.unpackMap(threadMessageEntity, messageMap)
	if err != nil {
		return 0, err
	}
	return p.Int("block_message_index")
}

func (e ThreadMessage) MessageIndex(messageMap string) (int64, error) {
	p, err := e.c.unpackMap(threadMessageEntity, messageMap)
	if err != nil {
		return 0, err
	}
	return p.Int("thread_message_index")
}

// TableID resolves through to the parent thread.
func (e ThreadMessage) TableID(messageMap string) (int64, error) {
	parentMap, err := e.ThreadMap(messageMap)
	if err != nil {
		return 0, err
	}
	return e.c.Thread().TableID(parentMap)
}

func (e ThreadMessage) Version(messageMap string) (int, error) {
	p, err := e.c.unpackMap(threadMessageEntity, messageMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

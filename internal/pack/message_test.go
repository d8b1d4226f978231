package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workroomhq/appkit/internal/crypt"
)

func TestConversationMessageRoundTrip(t *testing.T) {
	c := newTestCodec(t, 125)

	conversationMap, err := c.Conversation().Pack(2024, 5, 12)
	require.NoError(t, err)

	messageMap, err := c.ConversationMessage().Pack(conversationMap, 3, 17, 204)
	require.NoError(t, err)

	assert.True(t, c.Message().IsFromConversation(messageMap))
	assert.False(t, c.Message().IsFromThread(messageMap))

	parent, err := c.ConversationMessage().ConversationMap(messageMap)
	require.NoError(t, err)
	assert.Equal(t, conversationMap, parent)

	blockID, err := c.ConversationMessage().BlockID(messageMap)
	require.NoError(t, err)
	assert.Equal(t, int64(3), blockID)

	blockIndex, err := c.ConversationMessage().BlockMessageIndex(messageMap)
	require.NoError(t, err)
	assert.Equal(t, int64(17), blockIndex)

	messageIndex, err := c.ConversationMessage().MessageIndex(messageMap)
	require.NoError(t, err)
	assert.Equal(t, int64(204), messageIndex)

	// resolves through the embedded parent
	tableID, err := c.ConversationMessage().TableID(messageMap)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tableID)

	messageKey, err := c.Message().Encrypt(messageMap)
	require.NoError(t, err)
	decrypted, err := c.Message().Decrypt(messageKey)
	require.NoError(t, err)
	assert.Equal(t, messageMap, decrypted)
}

func TestThreadMessageRoundTrip(t *testing.T) {
	c := newTestCodec(t, 125)

	threadMap, err := c.Thread().Pack("2024", 7, 42)
	require.NoError(t, err)

	messageMap, err := c.ThreadMessage().Pack(threadMap, 1, 4, 55)
	require.NoError(t, err)

	assert.True(t, c.Message().IsFromThread(messageMap))
	assert.False(t, c.Message().IsFromConversation(messageMap))

	parent, err := c.ThreadMessage().ThreadMap(messageMap)
	require.NoError(t, err)
	assert.Equal(t, threadMap, parent)

	messageIndex, err := c.ThreadMessage().MessageIndex(messageMap)
	require.NoError(t, err)
	assert.Equal(t, int64(55), messageIndex)

	tableID, err := c.ThreadMessage().TableID(messageMap)
	require.NoError(t, err)
	assert.Equal(t, int64(7), tableID)

	messageKey, err := c.Message().Encrypt(messageMap)
	require.NoError(t, err)
	decrypted, err := c.Message().Decrypt(messageKey)
	require.NoError(t, err)
	assert.Equal(t, messageMap, decrypted)
}

func TestMessageEncryptEmpty(t *testing.T) {
	c := newTestCodec(t, 125)

	key, err := c.Message().Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", key)
}

func TestMessageTenantIsolationThroughParent(t *testing.T) {
	owner := newTestCodec(t, 125)

	conversationMap, err := owner.Conversation().Pack(2024, 5, 12)
	require.NoError(t, err)
	messageMap, err := owner.ConversationMessage().Pack(conversationMap, 3, 17, 204)
	require.NoError(t, err)
	messageKey, err := owner.Message().Encrypt(messageMap)
	require.NoError(t, err)

	intruder := newTestCodec(t, 126)
	_, err = intruder.Message().Decrypt(messageKey)
	var crossErr *CrossTenantError
	require.ErrorAs(t, err, &crossErr)
	assert.Equal(t, int64(125), crossErr.GotCompanyID)
	assert.Equal(t, int64(126), crossErr.WantCompanyID)

	_, err = intruder.Message().TryDecrypt(messageKey)
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestMessageThreadTenantIsolation(t *testing.T) {
	owner := newTestCodec(t, 8)

	threadMap, err := owner.Thread().Pack("2024", 7, 42)
	require.NoError(t, err)
	messageMap, err := owner.ThreadMessage().Pack(threadMap, 1, 4, 55)
	require.NoError(t, err)
	messageKey, err := owner.Message().Encrypt(messageMap)
	require.NoError(t, err)

	intruder := newTestCodec(t, 9)
	_, err = intruder.Message().Decrypt(messageKey)
	var crossErr *CrossTenantError
	require.ErrorAs(t, err, &crossErr)
}

func TestMessageDecryptRejectsUnknownEmbeddedKind(t *testing.T) {
	c := newTestCodec(t, 1)

	// a call map sealed in a message envelope has no message kind
	callMap, err := c.Call().Pack("2024_5", 12, 77)
	require.NoError(t, err)
	messageKey, err := c.encryptMap(messageRouterEntity, callMap, nil, nil)
	require.NoError(t, err)

	_, err = c.Message().Decrypt(messageKey)
	require.ErrorIs(t, err, ErrUnpackFailed)
}

func TestMessageDecryptRejectsForeignEnvelope(t *testing.T) {
	c := newTestCodec(t, 125)

	conversationMap, err := c.Conversation().Pack(2024, 5, 12)
	require.NoError(t, err)
	conversationKey, err := c.Conversation().Encrypt(conversationMap)
	require.NoError(t, err)

	_, err = c.Message().Decrypt(conversationKey)
	var decryptErr *DecryptError
	require.ErrorAs(t, err, &decryptErr)
	assert.Equal(t, "message", decryptErr.Entity)
}

func TestMessageKindPredicatesOnGarbage(t *testing.T) {
	c := newTestCodec(t, 1)
	assert.False(t, c.Message().IsFromConversation("not a map"))
	assert.False(t, c.Message().IsFromThread("not a map"))
}

func TestMessageSubEntitiesShareSaltNamespace(t *testing.T) {
	salts := crypt.NewPackProvider(map[string]map[int]string{
		"conversation": {1: "conversation-salt-v1"},
		"thread":       {1: "thread-salt-v1"},
		"message":      {1: "message-salt-v1"},
	})
	c := NewCodec(testProvider(t), salts, staticTenant(125), NewCache())

	conversationMap, err := c.Conversation().Pack(2024, 5, 12)
	require.NoError(t, err)
	conversationMessage, err := c.ConversationMessage().Pack(conversationMap, 3, 17, 204)
	require.NoError(t, err)
	_, err = c.ConversationMessage().BlockID(conversationMessage)
	require.NoError(t, err)

	threadMap, err := c.Thread().Pack("2024", 5, 12)
	require.NoError(t, err)
	threadMessage, err := c.ThreadMessage().Pack(threadMap, 3, 17, 204)
	require.NoError(t, err)
	_, err = c.ThreadMessage().BlockID(threadMessage)
	require.NoError(t, err)
}

package appkit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedTenant int64

func (t fixedTenant) CompanyID() int64 { return int64(t) }

func newFacadeCodec(t *testing.T) *Codec {
	t.Helper()

	provider, err := NewCipherProvider(bytes.Repeat([]byte{0x42}, 32), []byte("0123456789abcdef"))
	require.NoError(t, err)

	salts := NewSaltProvider(map[string]map[int]string{
		"call": {1: "call-salt-v1"},
	})
	return NewCodec(provider, salts, fixedTenant(125), NewCache())
}

func TestFacadeRoundTrip(t *testing.T) {
	c := newFacadeCodec(t)

	m, err := c.Call().Pack("2024_5", 12, 77)
	require.NoError(t, err)

	tag, err := EntityTag(m)
	require.NoError(t, err)
	assert.Equal(t, "call", tag)

	key, err := c.Call().Encrypt(m)
	require.NoError(t, err)

	back, err := c.Call().Decrypt(key)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestFacadeErrorClasses(t *testing.T) {
	c := newFacadeCodec(t)

	_, err := c.Call().Decrypt("not-base64!!!")
	require.ErrorIs(t, err, ErrInvalidKey)
}

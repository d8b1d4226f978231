package crypt

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey    = bytes.Repeat([]byte{0x42}, KeySize)
	testVector = []byte("0123456789abcdef")
)

func TestEncryptDecryptCBCRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{"short", "hi"},
		{"exactly one block", "0123456789abcdef"},
		{"multi block", `{"conversation_map":"{\"_\":1,\"?\":\"conversation\"}"}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := EncryptCBC([]byte(tt.plaintext), testKey, testVector)
			require.NoError(t, err)

			_, err = base64.StdEncoding.DecodeString(encrypted)
			require.NoError(t, err)

			decrypted, err := DecryptCBC(encrypted, testKey, testVector)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, string(decrypted))
		})
	}
}

func TestEncryptCBCDeterministic(t *testing.T) {
	first, err := EncryptCBC([]byte("payload"), testKey, testVector)
	require.NoError(t, err)
	second, err := EncryptCBC([]byte("payload"), testKey, testVector)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncryptCBCTruncatesLongVector(t *testing.T) {
	long := append([]byte{}, testVector...)
	long = append(long, []byte("extra-tail-ignored")...)

	withLong, err := EncryptCBC([]byte("payload"), testKey, long)
	require.NoError(t, err)
	withExact, err := EncryptCBC([]byte("payload"), testKey, testVector)
	require.NoError(t, err)
	assert.Equal(t, withExact, withLong)
}

func TestEncryptCBCRejectsBadMaterial(t *testing.T) {
	_, err := EncryptCBC([]byte("payload"), []byte("short"), testVector)
	require.Error(t, err)

	_, err = EncryptCBC([]byte("payload"), testKey, []byte("short"))
	require.ErrorIs(t, err, ErrBadVectorSize)
}

func TestDecryptCBCRejectsMalformedInput(t *testing.T) {
	t.Run("not base64", func(t *testing.T) {
		_, err := DecryptCBC("###", testKey, testVector)
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := DecryptCBC("", testKey, testVector)
		require.ErrorIs(t, err, ErrNotBlockAligned)
	})

	t.Run("unaligned", func(t *testing.T) {
		unaligned := base64.StdEncoding.EncodeToString([]byte("12345"))
		_, err := DecryptCBC(unaligned, testKey, testVector)
		require.ErrorIs(t, err, ErrNotBlockAligned)
	})

	t.Run("short vector", func(t *testing.T) {
		encrypted, err := EncryptCBC([]byte("payload"), testKey, testVector)
		require.NoError(t, err)
		_, err = DecryptCBC(encrypted, testKey, []byte("short"))
		require.ErrorIs(t, err, ErrBadVectorSize)
	})
}

func TestPKCS7Pad(t *testing.T) {
	padded := pkcs7Pad([]byte("abc"), 16)
	require.Len(t, padded, 16)
	assert.Equal(t, byte(13), padded[15])

	// a full block of padding is appended to aligned input
	padded = pkcs7Pad(bytes.Repeat([]byte{0x01}, 16), 16)
	require.Len(t, padded, 32)
	assert.Equal(t, byte(16), padded[31])
}

func TestPKCS7Unpad(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []byte
		wantErr bool
	}{
		{"valid", append([]byte("abc"), bytes.Repeat([]byte{13}, 13)...), []byte("abc"), false},
		{"full pad block", bytes.Repeat([]byte{16}, 16), []byte{}, false},
		{"zero pad length", append(bytes.Repeat([]byte{0x01}, 15), 0), nil, true},
		{"pad length exceeds block", append(bytes.Repeat([]byte{0x01}, 15), 17), nil, true},
		{"inconsistent pad bytes", append([]byte("abcdefghijklmn"), 1, 2), nil, true},
		{"unaligned", []byte("abc"), nil, true},
		{"empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pkcs7Unpad(tt.data, 16)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadPadding)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

package activitytoken

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workroomhq/appkit/internal/crypt"
	"github.com/workroomhq/appkit/internal/shared"
)

// --- helpers ---

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	return NewIssuer([]byte("activity-token-test-secret"))
}

func testCryptProvider(t *testing.T) *crypt.Provider {
	t.Helper()
	p, err := crypt.NewProvider(bytes.Repeat([]byte{0x42}, 32), []byte("0123456789abcdef"))
	require.NoError(t, err)
	return p
}

// --- tests ---

func TestGenerateAndVerify(t *testing.T) {
	issuer := testIssuer(t)

	token, tokenUniq, err := issuer.Generate(101, 7)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, tokenUniq)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(101), claims.UserID)
	assert.Equal(t, int64(7), claims.CompanyID)
	assert.Equal(t, tokenUniq, claims.TokenUniq)
}

func TestTokenUniqIsUnique(t *testing.T) {
	issuer := testIssuer(t)

	_, first, err := issuer.Generate(101, 7)
	require.NoError(t, err)
	_, second, err := issuer.Generate(101, 7)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := testIssuer(t)
	issuedAt := time.Unix(1700000000, 0)

	issuer.now = func() time.Time { return issuedAt }
	token, _, err := issuer.Generate(101, 7)
	require.NoError(t, err)

	issuer.now = func() time.Time { return issuedAt.Add(TTL + time.Second) }
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, shared.ErrTokenExpired)
}

func TestVerifyAcceptsTokenWithinTTL(t *testing.T) {
	issuer := testIssuer(t)
	issuedAt := time.Unix(1700000000, 0)

	issuer.now = func() time.Time { return issuedAt }
	token, _, err := issuer.Generate(101, 7)
	require.NoError(t, err)

	issuer.now = func() time.Time { return issuedAt.Add(TTL - time.Second) }
	_, err = issuer.Verify(token)
	require.NoError(t, err)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, _, err := NewIssuer([]byte("one secret")).Generate(101, 7)
	require.NoError(t, err)

	_, err = NewIssuer([]byte("another secret")).Verify(token)
	require.ErrorIs(t, err, shared.ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := testIssuer(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, shared.ErrTokenInvalid, "token %q", token)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	issuer := testIssuer(t)
	provider := testCryptProvider(t)

	token, _, err := issuer.Generate(101, 7)
	require.NoError(t, err)

	encrypted, err := Encrypt(token, provider)
	require.NoError(t, err)
	require.NotEqual(t, token, encrypted)

	decrypted, err := Decrypt(encrypted, provider)
	require.NoError(t, err)
	assert.Equal(t, token, decrypted)
}

func TestDecryptRejectsMalformedValues(t *testing.T) {
	provider := testCryptProvider(t)

	for _, encrypted := range []string{"", "not base64 !!!", "aGVsbG8="} {
		_, err := Decrypt(encrypted, provider)
		assert.ErrorIs(t, err, shared.ErrTokenInvalid, "value %q", encrypted)
	}
}

func TestDecryptRejectsEmptyEnvelope(t *testing.T) {
	provider := testCryptProvider(t)

	encrypted, err := crypt.EncryptCBC([]byte(`{"activity_token": ""}`), provider.Key(), provider.Vector())
	require.NoError(t, err)

	_, err = Decrypt(encrypted, provider)
	require.ErrorIs(t, err, shared.ErrTokenInvalid)
}

func TestCookieKey(t *testing.T) {
	assert.Equal(t, "company_hibernation_delay_key_125", CookieKey(125))
}

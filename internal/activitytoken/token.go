// Package activitytoken issues and verifies the short-lived tokens a
// hibernated company hands to returning members. Presenting a valid
// token delays the next hibernation cycle for that member.
package activitytoken

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/workroomhq/appkit/internal/crypt"
	"github.com/workroomhq/appkit/internal/shared"
)

// TTL bounds how long a token stays presentable. Clients are expected
// to redeem it right after receiving it.
const TTL = 5 * time.Minute

// CookieKeyPrefix plus the company id names the cookie the encrypted
// token travels in.
const CookieKeyPrefix = "company_hibernation_delay_key_"

// CookieKey returns the cookie name for one company.
func CookieKey(companyID int64) string {
	return fmt.Sprintf("%s%d", CookieKeyPrefix, companyID)
}

// Claims carries the standard claim set plus the member identity the
// token vouches for.
type Claims struct {
	jwt.RegisteredClaims
	TokenUniq string `json:"token_uniq"`
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"company_id"`
}

// Issuer signs and verifies activity tokens for one company.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{secret: secret, now: time.Now}
}

// Generate mints a token for the member and returns it alongside its
// uniq, which the caller persists to recognize the token later.
func (i *Issuer) Generate(userID, companyID int64) (token string, tokenUniq string, err error) {
	tokenUniq = uuid.NewString()
	issuedAt := i.now()

	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TTL)),
		},
		TokenUniq: tokenUniq,
		UserID:    userID,
		CompanyID: companyID,
	})

	token, err = signed.SignedString(i.secret)
	if err != nil {
		return "", "", err
	}
	return token, tokenUniq, nil
}

// Verify checks the signature and expiry and returns the claims.
// An expired token reports shared.ErrTokenExpired, every other defect
// shared.ErrTokenInvalid.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrTokenExpired
		}
		return nil, shared.ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, shared.ErrTokenInvalid
	}
	return claims, nil
}

// tokenEnvelope is the cleartext shape the cookie value decrypts to.
type tokenEnvelope struct {
	ActivityToken string `json:"activity_token"`
}

// Encrypt wraps the token for transport in a client cookie.
func Encrypt(token string, provider *crypt.Provider) (string, error) {
	raw, err := json.Marshal(tokenEnvelope{ActivityToken: token})
	if err != nil {
		return "", err
	}
	return crypt.EncryptCBC(raw, provider.Key(), provider.Vector())
}

// Decrypt recovers the token from a cookie value. Any defect reports
// shared.ErrTokenInvalid so the cookie flow treats it as absent.
func Decrypt(encrypted string, provider *crypt.Provider) (string, error) {
	raw, err := crypt.DecryptCBC(encrypted, provider.Key(), provider.Vector())
	if err != nil {
		return "", shared.ErrTokenInvalid
	}

	var envelope tokenEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", shared.ErrTokenInvalid
	}
	if envelope.ActivityToken == "" {
		return "", shared.ErrTokenInvalid
	}
	return envelope.ActivityToken, nil
}

// Package hibernation drives the activity-token flow that keeps a
// company out of hibernation while its members keep showing up.
package hibernation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/workroomhq/appkit/internal/activitytoken"
	"github.com/workroomhq/appkit/internal/antispam"
	"github.com/workroomhq/appkit/internal/company"
	"github.com/workroomhq/appkit/internal/crypt"
	"github.com/workroomhq/appkit/internal/gateway/companydata"
	"github.com/workroomhq/appkit/internal/logging"
	"github.com/workroomhq/appkit/internal/shared"
)

// Service issues hibernation-delay tokens and redeems the ones members
// bring back in their cookies.
type Service struct {
	tenant   company.Tenant
	issuer   *activitytoken.Issuer
	cipher   *crypt.Provider
	limiter  *antispam.Limiter
	tokens   companydata.HibernationTokenRepository
	activity companydata.MemberActivityRepository
	logger   logging.Logger

	// delay is how far one redeemed token pushes hibernation out.
	delay time.Duration
	now   func() time.Time
}

func NewService(
	tenant company.Tenant,
	issuer *activitytoken.Issuer,
	cipher *crypt.Provider,
	limiter *antispam.Limiter,
	tokens companydata.HibernationTokenRepository,
	activity companydata.MemberActivityRepository,
	delay time.Duration,
	logger logging.Logger,
) *Service {
	return &Service{
		tenant:   tenant,
		issuer:   issuer,
		cipher:   cipher,
		limiter:  limiter,
		tokens:   tokens,
		activity: activity,
		logger:   logger,
		delay:    delay,
		now:      time.Now,
	}
}

// IssueDelayToken mints a token for the member, persists its uniq and
// returns the encrypted cookie value. Token generation is rate limited
// per member.
func (s *Service) IssueDelayToken(ctx context.Context, userID int64) (string, error) {
	if err := s.limiter.Check(userID, antispam.GenerateActivityToken); err != nil {
		return "", err
	}

	token, tokenUniq, err := s.issuer.Generate(userID, s.tenant.CompanyID())
	if err != nil {
		return "", fmt.Errorf("token generation error: %w", err)
	}

	delayedTill := s.now().Add(s.delay).Unix()
	if err := s.tokens.InsertOrUpdate(ctx, tokenUniq, userID, delayedTill); err != nil {
		return "", err
	}

	cookieValue, err := activitytoken.Encrypt(token, s.cipher)
	if err != nil {
		return "", fmt.Errorf("token encryption error: %w", err)
	}

	s.logger.Info(ctx, "hibernation delay token issued",
		"company_id", s.tenant.CompanyID(), "user_id", userID)
	return cookieValue, nil
}

// RedeemDelayToken validates a cookie value and returns the deadline
// the token pushes hibernation out to, recording the member as active
// for the day. Any defect in the token reports shared.ErrTokenInvalid
// or shared.ErrTokenExpired; callers treat both as "no token".
func (s *Service) RedeemDelayToken(ctx context.Context, cookieValue string) (int64, error) {
	token, err := activitytoken.Decrypt(cookieValue, s.cipher)
	if err != nil {
		return 0, err
	}

	claims, err := s.issuer.Verify(token)
	if err != nil {
		return 0, err
	}

	// a token minted under another company never delays this one
	if claims.CompanyID != s.tenant.CompanyID() {
		return 0, shared.ErrTokenInvalid
	}

	row, err := s.tokens.GetByUniq(ctx, claims.TokenUniq)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, shared.ErrTokenInvalid
		}
		return 0, err
	}
	if row.UserID != claims.UserID {
		return 0, shared.ErrTokenInvalid
	}

	if err := s.RecordActivity(ctx, claims.UserID); err != nil {
		return 0, err
	}
	return row.HibernationDelayedTill, nil
}

// RecordActivity marks the member active for the current day.
func (s *Service) RecordActivity(ctx context.Context, userID int64) error {
	return s.activity.Insert(ctx, userID, dayStart(s.now()))
}

// RevokeDelayTokens drops every token a member holds, for kicks and
// blocks.
func (s *Service) RevokeDelayTokens(ctx context.Context, userID int64) error {
	return s.tokens.DeleteByUserID(ctx, userID)
}

func dayStart(t time.Time) int64 {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix()
}

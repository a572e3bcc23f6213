package challenge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shoplane/authcore/pkg/logger"
	"github.com/shoplane/authcore/pkg/principal"
	"github.com/shoplane/authcore/pkg/ratelimit"
	"github.com/shoplane/authcore/pkg/recovery"
	"github.com/shoplane/authcore/pkg/secretcodec"
	"github.com/shoplane/authcore/pkg/session"
	"github.com/shoplane/authcore/pkg/totp"
)

const (
	// Session data keys holding the pending challenge marker.
	sessionKeyLoginID       = "login.id"
	sessionKeyLoginRemember = "login.remember"

	throttleKeySuffix = "|2fa"

	// DefaultRememberTTL is how long a remembered session lives after a
	// completed challenge.
	DefaultRememberTTL = 30 * 24 * time.Hour
)

// LockoutHandler is invoked when a submission is rejected because the
// principal has exhausted their attempts.
type LockoutHandler func(ctx context.Context, principalID uuid.UUID, retryAfter time.Duration)

// Option configures the challenge service.
type Option func(*Service)

// WithLogger sets the logger for lockout and finalization events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRememberTTL overrides the remembered-session lifetime.
func WithRememberTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.rememberTTL = ttl
		}
	}
}

// WithLockoutHandler registers a hook called on every lockout rejection.
func WithLockoutHandler(h LockoutHandler) Option {
	return func(s *Service) {
		s.onLockout = h
	}
}

// Service drives the second-factor challenge between a successful password
// check and a fully authenticated session.
type Service struct {
	principals  principal.Store
	sessions    session.Store
	codec       *secretcodec.Codec
	limiter     *ratelimit.Limiter
	log         *slog.Logger
	rememberTTL time.Duration
	onLockout   LockoutHandler

	locks sync.Map // principal ID -> *sync.Mutex
}

// NewService wires the challenge service over its collaborators.
func NewService(
	principals principal.Store,
	sessions session.Store,
	codec *secretcodec.Codec,
	limiter *ratelimit.Limiter,
	opts ...Option,
) (*Service, error) {
	if principals == nil {
		return nil, ErrPrincipalStoreRequired
	}
	if sessions == nil {
		return nil, ErrSessionStoreRequired
	}
	if codec == nil {
		return nil, ErrCodecRequired
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}

	s := &Service{
		principals:  principals,
		sessions:    sessions,
		codec:       codec,
		limiter:     limiter,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		rememberTTL: DefaultRememberTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start parks a pending challenge in the session. Only principals with a
// confirmed second factor can be challenged.
func (s *Service) Start(ctx context.Context, sessionToken string, principalID uuid.UUID, remember bool) error {
	p, err := s.principals.Find(ctx, principalID)
	if err != nil {
		return err
	}
	if !p.TwoFactorEnabled() {
		return ErrTwoFactorNotEnabled
	}

	sess, err := s.session(ctx, sessionToken)
	if err != nil {
		return err
	}

	sess.Set(sessionKeyLoginID, principalID.String())
	sess.Set(sessionKeyLoginRemember, remember)
	sess.Touch()
	return s.sessions.Update(ctx, sess)
}

// SubmitTOTP verifies a time-based code against the pending challenge. On
// success the session is finalized and the authenticated principal returned.
func (s *Service) SubmitTOTP(ctx context.Context, sessionToken, code string) (*principal.Principal, error) {
	if !isTOTPFormat(code) {
		return nil, ErrInvalidCodeFormat
	}

	sess, principalID, remember, err := s.pending(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	mu := s.lockFor(principalID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.ensureNotLimited(ctx, principalID); err != nil {
		return nil, err
	}

	p, err := s.principals.Find(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if !p.TwoFactorEnabled() {
		return nil, ErrTwoFactorNotEnabled
	}

	secret, err := s.codec.Decrypt(p.TotpSecretEncrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt totp secret: %w", err)
	}

	if !totp.Verify(secret, code) {
		if err := s.limiter.Hit(ctx, throttleKey(principalID)); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCode
	}

	if err := s.finalize(ctx, sess, p, remember); err != nil {
		return nil, err
	}
	return p, nil
}

// SubmitRecoveryCode verifies a recovery code against the pending challenge.
// A matched code is consumed and the reduced set persisted before the session
// is finalized, so the code cannot be replayed even if finalization fails.
func (s *Service) SubmitRecoveryCode(ctx context.Context, sessionToken, code string) (*principal.Principal, error) {
	if code == "" {
		return nil, ErrInvalidCodeFormat
	}

	sess, principalID, remember, err := s.pending(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	mu := s.lockFor(principalID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.ensureNotLimited(ctx, principalID); err != nil {
		return nil, err
	}

	p, err := s.principals.Find(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if !p.TwoFactorEnabled() {
		return nil, ErrTwoFactorNotEnabled
	}

	set, err := s.decodeRecoverySet(p.RecoveryCodesEncrypted)
	if err != nil {
		return nil, err
	}

	remaining, ok := set.Consume(code)
	if !ok {
		if err := s.limiter.Hit(ctx, throttleKey(principalID)); err != nil {
			return nil, err
		}
		return nil, ErrInvalidRecoveryCode
	}

	encoded, err := recovery.EncodeSet(remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recovery codes: %w", err)
	}
	encrypted, err := s.codec.Encrypt(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt recovery codes: %w", err)
	}
	p.RecoveryCodesEncrypted = encrypted
	if err := s.principals.Save(ctx, p); err != nil {
		return nil, err
	}

	if err := s.finalize(ctx, sess, p, remember); err != nil {
		return nil, err
	}
	return p, nil
}

// Abandon drops the pending challenge marker, if any.
func (s *Service) Abandon(ctx context.Context, sessionToken string) error {
	sess, err := s.session(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return nil
		}
		return err
	}

	sess.Delete(sessionKeyLoginID)
	sess.Delete(sessionKeyLoginRemember)
	return s.sessions.Update(ctx, sess)
}

func (s *Service) session(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionExpired) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return sess, nil
}

// pending resolves the session and its challenge marker. A session without a
// marker is treated the same as a missing session.
func (s *Service) pending(ctx context.Context, token string) (*session.Session, uuid.UUID, bool, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return nil, uuid.Nil, false, err
	}

	rawID, ok := sess.GetString(sessionKeyLoginID)
	if !ok {
		return nil, uuid.Nil, false, ErrSessionExpired
	}
	principalID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, uuid.Nil, false, ErrSessionExpired
	}

	remember, _ := sess.GetBool(sessionKeyLoginRemember)
	return sess, principalID, remember, nil
}

func (s *Service) ensureNotLimited(ctx context.Context, principalID uuid.UUID) error {
	err := s.limiter.EnsureNotLimited(ctx, throttleKey(principalID))
	if err == nil {
		return nil
	}

	var lockout *ratelimit.TooManyAttemptsError
	if errors.As(err, &lockout) {
		s.log.WarnContext(ctx, "two-factor challenge locked out",
			logger.Component("challenge"),
			logger.Event("lockout"),
			logger.UserID(principalID),
			logger.Duration(lockout.RetryAfter),
		)
		if s.onLockout != nil {
			s.onLockout(ctx, principalID, lockout.RetryAfter)
		}
	}
	return err
}

// finalize completes the login: the limiter is reset, the session becomes
// authenticated, and the challenge marker is forgotten.
func (s *Service) finalize(ctx context.Context, sess *session.Session, p *principal.Principal, remember bool) error {
	if err := s.limiter.Clear(ctx, throttleKey(p.ID)); err != nil {
		return err
	}

	sess.UserID = &p.ID
	if remember {
		sess.ExpiresAt = time.Now().Add(s.rememberTTL)
	}
	sess.Delete(sessionKeyLoginID)
	sess.Delete(sessionKeyLoginRemember)
	sess.Touch()

	if err := s.sessions.Update(ctx, sess); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "two-factor challenge completed",
		logger.Component("challenge"),
		logger.Event("authenticated"),
		logger.UserID(p.ID),
	)
	return nil
}

func (s *Service) decodeRecoverySet(encrypted string) (recovery.Set, error) {
	if encrypted == "" {
		return recovery.Set{}, nil
	}
	decoded, err := s.codec.Decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt recovery codes: %w", err)
	}
	set, err := recovery.DecodeSet(decoded)
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) lockFor(principalID uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(principalID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func throttleKey(principalID uuid.UUID) string {
	return principalID.String() + throttleKeySuffix
}

// isTOTPFormat reports whether code looks like a 6-digit authenticator code.
func isTOTPFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

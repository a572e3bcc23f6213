package mailotp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shoplane/authcore/pkg/logger"
	"github.com/shoplane/authcore/pkg/principal"
)

const (
	// DefaultCodeTTL is how long an issued code stays valid.
	DefaultCodeTTL = 10 * time.Minute

	// DefaultResendCooldown is the minimum gap between sends for one key.
	DefaultResendCooldown = time.Minute

	// DefaultMaxAttempts caps verification attempts per issued code.
	DefaultMaxAttempts = 5

	codeDigits = 6
	codeSpace  = 1000000 // 000000 through 999999, uniformly
)

// NotificationSender delivers an issued code to its mailbox. Implementations
// must not retain the plaintext code.
type NotificationSender interface {
	Send(ctx context.Context, email, name, code string, purpose Purpose) error
}

// Option configures the mail OTP service.
type Option func(*Service)

// WithLogger sets the logger for issuance and delivery events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCodeTTL overrides the code validity window.
func WithCodeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.codeTTL = ttl
		}
	}
}

// WithResendCooldown overrides the minimum gap between sends.
func WithResendCooldown(cooldown time.Duration) Option {
	return func(s *Service) {
		if cooldown > 0 {
			s.resendCooldown = cooldown
		}
	}
}

// WithMaxAttempts overrides the verification attempt cap.
func WithMaxAttempts(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxAttempts = max
		}
	}
}

// Service drives mailbox verification for registrations and email changes.
type Service struct {
	store      Store
	principals principal.Store
	sender     NotificationSender
	log        *slog.Logger

	codeTTL        time.Duration
	resendCooldown time.Duration
	maxAttempts    int

	locks sync.Map // record key -> *sync.Mutex
}

// NewService wires the mail OTP service over its collaborators.
func NewService(store Store, principals principal.Store, sender NotificationSender, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if principals == nil {
		return nil, ErrPrincipalStoreRequired
	}
	if sender == nil {
		return nil, ErrSenderRequired
	}

	s := &Service{
		store:          store,
		principals:     principals,
		sender:         sender,
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		codeTTL:        DefaultCodeTTL,
		resendCooldown: DefaultResendCooldown,
		maxAttempts:    DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start validates the pending operation, issues a fresh code, and dispatches
// it to the target mailbox. Any previous pending operation under the same key
// is replaced.
func (s *Service) Start(ctx context.Context, key string, payload Payload) error {
	if key == "" {
		return ErrInvalidPayload
	}
	if err := payload.validate(); err != nil {
		return err
	}
	if err := s.validateTarget(ctx, payload); err != nil {
		return err
	}

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	code, hash, err := s.issueCode()
	if err != nil {
		return err
	}

	now := time.Now()
	record := &Record{
		Key:        key,
		Payload:    payload,
		CodeHash:   hash,
		Attempts:   0,
		ExpiresAt:  now.Add(s.codeTTL),
		LastSentAt: now,
	}
	if err := s.store.Put(ctx, record); err != nil {
		return err
	}

	s.dispatch(ctx, record, code)
	return nil
}

// Resend rotates the pending code and dispatches it again. Within the
// cooldown it returns a *ResendTooSoonError carrying the remaining wait.
func (s *Service) Resend(ctx context.Context, key string) error {
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	record, err := s.record(ctx, key)
	if err != nil {
		return err
	}

	if wait := s.resendCooldown - time.Since(record.LastSentAt); wait > 0 {
		return &ResendTooSoonError{Wait: wait}
	}

	code, hash, err := s.issueCode()
	if err != nil {
		return err
	}

	now := time.Now()
	record.CodeHash = hash
	record.Attempts = 0
	record.ExpiresAt = now.Add(s.codeTTL)
	record.LastSentAt = now
	if err := s.store.Put(ctx, record); err != nil {
		return err
	}

	s.dispatch(ctx, record, code)
	return nil
}

// Verify checks the submitted code and, on a match, promotes the pending
// operation: registrations create a verified principal, email changes update
// the stored address. The record is discarded either way on success.
func (s *Service) Verify(ctx context.Context, key, code string) (*principal.Principal, error) {
	if !isCodeFormat(code) {
		return nil, ErrInvalidCodeFormat
	}

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	record, err := s.record(ctx, key)
	if err != nil {
		return nil, err
	}
	if record.IsExpired() {
		return nil, ErrCodeExpired
	}
	if record.Attempts >= s.maxAttempts {
		return nil, ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword(record.CodeHash, []byte(code)) != nil {
		record.Attempts++
		if err := s.store.Put(ctx, record); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCode
	}

	p, err := s.promote(ctx, record.Payload)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "mailbox verified",
		logger.Component("mailotp"),
		logger.Event(string(record.Payload.Purpose)),
		logger.UserID(p.ID),
	)
	return p, nil
}

// Abandon discards the pending operation, if any.
func (s *Service) Abandon(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

func (s *Service) record(ctx context.Context, key string) (*Record, error) {
	record, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return record, nil
}

// validateTarget checks the operation is still possible before a code is
// spent on it.
func (s *Service) validateTarget(ctx context.Context, payload Payload) error {
	switch payload.Purpose {
	case PurposeRegistration:
		_, err := s.principals.FindByEmail(ctx, payload.Email)
		if err == nil {
			return principal.ErrEmailAlreadyExists
		}
		if !errors.Is(err, principal.ErrNotFound) {
			return err
		}
	case PurposeEmailChange:
		if _, err := s.principals.Find(ctx, payload.PrincipalID); err != nil {
			return err
		}
		_, err := s.principals.FindByEmail(ctx, payload.Email)
		if err == nil {
			return principal.ErrEmailAlreadyExists
		}
		if !errors.Is(err, principal.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *Service) promote(ctx context.Context, payload Payload) (*principal.Principal, error) {
	switch payload.Purpose {
	case PurposeRegistration:
		p := &principal.Principal{
			ID:           uuid.New(),
			Email:        payload.Email,
			Name:         payload.Name,
			PasswordHash: payload.PasswordHash,
			IsVerified:   true,
		}
		if err := s.principals.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	case PurposeEmailChange:
		p, err := s.principals.Find(ctx, payload.PrincipalID)
		if err != nil {
			return nil, err
		}
		p.Email = payload.Email
		if err := s.principals.Save(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, ErrInvalidPayload
	}
}

// issueCode generates a uniform 6-digit code and its bcrypt hash. Leading
// zeros are preserved, so every code in 000000..999999 is equally likely.
func (s *Service) issueCode() (string, []byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate code: %w", err)
	}
	code := fmt.Sprintf("%0*d", codeDigits, n.Int64())

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash code: %w", err)
	}
	return code, hash, nil
}

// dispatch delivers the code. Delivery failures are logged but never fail
// the operation; the user can request a resend.
func (s *Service) dispatch(ctx context.Context, record *Record, code string) {
	if err := s.sender.Send(ctx, record.Payload.Email, record.Payload.Name, code, record.Payload.Purpose); err != nil {
		s.log.ErrorContext(ctx, "failed to send verification code",
			logger.Component("mailotp"),
			logger.Event(string(record.Payload.Purpose)),
			logger.Error(err),
		)
	}
}

func (s *Service) lockFor(key string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func isCodeFormat(code string) bool {
	if len(code) != codeDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

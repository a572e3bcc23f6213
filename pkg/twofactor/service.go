package twofactor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shoplane/authcore/pkg/logger"
	"github.com/shoplane/authcore/pkg/principal"
	"github.com/shoplane/authcore/pkg/qrcode"
	"github.com/shoplane/authcore/pkg/recovery"
	"github.com/shoplane/authcore/pkg/secretcodec"
	"github.com/shoplane/authcore/pkg/totp"
)

// DefaultQRCodeSize is the pixel size of the generated provisioning QR code.
const DefaultQRCodeSize = 256

// Enrollment is the material handed to the user when a second factor is
// issued. It is never persisted in this form.
type Enrollment struct {
	Secret        string   // Base32 secret for manual entry
	URI           string   // otpauth:// provisioning URI
	QRCode        []byte   // PNG rendering of the URI
	RecoveryCodes []string // One-time fallback codes
}

// Option configures the enrollment service.
type Option func(*Service)

// WithLogger sets the logger for enrollment lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithIssuer overrides the issuer shown in authenticator apps.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithQRCodeSize overrides the provisioning QR code size in pixels.
func WithQRCodeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.qrSize = size
		}
	}
}

// Service manages TOTP enrollment for principals.
type Service struct {
	principals principal.Store
	codec      *secretcodec.Codec
	log        *slog.Logger
	issuer     string
	qrSize     int
}

// NewService wires the enrollment service over its collaborators.
func NewService(principals principal.Store, codec *secretcodec.Codec, issuer string, opts ...Option) (*Service, error) {
	if principals == nil {
		return nil, ErrPrincipalStoreRequired
	}
	if codec == nil {
		return nil, ErrCodecRequired
	}

	s := &Service{
		principals: principals,
		codec:      codec,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		issuer:     issuer,
		qrSize:     DefaultQRCodeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Enable issues a fresh secret and recovery-code set for the principal and
// persists both encrypted. The factor stays unconfirmed until Confirm proves
// the user captured the secret. Re-enabling while unconfirmed rotates the
// material; a confirmed factor must be disabled first.
func (s *Service) Enable(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	p, err := s.principals.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TwoFactorEnabled() {
		return nil, ErrAlreadyEnabled
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, err
	}
	codes, err := recovery.GenerateSet(recovery.DefaultCount)
	if err != nil {
		return nil, err
	}

	uri, err := totp.GetTOTPURI(totp.TOTPParams{
		Secret:      secret,
		AccountName: p.Email,
		Issuer:      s.issuer,
	})
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Generate(uri, s.qrSize)
	if err != nil {
		return nil, err
	}

	encryptedSecret, err := s.codec.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt totp secret: %w", err)
	}
	encryptedCodes, err := s.encryptSet(codes)
	if err != nil {
		return nil, err
	}

	p.TotpSecretEncrypted = encryptedSecret
	p.RecoveryCodesEncrypted = encryptedCodes
	p.TotpConfirmedAt = nil
	if err := s.principals.Save(ctx, p); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "two-factor secret issued",
		logger.Component("twofactor"),
		logger.Event("enabled"),
		logger.UserID(id),
	)

	return &Enrollment{
		Secret:        secret,
		URI:           uri,
		QRCode:        png,
		RecoveryCodes: codes,
	}, nil
}

// Confirm proves the user captured the secret by verifying a live code.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, code string) error {
	if !isTOTPFormat(code) {
		return ErrInvalidCodeFormat
	}

	p, err := s.principals.Find(ctx, id)
	if err != nil {
		return err
	}
	if p.TotpSecretEncrypted == "" {
		return ErrNotEnabled
	}
	if p.TwoFactorEnabled() {
		return ErrAlreadyEnabled
	}

	secret, err := s.codec.Decrypt(p.TotpSecretEncrypted)
	if err != nil {
		return fmt.Errorf("failed to decrypt totp secret: %w", err)
	}
	if !totp.Verify(secret, code) {
		return ErrInvalidCode
	}

	now := time.Now()
	p.TotpConfirmedAt = &now
	if err := s.principals.Save(ctx, p); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "two-factor confirmed",
		logger.Component("twofactor"),
		logger.Event("confirmed"),
		logger.UserID(id),
	)
	return nil
}

// Disable removes the second factor entirely: secret, recovery codes, and
// the confirmation timestamp.
func (s *Service) Disable(ctx context.Context, id uuid.UUID) error {
	p, err := s.principals.Find(ctx, id)
	if err != nil {
		return err
	}
	if p.TotpSecretEncrypted == "" {
		return ErrNotEnabled
	}

	p.TotpSecretEncrypted = ""
	p.RecoveryCodesEncrypted = ""
	p.TotpConfirmedAt = nil
	if err := s.principals.Save(ctx, p); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "two-factor disabled",
		logger.Component("twofactor"),
		logger.Event("disabled"),
		logger.UserID(id),
	)
	return nil
}

// RegenerateRecoveryCodes replaces the entire recovery-code set. Requires an
// issued secret; previously issued codes stop working immediately.
func (s *Service) RegenerateRecoveryCodes(ctx context.Context, id uuid.UUID) ([]string, error) {
	p, err := s.principals.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TotpSecretEncrypted == "" {
		return nil, ErrNotEnabled
	}

	codes, err := recovery.GenerateSet(recovery.DefaultCount)
	if err != nil {
		return nil, err
	}
	encrypted, err := s.encryptSet(codes)
	if err != nil {
		return nil, err
	}

	p.RecoveryCodesEncrypted = encrypted
	if err := s.principals.Save(ctx, p); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "recovery codes regenerated",
		logger.Component("twofactor"),
		logger.Event("recovery_codes_regenerated"),
		logger.UserID(id),
	)
	return codes, nil
}

// RecoveryCodes decrypts the remaining recovery codes for display.
func (s *Service) RecoveryCodes(ctx context.Context, id uuid.UUID) ([]string, error) {
	p, err := s.principals.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TotpSecretEncrypted == "" || p.RecoveryCodesEncrypted == "" {
		return nil, ErrNotEnabled
	}

	decoded, err := s.codec.Decrypt(p.RecoveryCodesEncrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt recovery codes: %w", err)
	}
	set, err := recovery.DecodeSet(decoded)
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) encryptSet(codes recovery.Set) (string, error) {
	encoded, err := recovery.EncodeSet(codes)
	if err != nil {
		return "", fmt.Errorf("failed to encode recovery codes: %w", err)
	}
	encrypted, err := s.codec.Encrypt(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt recovery codes: %w", err)
	}
	return encrypted, nil
}

func isTOTPFormat(code string) bool {
	if len(code) != totp.DefaultDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package secretcodec

import "errors"

var (
	ErrFailedToEncrypt     = errors.New("failed to encrypt secret")
	ErrFailedToDecrypt     = errors.New("failed to decrypt secret")
	ErrCipherTooShort      = errors.New("cipher text too short")
	ErrFailedToGenerateKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadKey     = errors.New("failed to load encryption key")
	ErrInvalidKeyLength    = errors.New("invalid encryption key length")
	ErrKeyNotSet           = errors.New("encryption key not set")
)

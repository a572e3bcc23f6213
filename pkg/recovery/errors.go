package recovery

import "errors"

var (
	ErrInvalidCodeCount     = errors.New("invalid recovery code count, must be greater than 0")
	ErrFailedToGenerateCode = errors.New("failed to generate recovery code")
	ErrFailedToDecodeSet    = errors.New("failed to decode recovery code set")
)

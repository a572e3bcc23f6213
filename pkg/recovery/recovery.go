package recovery

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"slices"
	"strings"
)

const (
	// DefaultCount is the number of codes issued per set.
	DefaultCount = 8

	segmentLength = 10
	alphanumeric  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Collisions within a set are astronomically unlikely; the cap only
	// guards against a broken random source looping forever.
	maxUniquenessRetries = 100
)

// Set is an ordered sequence of recovery codes. Order is stable for display;
// matching ignores position.
type Set []string

// GenerateSet creates a new set of unique recovery codes from a
// cryptographically secure random source.
func GenerateSet(count int) (Set, error) {
	if count < 1 {
		return nil, ErrInvalidCodeCount
	}

	set := make(Set, 0, count)
	seen := make(map[string]struct{}, count)
	for retries := 0; len(set) < count; {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			retries++
			if retries > maxUniquenessRetries {
				return nil, ErrFailedToGenerateCode
			}
			continue
		}
		seen[code] = struct{}{}
		set = append(set, code)
	}
	return set, nil
}

// Consume attempts to use a recovery code. On a case-sensitive exact match it
// returns a new set with exactly that code removed and true; otherwise it
// returns the receiver unchanged and false. The receiver is never mutated —
// callers persist the returned set.
func (s Set) Consume(code string) (Set, bool) {
	idx := slices.Index(s, code)
	if idx < 0 {
		return s, false
	}

	remaining := make(Set, 0, len(s)-1)
	remaining = append(remaining, s[:idx]...)
	remaining = append(remaining, s[idx+1:]...)
	return remaining, true
}

// Contains reports whether the set still holds the given code.
func (s Set) Contains(code string) bool {
	return slices.Contains(s, code)
}

// EncodeSet serializes a set to its JSON storage form. The result is meant
// to be encrypted before persisting.
func EncodeSet(s Set) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeSet parses the JSON storage form produced by EncodeSet.
func DecodeSet(raw string) (Set, error) {
	var s Set
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, errors.Join(ErrFailedToDecodeSet, err)
	}
	return s, nil
}

func generateCode() (string, error) {
	var b strings.Builder
	b.Grow(segmentLength*2 + 1)
	for i := 0; i < segmentLength*2; i++ {
		if i == segmentLength {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphanumeric))))
		if err != nil {
			return "", errors.Join(ErrFailedToGenerateCode, err)
		}
		b.WriteByte(alphanumeric[n.Int64()])
	}
	return b.String(), nil
}

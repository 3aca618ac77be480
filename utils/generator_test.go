package utils

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var referencePattern = regexp.MustCompile(`^GYM-[1-9][0-9]{3}$`)

func TestGenerateBookingReferenceFormat(t *testing.T) {
	ref, err := GenerateBookingReference(func(string) (bool, error) {
		return false, nil
	})

	assert.NoError(t, err)
	assert.Regexp(t, referencePattern, ref)
}

func TestGenerateBookingReferenceRetriesOnCollision(t *testing.T) {
	calls := 0
	ref, err := GenerateBookingReference(func(string) (bool, error) {
		calls++
		// First three draws are reported taken.
		return calls <= 3, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Regexp(t, referencePattern, ref)
}

func TestGenerateBookingReferenceExhausted(t *testing.T) {
	calls := 0
	_, err := GenerateBookingReference(func(string) (bool, error) {
		calls++
		return true, nil
	})

	assert.ErrorIs(t, err, ErrReferenceExhausted)
	assert.Equal(t, maxReferenceAttempts, calls)
}

func TestGenerateBookingReferencePropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("connection reset")

	_, err := GenerateBookingReference(func(string) (bool, error) {
		return false, lookupErr
	})

	assert.ErrorIs(t, err, lookupErr)
}

package utils

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const bookingReferencePrefix = "GYM-"
const maxReferenceAttempts = 25

// ErrReferenceExhausted is returned when every drawn reference collided
// with an existing booking. With a 9000-value space this only happens
// when the space is nearly full.
var ErrReferenceExhausted = errors.New("could not generate a unique booking reference")

// GenerateBookingReference draws GYM-#### references until isTaken
// reports a free one. isTaken is an optimization only; the caller must
// still rely on the store's unique index when inserting.
func GenerateBookingReference(isTaken func(string) (bool, error)) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < maxReferenceAttempts; i++ {
		ref := fmt.Sprintf("%s%d", bookingReferencePrefix, 1000+seededRand.Intn(9000))

		taken, err := isTaken(ref)
		if err != nil {
			return "", err
		}
		if !taken {
			return ref, nil
		}
	}

	return "", ErrReferenceExhausted
}

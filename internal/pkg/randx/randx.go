/*
Package randx provides functions for generating random identities and unique identifiers.

It is primarily used to generate default display names for new connections,
pick a random avatar gender, and mint opaque connection ids (UUID v4).
*/
package randx

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	// UsernamePrefix is the prefix of generated default display names.
	UsernamePrefix = "User_"

	// usernameDigitMin and usernameDigitMax bound the 4-digit suffix of
	// generated display names.
	usernameDigitMin = 1000
	usernameDigitMax = 9999
)

// ConnectionID generates a standard UUID v4 string to serve as the opaque
// routing key for a new connection. It is never shown to other users.
func ConnectionID() string {
	return uuid.New().String()
}

// Username generates a default display name of the form "User_NNNN" with a
// random 4-digit suffix.
func Username() string {
	n := usernameDigitMin + rand.IntN(usernameDigitMax-usernameDigitMin+1)
	return fmt.Sprintf("%s%d", UsernamePrefix, n)
}

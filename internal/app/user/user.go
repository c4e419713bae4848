/*
Package user contains core data structures related to user identity.

It defines the basic representation of a chat participant (the User struct),
the fixed avatar gender enumeration, and the avatar URL derivation used for
presentation in WebSocket messages.
*/
package user

import (
	"fmt"
	"math/rand/v2"
	"net/url"
)

// User represents the identity of a connected chat participant.
// Fields use JSON tags for serialization in WebSocket messages.
type User struct {

	// Name is the display name of the user, used for presentation and for
	// private-message targeting. Uniqueness is not enforced.
	Name string `json:"username"`

	// Avatar is the URL for the user's avatar, derived from Name and Gender.
	Avatar string `json:"avatar"`

	// Gender selects which avatar set the user draws from.
	Gender Gender `json:"-"`
}

// Gender is the avatar gender tag. Exactly two values are valid.
type Gender string

const (
	GenderBoy  Gender = "boy"
	GenderGirl Gender = "girl"
)

// Valid reports whether g is one of the two accepted gender tags.
func (g Gender) Valid() bool {
	return g == GenderBoy || g == GenderGirl
}

// RandomGender picks one of the two gender tags at random, used when a new
// connection does not specify one.
func RandomGender() Gender {
	if rand.IntN(2) == 0 {
		return GenderBoy
	}
	return GenderGirl
}

// avatarBaseURL is the external avatar service serving deterministic avatars per username.
const avatarBaseURL = "https://avatar.iran.liara.run/public"

// AvatarURL derives the avatar URL for the given display name and gender.
// The result is recomputed whenever either input changes; it is only a
// reference into the external avatar service, never stored media.
func AvatarURL(name string, gender Gender) string {
	return fmt.Sprintf("%s/%s?username=%s", avatarBaseURL, gender, url.QueryEscape(name))
}

// New builds a User with the avatar derived from the given name and gender.
func New(name string, gender Gender) User {
	return User{
		Name:   name,
		Avatar: AvatarURL(name, gender),
		Gender: gender,
	}
}

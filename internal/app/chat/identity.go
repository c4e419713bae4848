/*
Package chat contains the core logic of the presence and messaging hub.

This file defines the IdentityStore, the registry mapping each live connection
id to its mutable user record. It is the single owner of identity state; the
Router always re-reads it before routing so decisions observe the latest
identity.
*/
package chat

import (
	"strings"
	"sync"

	"pulsechat/internal/app/user"
	"pulsechat/internal/pkg/errs"
)

// IdentityStore maps connection ids to user records. All compound
// read-modify-write operations are serialized by an internal mutex.
//
// Iteration (FindByName, Snapshot) follows connection order, oldest first,
// so lookups among duplicate display names resolve deterministically to the
// earliest-connected match.
type IdentityStore struct {
	mu sync.RWMutex

	// byConn holds the user record for each live connection id.
	byConn map[string]user.User

	// order lists connection ids in the order they connected.
	order []string
}

// NewIdentityStore returns an empty IdentityStore.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		byConn: make(map[string]user.User),
	}
}

// Create registers the user record for a new connection id. Registering an id
// that is already present violates the gateway contract (one fresh id per
// connection) and fails with ErrDuplicateConnection.
func (s *IdentityStore) Create(connID string, u user.User) *errs.CustomError {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byConn[connID]; ok {
		return errs.NewError(errs.ErrDuplicateConnection)
	}

	s.byConn[connID] = u
	s.order = append(s.order, connID)
	return nil
}

// Get returns the current user record for the given connection id. A missing
// id is a normal case: events for unknown connections are dropped upstream.
func (s *IdentityStore) Get(connID string) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byConn[connID]
	return u, ok
}

// FindByName resolves a display name to a connection id. Display names are
// not unique; the earliest-connected match wins. The second return value is
// false when no live connection carries the name.
func (s *IdentityStore) FindByName(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, connID := range s.order {
		if s.byConn[connID].Name == name {
			return connID, true
		}
	}
	return "", false
}

// UpdateName sets a new display name and recomputes the avatar, preserving
// the gender tag. The update is a no-op when the trimmed name is empty or
// equals the current name; changed reports whether anything was mutated.
func (s *IdentityStore) UpdateName(connID, newName string) (old string, u user.User, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byConn[connID]
	if !ok {
		return "", user.User{}, false
	}

	newName = strings.TrimSpace(newName)
	if newName == "" || newName == u.Name {
		return u.Name, u, false
	}

	old = u.Name
	u.Name = newName
	u.Avatar = user.AvatarURL(newName, u.Gender)
	s.byConn[connID] = u

	return old, u, true
}

// UpdateGender sets a new gender tag and recomputes the avatar using the
// current display name. An invalid tag is a silent no-op.
func (s *IdentityStore) UpdateGender(connID string, gender user.Gender) (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byConn[connID]
	if !ok || !gender.Valid() {
		return user.User{}, false
	}

	u.Gender = gender
	u.Avatar = user.AvatarURL(u.Name, gender)
	s.byConn[connID] = u

	return u, true
}

// Remove deletes the record for the given connection id and returns it.
// Removing an unknown id reports false; disconnects for unknown connections
// are ignored upstream.
func (s *IdentityStore) Remove(connID string) (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byConn[connID]
	if !ok {
		return user.User{}, false
	}

	delete(s.byConn, connID)
	for i, id := range s.order {
		if id == connID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return u, true
}

// Snapshot returns a point-in-time presence listing of all live identities
// in connection order. The result is never nil so it encodes as a JSON array.
func (s *IdentityStore) Snapshot() []Presence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]Presence, 0, len(s.order))
	for _, connID := range s.order {
		u := s.byConn[connID]
		users = append(users, Presence{Username: u.Name, Avatar: u.Avatar})
	}
	return users
}

// Len returns the number of live identities.
func (s *IdentityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byConn)
}

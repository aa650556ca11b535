// Package identity supplies the signed-in user to the drawings store. The
// store never authenticates anyone; it only needs a user reference to stamp
// uploads with.
package identity

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/planroom/drawings/internal/drawings/model"
)

// Provider returns the current user, or false when nobody is signed in.
type Provider interface {
	CurrentUser() (model.User, bool)
}

// Static is a Provider with a fixed user that can be swapped or cleared.
type Static struct {
	mu   sync.RWMutex
	user *model.User
}

// NewStatic returns a Static signed in as u. An empty ID means signed out.
func NewStatic(u model.User) *Static {
	s := &Static{}
	s.SignIn(u)
	return s
}

// CurrentUser returns the signed-in user, if any.
func (s *Static) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// SignIn replaces the current user. A user without an ID signs out.
func (s *Static) SignIn(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		s.user = nil
		return
	}
	s.user = &u
}

// SignOut clears the current user.
func (s *Static) SignOut() {
	s.SignIn(model.User{})
}

// Claims is the subset of token claims describing the user.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// FromToken reads the user from a JWT's sub, name and picture claims. The
// signature is not verified here; the remote service does that on every call.
func FromToken(token string) (*Static, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("unable to parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return NewStatic(model.User{
		ID:        claims.Subject,
		FullName:  claims.Name,
		AvatarURL: claims.Picture,
	}), nil
}

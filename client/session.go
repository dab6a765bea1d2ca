package client

import (
	"context"
	"fmt"
	"sync"

	"smartcite/models"
)

// Session holds the process-wide authenticated identity and its
// profile. Providers subscribe to login/logout transitions; everything
// else treats the session as read-only.
type Session struct {
	mu        sync.Mutex
	identity  *Identity
	profile   *models.Profile
	listeners []func(loggedIn bool)
}

func NewSession() *Session {
	return &Session{}
}

// Subscribe registers a listener called after every login/logout
// transition. Providers use this to fetch-or-clear.
func (s *Session) Subscribe(fn func(loggedIn bool)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Login replaces the current identity and profile. The caller is
// trusted; no validation happens here.
func (s *Session) Login(identity Identity, profile models.Profile) {
	s.mu.Lock()
	s.identity = &identity
	s.profile = &profile
	listeners := append([]func(bool){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(true)
	}
}

// Logout clears identity and profile.
func (s *Session) Logout() {
	s.mu.Lock()
	s.identity = nil
	s.profile = nil
	listeners := append([]func(bool){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(false)
	}
}

// Identity returns the authenticated identity, if any.
func (s *Session) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Profile returns the loaded profile, if any.
func (s *Session) Profile() (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return models.Profile{}, false
	}
	return *s.profile, true
}

// SetProfile replaces the profile without touching the identity, e.g.
// after a successful profile update.
func (s *Session) SetProfile(profile models.Profile) {
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
}

// SignIn authenticates against the gateway, loads the profile by
// username and primes the session.
func SignIn(ctx context.Context, gw Gateway, session *Session, username, password string) error {
	identity, err := gw.SignIn(ctx, username, password)
	if err != nil {
		return err
	}

	profile, err := gw.FetchProfile(ctx, username)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	session.Login(identity, profile)
	return nil
}

// SignOut ends the remote session and clears the local one. The local
// session is cleared even when the remote call fails, so providers
// always release their cached collections.
func SignOut(ctx context.Context, gw Gateway, session *Session) error {
	err := gw.SignOut(ctx)
	session.Logout()
	return err
}

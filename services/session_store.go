package services

import (
	"agency_site_go/models"
	"context"
	"errors"
	"log"
	"sync"
)

// SessionState is what the store currently knows about the admin session
type SessionState int

const (
	// SessionLoading means the provider has not answered yet. It is not "signed out".
	SessionLoading SessionState = iota
	SessionNone
	SessionActive
)

func (s SessionState) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionNone:
		return "none"
	case SessionActive:
		return "active"
	}
	return "unknown"
}

// SessionSnapshot is one observation of the store
type SessionSnapshot struct {
	State   SessionState
	Session *models.Session
}

// ErrSessionStoreDisposed is returned by operations on a disposed store
var ErrSessionStoreDisposed = errors.New("session store disposed")

// SessionStore holds zero or one admin session and notifies subscribers
// whenever it changes. It starts in SessionLoading. Subscribers must not call
// Subscribe or change the store from inside their callback.
type SessionStore struct {
	// notifyMu orders deliveries: a subscriber's first snapshot and every
	// change notification go out one at a time, in state order.
	notifyMu sync.Mutex
	mu       sync.Mutex
	provider IdentityProvider
	current  SessionSnapshot
	subs     map[int]func(SessionSnapshot)
	nextSub  int
	disposed bool
}

// NewSessionStore creates a store in the loading state
func NewSessionStore(provider IdentityProvider) *SessionStore {
	return &SessionStore{
		provider: provider,
		current:  SessionSnapshot{State: SessionLoading},
		subs:     make(map[int]func(SessionSnapshot)),
	}
}

// Current returns the latest snapshot
func (s *SessionStore) Current() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe calls fn with the current snapshot right away and again on every
// change. The returned func removes the subscription.
func (s *SessionStore) Subscribe(fn func(SessionSnapshot)) func() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	snapshot := s.current
	if s.disposed {
		s.mu.Unlock()
		fn(snapshot)
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	fn(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// set stores the snapshot and notifies subscribers outside the state lock
func (s *SessionStore) set(next SessionSnapshot) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	changed := s.current.State != next.State || sessionID(s.current) != sessionID(next)
	s.current = next
	subs := make([]func(SessionSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(next)
	}
}

func sessionID(snapshot SessionSnapshot) string {
	if snapshot.Session == nil {
		return ""
	}
	return snapshot.Session.ID
}

func (s *SessionStore) isDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Restore resolves a client token into the store state. While the provider is
// not ready the store stays in SessionLoading.
func (s *SessionStore) Restore(ctx context.Context, token string) SessionSnapshot {
	if s.isDisposed() || !s.provider.Ready() {
		return s.Current()
	}

	if token == "" {
		s.set(SessionSnapshot{State: SessionNone})
		return s.Current()
	}

	session, err := s.provider.Lookup(ctx, token)
	switch {
	case err == nil:
		s.set(SessionSnapshot{State: SessionActive, Session: session})
	case errors.Is(err, ErrProviderUnavailable):
		// keep loading
	default:
		if !errors.Is(err, ErrSessionInvalid) {
			log.Printf("[WARNING] Session lookup failed: %v", err)
		}
		s.set(SessionSnapshot{State: SessionNone})
	}
	return s.Current()
}

// SignIn authenticates and makes the new session current
func (s *SessionStore) SignIn(ctx context.Context, email, password string, meta ClientMeta) (*models.Session, error) {
	if s.isDisposed() {
		return nil, &AuthError{Op: "sign-in", Err: ErrSessionStoreDisposed}
	}
	if !s.provider.Ready() {
		return nil, &AuthError{Op: "sign-in", Err: ErrProviderUnavailable}
	}

	session, err := s.provider.SignInWithEmailPassword(ctx, email, password, meta)
	if err != nil {
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			err = &AuthError{Op: "sign-in", Err: err}
		}
		return nil, err
	}

	s.set(SessionSnapshot{State: SessionActive, Session: session})
	return session, nil
}

// SignOut ends the current session. Signing out with no session succeeds.
func (s *SessionStore) SignOut(ctx context.Context) error {
	if s.isDisposed() {
		return &AuthError{Op: "sign-out", Err: ErrSessionStoreDisposed}
	}
	if !s.provider.Ready() {
		return &AuthError{Op: "sign-out", Err: ErrProviderUnavailable}
	}

	current := s.Current()
	if current.Session != nil {
		if err := s.provider.SignOut(ctx, current.Session.Token); err != nil {
			return err
		}
	}

	s.set(SessionSnapshot{State: SessionNone})
	return nil
}

// Refresh re-validates the current session. A session invalidated elsewhere
// (expired, deleted) is treated as a sign-out.
func (s *SessionStore) Refresh(ctx context.Context) SessionSnapshot {
	current := s.Current()
	if current.State != SessionActive || current.Session == nil {
		return current
	}

	session, err := s.provider.Lookup(ctx, current.Session.Token)
	switch {
	case err == nil:
		s.set(SessionSnapshot{State: SessionActive, Session: session})
	case errors.Is(err, ErrSessionInvalid):
		s.set(SessionSnapshot{State: SessionNone})
	default:
		log.Printf("[WARNING] Session refresh failed: %v", err)
	}
	return s.Current()
}

// Dispose drops all subscribers. The store ignores further changes.
func (s *SessionStore) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.subs = make(map[int]func(SessionSnapshot))
}

package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User holds the claims decoded from a bearer token.
type User struct {
	ID        string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// Listener is notified after every login or logout.
type Listener func(authenticated bool)

// Session is the client-side authentication state. Tokens are decoded but not
// verified; verification is the server's job.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      *User
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

// NewSession returns a logged-out session.
func NewSession() *Session {
	return &Session{listeners: make(map[int]Listener), now: time.Now}
}

// Login stores token and decodes its claims. A token whose claims cannot be
// decoded still authenticates the session, with a nil User.
func (s *Session) Login(token string) {
	user := decodeUser(token)
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	s.notify(token != "")
}

// Logout drops the token and user.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	s.notify(false)
}

// IsAuthenticated reports whether a token is held and, when its expiry is
// known, not yet expired.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return false
	}
	if s.user != nil && !s.user.ExpiresAt.IsZero() && !s.now().Before(s.user.ExpiresAt) {
		return false
	}
	return true
}

// User returns a copy of the decoded user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// BearerToken implements cartapi.Credentials.
func (s *Session) BearerToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers fn for login/logout notifications and returns a
// function that unregisters it.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify(authenticated bool) {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(authenticated)
	}
}

func decodeUser(token string) *User {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	u := &User{}
	if sub, err := claims.GetSubject(); err == nil {
		u.ID = sub
	}
	if u.ID == "" {
		u.ID = stringClaim(claims, "id", "userId", "_id")
	}
	u.Email = stringClaim(claims, "email")
	u.Name = stringClaim(claims, "name")
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		u.ExpiresAt = exp.Time
	}
	return u
}

func stringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

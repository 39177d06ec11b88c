package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLoginDecodesClaims(t *testing.T) {
	a := NewJWTAuthenticator("secret", "storefront", time.Hour)
	token, err := a.GenerateToken("user-1", "me@example.com")
	require.NoError(t, err)

	s := NewSession()
	assert.False(t, s.IsAuthenticated())

	s.Login(token)
	require.True(t, s.IsAuthenticated())
	u := s.User()
	require.NotNil(t, u)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "me@example.com", u.Email)
	assert.Equal(t, token, s.BearerToken())
}

func TestSessionOpaqueTokenStillAuthenticates(t *testing.T) {
	s := NewSession()
	s.Login("not-a-jwt")
	assert.True(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestSessionExpiredToken(t *testing.T) {
	a := NewJWTAuthenticator("secret", "storefront", time.Minute)
	token, err := a.GenerateToken("user-1", "")
	require.NoError(t, err)

	s := NewSession()
	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	s.Login(token)
	assert.False(t, s.IsAuthenticated())
}

func TestSessionNotifiesListeners(t *testing.T) {
	s := NewSession()
	var events []bool
	unsubscribe := s.Subscribe(func(authenticated bool) { events = append(events, authenticated) })

	s.Login("tok")
	s.Logout()
	unsubscribe()
	s.Login("tok")

	assert.Equal(t, []bool{true, false}, events)
	assert.Equal(t, "tok", s.BearerToken())
}

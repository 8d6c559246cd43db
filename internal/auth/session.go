package auth

import (
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Session is one authenticated session. It is a plain value held by the
// calling layer; the Manager never stores it, so any number of sessions
// can coexist against the same store.
type Session struct {
	user    *types.User
	loginAt time.Time
}

// User returns the authenticated user, or nil after Logout.
func (s *Session) User() *types.User {
	if s == nil {
		return nil
	}
	return s.user
}

// Active reports whether the session is still logged in.
func (s *Session) Active() bool {
	return s != nil && s.user != nil
}

// LoginAt returns when the session was established.
func (s *Session) LoginAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loginAt
}

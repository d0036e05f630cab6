package auth

import "sync"

// Session holds the device's current identity. UserID is empty when signed
// out; user-scoped stores fall back to an anonymous key in that case.
type Session struct {
	mu     sync.RWMutex
	userID string
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) Set(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.Set("")
}

package store

import (
	"sync"

	"github.com/aaronzipp/crewmate/internal/session"
)

// SessionStore indexes live sessions by channel and by join code
type SessionStore struct {
	byChannel map[string]*session.Session
	byCode    map[string]string
	mu        sync.RWMutex
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byChannel: make(map[string]*session.Session),
		byCode:    make(map[string]string),
	}
}

// Get retrieves the session running in a channel
func (s *SessionStore) Get(channelID string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, exists := s.byChannel[channelID]
	return sess, exists
}

// GetByCode retrieves a session by its join code
func (s *SessionStore) GetByCode(code string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channelID, ok := s.byCode[code]
	if !ok {
		return nil, false
	}
	sess, exists := s.byChannel[channelID]
	return sess, exists
}

// Add stores a session unless its channel already has one
func (s *SessionStore) Add(sess *session.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byChannel[sess.ChannelID()]; taken {
		return false
	}
	s.byChannel[sess.ChannelID()] = sess
	s.byCode[sess.Code()] = sess.ChannelID()
	return true
}

// Remove deletes a session if it is still the one stored for its channel
func (s *SessionStore) Remove(sess *session.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.byChannel[sess.ChannelID()]; !ok || cur != sess {
		return false
	}
	delete(s.byChannel, sess.ChannelID())
	delete(s.byCode, sess.Code())
	return true
}

// Exists checks if a channel has a session
func (s *SessionStore) Exists(channelID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.byChannel[channelID]
	return exists
}

// CodeTaken reports whether a join code is in use
func (s *SessionStore) CodeTaken(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.byCode[code]
	return taken
}

// All returns every stored session
func (s *SessionStore) All() []*session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*session.Session, 0, len(s.byChannel))
	for _, sess := range s.byChannel {
		out = append(out, sess)
	}
	return out
}

// Len counts stored sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byChannel)
}

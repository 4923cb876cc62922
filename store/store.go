// Package store owns the in-memory collection of chat sessions and the
// current-session pointer. Sessions are volatile: they live for the
// process and are gone on restart.
//
// Two invariants hold across every operation: the session list is
// never empty, and the current pointer always resolves to a member of
// the list.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gemchat/internal/attachment"
)

const (
	// NewSessionTitle is the placeholder title a session is born with.
	NewSessionTitle = "New Chat"

	titleLimit    = 30
	titleEllipsis = "..."
)

var (
	// ErrSessionNotFound is returned by operations that need the
	// target session to exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy is returned by BeginExchange when the session is
	// already awaiting a response.
	ErrSessionBusy = errors.New("session is awaiting a response")
)

// Store holds every session, newest first.
type Store struct {
	mu        sync.Mutex
	sessions  []*Session
	currentID string
}

// New instantiates a store holding one fresh session.
func New() *Store {
	s := &Store{}
	s.CreateSession()
	return s
}

// CreateSession inserts a new session at the front of the list and
// makes it current.
func (s *Store) CreateSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSessionLocked()
}

func (s *Store) createSessionLocked() *Session {
	session := &Session{
		ID:        uuid.New().String()[:8],
		Title:     NewSessionTitle,
		CreatedAt: time.Now(),
	}
	s.sessions = append([]*Session{session}, s.sessions...)
	s.currentID = session.ID
	return session
}

// DeleteSession removes the session and returns its messages so the
// caller can release their display resources. Unknown ids are silently
// ignored. If the deleted session was current, the first remaining
// session becomes current; deleting the last session leaves the store
// holding one fresh session.
func (s *Store) DeleteSession(id string) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i, session := range s.sessions {
		if session.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	removed := s.sessions[index]
	s.sessions = append(s.sessions[:index], s.sessions[index+1:]...)

	if len(s.sessions) == 0 {
		s.createSessionLocked()
	} else if s.currentID == id {
		s.currentID = s.sessions[0].ID
	}
	return removed.Messages
}

// RenameSession sets the session's title. A title that is empty after
// trimming leaves the session untouched.
func (s *Store) RenameSession(id, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if session := s.findLocked(id); session != nil {
		session.Title = title
	}
}

// SelectSession moves the current pointer. Unknown ids are ignored.
func (s *Store) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) != nil {
		s.currentID = id
	}
}

// Current returns the current session.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.currentID)
}

// CurrentID returns the current session's id.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Get returns the session with the given id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.findLocked(id)
	return session, session != nil
}

// Sessions returns the sessions, newest first.
func (s *Store) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := make([]*Session, len(s.sessions))
	copy(sessions, s.sessions)
	return sessions
}

// BeginExchange atomically verifies the session is idle, appends the
// user message, and flags the session pending. The busy check and the
// optimistic insert share one critical section so two concurrent sends
// on the same session cannot both pass the check.
func (s *Store) BeginExchange(sessionID, content string, files []*attachment.Descriptor) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.findLocked(sessionID)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Pending {
		return nil, ErrSessionBusy
	}
	message := appendUserLocked(session, content, files)
	session.Pending = true
	return message, nil
}

// AppendUserMessage appends a user message to the session. On the
// session's first message, the title is derived from the content.
func (s *Store) AppendUserMessage(sessionID, content string, files []*attachment.Descriptor) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.findLocked(sessionID)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return appendUserLocked(session, content, files), nil
}

func appendUserLocked(session *Session, content string, files []*attachment.Descriptor) *Message {
	message := newMessage(RoleUser, content)
	message.Files = files
	if len(session.Messages) == 0 && strings.TrimSpace(content) != "" {
		session.Title = deriveTitle(content)
	}
	session.Messages = append(session.Messages, message)
	return message
}

// AppendAssistantMessage appends an assistant message to the session.
func (s *Store) AppendAssistantMessage(sessionID, content string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.findLocked(sessionID)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	message := newMessage(RoleAssistant, content)
	session.Messages = append(session.Messages, message)
	return message, nil
}

// AppendErrorMessage appends a visible assistant-role error entry to
// the session.
func (s *Store) AppendErrorMessage(sessionID string, cause error) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.findLocked(sessionID)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	message := newMessage(RoleAssistant, "")
	message.Error = cause.Error()
	session.Messages = append(session.Messages, message)
	return message, nil
}

// SetPending flags the session as awaiting a generation response.
func (s *Store) SetPending(sessionID string, pending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session := s.findLocked(sessionID); session != nil {
		session.Pending = pending
	}
}

// Pending reports whether the session is awaiting a response.
func (s *Store) Pending(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.findLocked(sessionID)
	return session != nil && session.Pending
}

func (s *Store) findLocked(id string) *Session {
	for _, session := range s.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

// deriveTitle takes the first 30 characters of the first user message,
// with an ellipsis when truncated.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + titleEllipsis
}

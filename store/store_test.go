package store

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeverEmpty(t *testing.T) {
	s := New()
	require.Len(t, s.Sessions(), 1)
	require.NotNil(t, s.Current())

	// Any sequence of create/delete leaves the list non-empty and the
	// current pointer resolving.
	a := s.CreateSession()
	b := s.CreateSession()
	s.DeleteSession(a.ID)
	s.DeleteSession(b.ID)
	for _, session := range s.Sessions() {
		s.DeleteSession(session.ID)
	}

	require.NotEmpty(t, s.Sessions())
	require.NotNil(t, s.Current())
	assert.Equal(t, s.Current().ID, s.CurrentID())
}

func TestCreateSession(t *testing.T) {
	s := New()
	first := s.Current()

	created := s.CreateSession()
	assert.Equal(t, NewSessionTitle, created.Title)
	assert.Equal(t, created.ID, s.CurrentID())

	// Newest first.
	sessions := s.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, created.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)
}

func TestDeleteSession(t *testing.T) {
	t.Run("deleting current selects first remaining", func(t *testing.T) {
		s := New()
		older := s.Current()
		newer := s.CreateSession()
		newest := s.CreateSession()

		s.DeleteSession(newest.ID)
		assert.Equal(t, newer.ID, s.CurrentID())

		remaining := s.Sessions()
		require.Len(t, remaining, 2)
		assert.Equal(t, newer.ID, remaining[0].ID)
		assert.Equal(t, older.ID, remaining[1].ID)
	})

	t.Run("deleting a non-current session keeps current", func(t *testing.T) {
		s := New()
		older := s.Current()
		newer := s.CreateSession()

		s.DeleteSession(older.ID)
		assert.Equal(t, newer.ID, s.CurrentID())
		assert.Len(t, s.Sessions(), 1)
	})

	t.Run("deleting the last session yields one fresh session", func(t *testing.T) {
		s := New()
		old := s.Current()
		_, err := s.AppendUserMessage(old.ID, "hello", nil)
		require.NoError(t, err)

		s.DeleteSession(old.ID)

		sessions := s.Sessions()
		require.Len(t, sessions, 1)
		assert.NotEqual(t, old.ID, sessions[0].ID)
		assert.Empty(t, sessions[0].Messages)
		assert.Equal(t, NewSessionTitle, sessions[0].Title)
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		s := New()
		current := s.CurrentID()
		assert.Nil(t, s.DeleteSession("nope"))
		assert.Equal(t, current, s.CurrentID())
		assert.Len(t, s.Sessions(), 1)
	})

	t.Run("returns the removed messages", func(t *testing.T) {
		s := New()
		id := s.CurrentID()
		_, err := s.AppendUserMessage(id, "hello", nil)
		require.NoError(t, err)
		_, err = s.AppendAssistantMessage(id, "hi")
		require.NoError(t, err)

		removed := s.DeleteSession(id)
		require.Len(t, removed, 2)
	})
}

func TestRenameSession(t *testing.T) {
	s := New()
	id := s.CurrentID()

	s.RenameSession(id, "Kubernetes notes")
	assert.Equal(t, "Kubernetes notes", s.Current().Title)

	// Blank titles leave the session untouched.
	s.RenameSession(id, "   ")
	assert.Equal(t, "Kubernetes notes", s.Current().Title)

	s.RenameSession("nope", "ghost")
	assert.Equal(t, "Kubernetes notes", s.Current().Title)
}

func TestSelectSession(t *testing.T) {
	s := New()
	older := s.Current()
	newer := s.CreateSession()
	require.Equal(t, newer.ID, s.CurrentID())

	s.SelectSession(older.ID)
	assert.Equal(t, older.ID, s.CurrentID())

	// Unknown ids are ignored.
	s.SelectSession("nope")
	assert.Equal(t, older.ID, s.CurrentID())
}

func TestTitleDerivation(t *testing.T) {
	t.Run("first message becomes the title", func(t *testing.T) {
		s := New()
		_, err := s.AppendUserMessage(s.CurrentID(), "hello world", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello world", s.Current().Title)
	})

	t.Run("long first message is truncated with ellipsis", func(t *testing.T) {
		s := New()
		long := strings.Repeat("a", 35)
		_, err := s.AppendUserMessage(s.CurrentID(), long, nil)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("a", 30)+"...", s.Current().Title)
	})

	t.Run("exactly the limit is kept whole", func(t *testing.T) {
		s := New()
		exact := strings.Repeat("b", 30)
		_, err := s.AppendUserMessage(s.CurrentID(), exact, nil)
		require.NoError(t, err)
		assert.Equal(t, exact, s.Current().Title)
	})

	t.Run("second message does not retitle", func(t *testing.T) {
		s := New()
		id := s.CurrentID()
		_, err := s.AppendUserMessage(id, "first", nil)
		require.NoError(t, err)
		_, err = s.AppendUserMessage(id, "second", nil)
		require.NoError(t, err)
		assert.Equal(t, "first", s.Current().Title)
	})

	t.Run("blank first message keeps the placeholder", func(t *testing.T) {
		s := New()
		_, err := s.AppendUserMessage(s.CurrentID(), "  ", nil)
		require.NoError(t, err)
		assert.Equal(t, NewSessionTitle, s.Current().Title)
	})
}

func TestAppendMessages(t *testing.T) {
	t.Run("ordering and roles", func(t *testing.T) {
		s := New()
		id := s.CurrentID()
		_, err := s.AppendUserMessage(id, "question", nil)
		require.NoError(t, err)
		_, err = s.AppendAssistantMessage(id, "answer")
		require.NoError(t, err)

		messages := s.Current().Messages
		require.Len(t, messages, 2)
		assert.Equal(t, RoleUser, messages[0].Role)
		assert.Equal(t, RoleAssistant, messages[1].Role)
		assert.False(t, messages[1].IsError())
	})

	t.Run("error entry", func(t *testing.T) {
		s := New()
		id := s.CurrentID()
		_, err := s.AppendErrorMessage(id, errors.New("upstream unavailable"))
		require.NoError(t, err)

		messages := s.Current().Messages
		require.Len(t, messages, 1)
		assert.True(t, messages[0].IsError())
		assert.Equal(t, RoleAssistant, messages[0].Role)
		assert.Empty(t, messages[0].Content)
		assert.Equal(t, "upstream unavailable", messages[0].Error)
	})

	t.Run("unknown session", func(t *testing.T) {
		s := New()
		_, err := s.AppendUserMessage("nope", "hello", nil)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = s.AppendAssistantMessage("nope", "hello")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = s.AppendErrorMessage("nope", errors.New("x"))
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestBeginExchange(t *testing.T) {
	t.Run("appends, derives title and flags pending atomically", func(t *testing.T) {
		s := New()
		id := s.CurrentID()

		message, err := s.BeginExchange(id, "hello world", nil)
		require.NoError(t, err)
		assert.Equal(t, RoleUser, message.Role)
		assert.True(t, s.Pending(id))
		assert.Equal(t, "hello world", s.Current().Title)
		require.Len(t, s.Current().Messages, 1)
	})

	t.Run("busy session is rejected without appending", func(t *testing.T) {
		s := New()
		id := s.CurrentID()
		_, err := s.BeginExchange(id, "first", nil)
		require.NoError(t, err)

		_, err = s.BeginExchange(id, "second", nil)
		assert.ErrorIs(t, err, ErrSessionBusy)
		require.Len(t, s.Current().Messages, 1)
	})

	t.Run("unknown session", func(t *testing.T) {
		s := New()
		_, err := s.BeginExchange("nope", "hello", nil)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("concurrent sends admit exactly one", func(t *testing.T) {
		s := New()
		id := s.CurrentID()

		var wg sync.WaitGroup
		var admitted atomic.Int32
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.BeginExchange(id, "racing", nil); err == nil {
					admitted.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), admitted.Load())
		require.Len(t, s.Current().Messages, 1)
		assert.True(t, s.Pending(id))
	})
}

func TestPending(t *testing.T) {
	s := New()
	id := s.CurrentID()
	assert.False(t, s.Pending(id))

	s.SetPending(id, true)
	assert.True(t, s.Pending(id))

	// Pending is per session.
	other := s.CreateSession()
	assert.False(t, s.Pending(other.ID))

	s.SetPending(id, false)
	assert.False(t, s.Pending(id))
	assert.False(t, s.Pending("nope"))
}

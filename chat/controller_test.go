package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemchat/internal/attachment"
	"gemchat/internal/configuration"
	"gemchat/internal/llm"
	"gemchat/store"
)

// fakeClient scripts the generation collaborator.
type fakeClient struct {
	text     string
	err      error
	requests []*llm.GenerateRequest
}

func (c *fakeClient) Generate(ctx context.Context, request *llm.GenerateRequest) (string, error) {
	c.requests = append(c.requests, request)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.text, c.err
}

func newTestController(client llm.Client) *Controller {
	config := &configuration.Config{
		Model:           "gemini-2.5-flash",
		RequestTimeout:  5,
		MaxRequestBytes: 1024,
	}
	return NewController(store.New(), client, attachment.NewRegistry(), config)
}

func TestSend(t *testing.T) {
	t.Run("user then assistant message in order", func(t *testing.T) {
		client := &fakeClient{text: "hi there"}
		c := newTestController(client)
		id := c.Store().CurrentID()

		require.NoError(t, c.Send(context.Background(), id, "hello world", nil))

		messages := c.Store().Current().Messages
		require.Len(t, messages, 2)
		assert.Equal(t, store.RoleUser, messages[0].Role)
		assert.Equal(t, "hello world", messages[0].Content)
		assert.Equal(t, store.RoleAssistant, messages[1].Role)
		assert.Equal(t, "hi there", messages[1].Content)
		assert.False(t, c.Store().Pending(id))
		assert.Equal(t, "hello world", c.Store().Current().Title)
	})

	t.Run("empty send causes no state change", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		id := c.Store().CurrentID()

		err := c.Send(context.Background(), id, "   ", nil)
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Equal(t, llm.KindValidation, llm.KindOf(err))
		assert.Empty(t, c.Store().Current().Messages)
		assert.False(t, c.Store().Pending(id))
	})

	t.Run("attachment-only send is dispatched", func(t *testing.T) {
		client := &fakeClient{text: "summary"}
		c := newTestController(client)
		id := c.Store().CurrentID()
		file := &attachment.File{Name: "notes.txt", MediaType: "text/plain", Content: []byte("abc")}

		require.NoError(t, c.Send(context.Background(), id, "", []*attachment.File{file}))
		require.Len(t, client.requests, 1)
		assert.Equal(t, file, client.requests[0].File)
	})

	t.Run("only the first attachment is forwarded", func(t *testing.T) {
		client := &fakeClient{text: "done"}
		c := newTestController(client)
		id := c.Store().CurrentID()
		files := []*attachment.File{
			{Name: "a.txt", Content: []byte("a")},
			{Name: "b.txt", Content: []byte("b")},
		}

		require.NoError(t, c.Send(context.Background(), id, "look", files))
		require.Len(t, client.requests, 1)
		assert.Equal(t, "a.txt", client.requests[0].File.Name)

		// Both attachments are still visible on the user message.
		messages := c.Store().Current().Messages
		require.Len(t, messages[0].Files, 2)
	})

	t.Run("request over the size cap is rejected before dispatch", func(t *testing.T) {
		client := &fakeClient{text: "never"}
		c := newTestController(client)
		id := c.Store().CurrentID()
		file := &attachment.File{Name: "big.bin", Content: make([]byte, 2048)}

		err := c.Send(context.Background(), id, "analyze", []*attachment.File{file})
		assert.ErrorIs(t, err, ErrRequestTooLarge)
		assert.Empty(t, client.requests)
		assert.Empty(t, c.Store().Current().Messages)
	})

	t.Run("generation failure surfaces an error entry", func(t *testing.T) {
		client := &fakeClient{err: llm.WithKind(llm.KindGeneration, errors.New("upstream unavailable"))}
		c := newTestController(client)
		id := c.Store().CurrentID()

		err := c.Send(context.Background(), id, "hello", nil)
		require.Error(t, err)
		assert.Equal(t, llm.KindGeneration, llm.KindOf(err))

		messages := c.Store().Current().Messages
		require.Len(t, messages, 2)
		assert.True(t, messages[1].IsError())
		assert.Empty(t, messages[1].Content)
		assert.False(t, c.Store().Pending(id))
	})

	t.Run("empty response is reconciled as a failure", func(t *testing.T) {
		client := &fakeClient{text: ""}
		c := newTestController(client)
		id := c.Store().CurrentID()

		require.NoError(t, c.Send(context.Background(), id, "hello", nil))

		messages := c.Store().Current().Messages
		require.Len(t, messages, 2)
		assert.True(t, messages[1].IsError())
		assert.False(t, c.Store().Pending(id))
	})
}

func TestPrepare(t *testing.T) {
	t.Run("busy session rejects a second send", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		id := c.Store().CurrentID()

		_, err := c.Prepare(id, "first", nil)
		require.NoError(t, err)
		require.True(t, c.Store().Pending(id))

		_, err = c.Prepare(id, "second", nil)
		assert.ErrorIs(t, err, ErrSessionBusy)
		require.Len(t, c.Store().Current().Messages, 1)
	})

	t.Run("concurrent sends on one session admit exactly one", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		id := c.Store().CurrentID()

		var wg sync.WaitGroup
		var admitted atomic.Int32
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := c.Prepare(id, "racing", nil); err == nil {
					admitted.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), admitted.Load())
		require.Len(t, c.Store().Current().Messages, 1)
	})

	t.Run("rejected send leaks no display references", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		id := c.Store().CurrentID()
		_, err := c.Prepare(id, "first", nil)
		require.NoError(t, err)

		file := &attachment.File{Name: "a.png", MediaType: "image/png", Content: []byte("x")}
		_, err = c.Prepare(id, "second", []*attachment.File{file})
		require.ErrorIs(t, err, ErrSessionBusy)
		assert.Empty(t, c.Registry().Live())
	})

	t.Run("a busy session does not block other sessions", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		busy := c.Store().CurrentID()
		_, err := c.Prepare(busy, "first", nil)
		require.NoError(t, err)

		other := c.NewSession()
		_, err = c.Prepare(other.ID, "hello", nil)
		assert.NoError(t, err)
	})

	t.Run("content is trimmed before dispatch", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		request, err := c.Prepare(c.Store().CurrentID(), "  hello  ", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", request.Content)
	})

	t.Run("unknown session", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		_, err := c.Prepare("nope", "hello", nil)
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})
}

// A request originated on one session reconciles into that session even
// after the user has moved on.
func TestCrossSessionResolution(t *testing.T) {
	client := &fakeClient{text: "late answer"}
	c := newTestController(client)
	origin := c.Store().CurrentID()

	request, err := c.Prepare(origin, "slow question", nil)
	require.NoError(t, err)

	// The user switches elsewhere while the request is in flight.
	other := c.NewSession()
	c.SelectSession(other.ID)
	require.Equal(t, other.ID, c.Store().CurrentID())

	text, err := c.Resolve(context.Background(), request)
	require.NoError(t, err)
	c.Complete(request, text)

	originSession, ok := c.Store().Get(origin)
	require.True(t, ok)
	require.Len(t, originSession.Messages, 2)
	assert.Equal(t, "late answer", originSession.Messages[1].Content)
	assert.False(t, c.Store().Pending(origin))

	otherSession, ok := c.Store().Get(other.ID)
	require.True(t, ok)
	assert.Empty(t, otherSession.Messages)
}

func TestDeleteSession(t *testing.T) {
	t.Run("releases display references", func(t *testing.T) {
		c := newTestController(&fakeClient{text: "ok"})
		id := c.Store().CurrentID()
		file := &attachment.File{Name: "pic.png", MediaType: "image/png", Content: []byte("x")}

		require.NoError(t, c.Send(context.Background(), id, "look at this", []*attachment.File{file}))
		require.Len(t, c.Registry().Live(), 1)

		c.DeleteSession(id)
		assert.Empty(t, c.Registry().Live())
	})

	t.Run("late result for a deleted session is discarded", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		origin := c.Store().CurrentID()
		request, err := c.Prepare(origin, "question", nil)
		require.NoError(t, err)

		c.DeleteSession(origin)
		c.Complete(request, "orphaned answer")

		for _, session := range c.Store().Sessions() {
			assert.Empty(t, session.Messages)
		}
	})

	t.Run("late failure for a deleted session is discarded", func(t *testing.T) {
		c := newTestController(&fakeClient{})
		origin := c.Store().CurrentID()
		request, err := c.Prepare(origin, "question", nil)
		require.NoError(t, err)

		c.DeleteSession(origin)
		c.Fail(request, errors.New("too late"))

		for _, session := range c.Store().Sessions() {
			assert.Empty(t, session.Messages)
		}
	})
}

func TestTitleTruncation(t *testing.T) {
	c := newTestController(&fakeClient{text: "ok"})
	id := c.Store().CurrentID()
	long := strings.Repeat("x", 35)

	require.NoError(t, c.Send(context.Background(), id, long, nil))
	assert.Equal(t, strings.Repeat("x", 30)+"...", c.Store().Current().Title)
}

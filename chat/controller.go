// Package chat orchestrates the message lifecycle: optimistic
// insertion of the user message, dispatch to the generation
// collaborator, and reconciliation of the asynchronous result into the
// session that originated the request.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"

	"gemchat/internal/attachment"
	"gemchat/internal/configuration"
	"gemchat/internal/debug"
	"gemchat/internal/llm"
	"gemchat/store"
)

var log = debug.GetLogger()

var (
	// ErrEmptyMessage rejects a send with no content and no attachment.
	ErrEmptyMessage = llm.WithKind(llm.KindValidation, errors.New("message is empty"))
	// ErrSessionBusy rejects a send on a session that is already
	// awaiting a response.
	ErrSessionBusy = llm.WithKind(llm.KindValidation, store.ErrSessionBusy)
	// ErrRequestTooLarge rejects a request over the configured size cap
	// before anything is dispatched or truncated.
	ErrRequestTooLarge = llm.WithKind(llm.KindValidation, errors.New("request exceeds the size limit"))
)

// Controller mediates every mutation of the session store on behalf of
// the presentation layers.
type Controller struct {
	store    *store.Store
	client   llm.Client
	registry *attachment.Registry

	model           string
	maxRequestBytes int64
	timeout         time.Duration

	// Outstanding requests by session id, so deleting a session can
	// cancel its in-flight generation.
	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

// NewController instantiates and returns a new controller.
func NewController(s *store.Store, client llm.Client, registry *attachment.Registry, config *configuration.Config) *Controller {
	return &Controller{
		store:           s,
		client:          client,
		registry:        registry,
		model:           config.Model,
		maxRequestBytes: config.MaxRequestBytes,
		timeout:         time.Duration(config.RequestTimeout) * time.Second,
		inflight:        map[string]context.CancelFunc{},
	}
}

// Store exposes the underlying session store for read access.
func (c *Controller) Store() *store.Store { return c.store }

// Registry exposes the display-reference registry.
func (c *Controller) Registry() *attachment.Registry { return c.registry }

// NewSession creates a session and makes it current.
func (c *Controller) NewSession() *store.Session {
	return c.store.CreateSession()
}

// DeleteSession removes a session, cancels its outstanding request if
// any, and releases the display references held by its messages.
func (c *Controller) DeleteSession(id string) {
	c.mu.Lock()
	if cancel, ok := c.inflight[id]; ok {
		cancel()
		delete(c.inflight, id)
	}
	c.mu.Unlock()

	removed := c.store.DeleteSession(id)
	if len(removed) == 0 {
		return
	}
	refs := strset.New()
	for _, message := range removed {
		for _, descriptor := range message.Files {
			if descriptor.DisplayRef != "" {
				refs.Add(descriptor.DisplayRef)
			}
		}
	}
	c.registry.Release(refs.List()...)
}

// releaseDescriptors frees display references built for a send that
// was rejected before any message could hold them.
func (c *Controller) releaseDescriptors(descriptors []*attachment.Descriptor) {
	for _, descriptor := range descriptors {
		if descriptor.DisplayRef != "" {
			c.registry.Release(descriptor.DisplayRef)
		}
	}
}

// RenameSession sets a session title; empty titles are ignored.
func (c *Controller) RenameSession(id, title string) {
	c.store.RenameSession(id, title)
}

// SelectSession moves the current pointer.
func (c *Controller) SelectSession(id string) {
	c.store.SelectSession(id)
}

// Request is a dispatched generation request. The session id is
// captured at initiation, so the eventual result is reconciled into
// the session that originated it, not whichever session is current
// when the response arrives.
type Request struct {
	SessionID string
	Content   string
	File      *attachment.File
}

// Prepare validates a send, appends the user message optimistically,
// flags the session pending, and returns the request to dispatch.
// Only the first attachment is forwarded to generation; the rest are
// display-only.
func (c *Controller) Prepare(sessionID, content string, files []*attachment.File) (*Request, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(files) == 0 {
		return nil, ErrEmptyMessage
	}
	var forwarded *attachment.File
	if len(files) > 0 {
		forwarded = files[0]
	}
	size := int64(len(content))
	if forwarded != nil {
		size += int64(len(forwarded.Content))
	}
	if size > c.maxRequestBytes {
		return nil, ErrRequestTooLarge
	}

	descriptors := c.registry.Build(files)
	if _, err := c.store.BeginExchange(sessionID, content, descriptors); err != nil {
		c.releaseDescriptors(descriptors)
		if errors.Is(err, store.ErrSessionBusy) {
			return nil, ErrSessionBusy
		}
		return nil, err
	}

	return &Request{
		SessionID: sessionID,
		Content:   content,
		File:      forwarded,
	}, nil
}

// Resolve dispatches the request and returns the collaborator's text.
// It blocks; presentation layers run it off their event loop and feed
// the outcome back through Complete or Fail.
func (c *Controller) Resolve(ctx context.Context, request *Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.Lock()
	c.inflight[request.SessionID] = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inflight, request.SessionID)
		c.mu.Unlock()
	}()

	return c.client.Generate(ctx, &llm.GenerateRequest{
		Model:   c.model,
		Content: request.Content,
		File:    request.File,
	})
}

// Complete reconciles a successful generation into the originating
// session and clears its pending flag. An empty response is reconciled
// as a failure: an assistant message with no content is never appended.
func (c *Controller) Complete(request *Request, text string) {
	if text == "" {
		c.Fail(request, llm.WithKind(llm.KindGeneration, errors.New("collaborator returned an empty response")))
		return
	}
	if _, err := c.store.AppendAssistantMessage(request.SessionID, text); err != nil {
		log.Info("discarding response for deleted session", "session", request.SessionID)
		return
	}
	c.store.SetPending(request.SessionID, false)
}

// Fail reconciles a generation failure as a visible error entry and
// clears the pending flag.
func (c *Controller) Fail(request *Request, cause error) {
	if _, err := c.store.AppendErrorMessage(request.SessionID, cause); err != nil {
		log.Info("discarding failure for deleted session", "session", request.SessionID, "cause", cause)
		return
	}
	c.store.SetPending(request.SessionID, false)
}

// Send runs the full lifecycle sequentially. It is the path used by
// surfaces without an event loop of their own (the one-shot command
// and the web handlers).
func (c *Controller) Send(ctx context.Context, sessionID, content string, files []*attachment.File) error {
	request, err := c.Prepare(sessionID, content, files)
	if err != nil {
		return err
	}
	text, err := c.Resolve(ctx, request)
	if err != nil {
		c.Fail(request, err)
		return err
	}
	c.Complete(request, text)
	return nil
}

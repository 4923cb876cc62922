// Package llm dispatches generation requests to the Gemini API and
// normalizes the outcome to either a text payload or a typed error.
package llm

import (
	"context"

	"gemchat/internal/attachment"
)

// GenerateRequest is a single-turn generation request. File, when set,
// is uploaded to the collaborator ahead of the call and released once
// the call completes.
type GenerateRequest struct {
	Model   string
	Content string
	File    *attachment.File
}

// Client issues generation calls. No retries are performed internally;
// retrying, if desired, is the caller's responsibility.
type Client interface {
	Generate(ctx context.Context, request *GenerateRequest) (string, error)
}

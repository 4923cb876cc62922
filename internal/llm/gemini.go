package llm

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"gemchat/internal/debug"
)

var log = debug.GetLogger()

// GeminiClient is the genai-backed dispatcher.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient instantiates and returns a new Gemini client. An
// empty API key is a configuration error: the process should refuse to
// start rather than fail per-request.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, WithKind(KindConfiguration, errors.New("GEMINI_API_KEY is not set"))
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, WithKind(KindConfiguration, errors.Wrap(err, "creating genai client"))
	}
	return &GeminiClient{client: client}, nil
}

// Generate issues a plain text call, or a file-augmented one when the
// request carries a file.
func (c *GeminiClient) Generate(ctx context.Context, request *GenerateRequest) (string, error) {
	if request.File == nil {
		return c.generateText(ctx, request)
	}
	return c.generateWithFile(ctx, request)
}

func (c *GeminiClient) generateText(ctx context.Context, request *GenerateRequest) (string, error) {
	response, err := c.client.Models.GenerateContent(ctx, request.Model, genai.Text(request.Content), nil)
	if err != nil {
		return "", WithKind(KindGeneration, errors.Wrap(err, "generating content"))
	}
	return response.Text(), nil
}

// generateWithFile registers the file with the collaborator, generates
// against the returned reference, then deletes the remote file. The
// delete runs once upload succeeded, whether or not generation did; a
// delete failure is logged and never masks an obtained response.
func (c *GeminiClient) generateWithFile(ctx context.Context, request *GenerateRequest) (string, error) {
	file := request.File
	uploaded, err := c.client.Files.Upload(ctx, bytes.NewReader(file.Content), &genai.UploadFileConfig{
		MIMEType:    file.MediaType,
		DisplayName: file.Name,
	})
	if err != nil {
		return "", WithKind(KindUpload, errors.Wrapf(err, "uploading file (%s)", file.Name))
	}
	defer func() {
		// Cleanup must run even when ctx was canceled mid-generation.
		cleanupCtx := context.WithoutCancel(ctx)
		if _, err := c.client.Files.Delete(cleanupCtx, uploaded.Name, nil); err != nil {
			log.Error("releasing uploaded file", "file", uploaded.Name, "error", err)
		}
	}()

	parts := []*genai.Part{
		genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
		genai.NewPartFromText(request.Content),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	response, err := c.client.Models.GenerateContent(ctx, request.Model, contents, nil)
	if err != nil {
		return "", WithKind(KindGeneration, errors.Wrap(err, "generating content from file"))
	}
	return response.Text(), nil
}

package ocr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

const ollamaPlatePrompt = `This image is a cropped, black and white license plate.
Reply with the plate characters only, using uppercase letters A-Z and digits 0-9.
Do not add spaces, punctuation or any other text.`

// ChatAPI is the part of the Ollama client used here.
type ChatAPI interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// Ollama asks a local vision model to transcribe the plate.
type Ollama struct {
	client  ChatAPI
	model   string
	timeout time.Duration
}

// NewOllama connects to the Ollama server at baseURL.
func NewOllama(baseURL, model string, timeout time.Duration) (*Ollama, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	if model == "" {
		model = "llava"
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return NewOllamaWithClient(api.NewClient(base, http.DefaultClient), model, timeout), nil
}

func NewOllamaWithClient(client ChatAPI, model string, timeout time.Duration) *Ollama {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Ollama{client: client, model: model, timeout: timeout}
}

func (o *Ollama) Recognize(ctx context.Context, png []byte) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: ollamaPlatePrompt,
				Images:  []api.ImageData{api.ImageData(png)},
			},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0},
	}

	var content string
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}
	return content, nil
}

func (o *Ollama) Close() error { return nil }

package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yourname/healthsync/internal"
)

// TextProvider is the opaque generative-text capability the pipeline
// delegates to. One blocking call; no implicit timeout or retry here,
// callers needing resilience wrap the call.
type TextProvider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// OllamaProvider reaches an Ollama-compatible generate endpoint.
type OllamaProvider struct {
	client *resty.Client
	model  string
	logger internal.Logger
}

func NewOllamaProvider(baseURL, model string, timeout time.Duration, logger internal.Logger) *OllamaProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &OllamaProvider{client: client, model: model, logger: logger}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (p *OllamaProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	var out generateResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: p.model, Prompt: prompt}).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		p.logger.Errorf("text provider call failed: %v", err)
		return "", &internal.ProviderFailure{Stage: "invoke", Err: err}
	}
	if resp.IsError() {
		p.logger.Errorf("text provider returned %s", resp.Status())
		return "", &internal.ProviderFailure{Stage: "invoke", Err: fmt.Errorf("provider returned %s", resp.Status())}
	}
	return out.Response, nil
}

var _ TextProvider = (*OllamaProvider)(nil)

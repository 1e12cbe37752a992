// Package llm implements text generation on the OpenAI chat completion API.
package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tracker_server/core/domain"
	"tracker_server/pkg/httputil"
	"tracker_server/pkg/metrics"
	"tracker_server/pkg/resilience"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel       = "gpt-4o"
	defaultTemperature = 0.7
	defaultTimeout     = 60 * time.Second
)

// ErrEmptyCompletion is returned when the API answers without choices.
var ErrEmptyCompletion = errors.New("completion returned no choices")

type ClientConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	BaseURL     string // optional, for compatible gateways
	HTTPClient  *http.Client
}

// Generator implements out.TextGenerator.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	cb          *resilience.Breaker
}

func NewGenerator(cfg ClientConfig) *Generator {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	} else {
		config.HTTPClient = httputil.OpenAIClient()
	}

	return &Generator{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: float32(temperature),
		timeout:     timeout,
		cb:          resilience.NewBreaker(resilience.DefaultConfig("openai-api")),
	}
}

func (g *Generator) Model() string {
	return g.model
}

// Generate sends the system instruction and prompt as one chat completion.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	var content string
	start := time.Now()
	err := g.cb.Execute(func() error {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       g.model,
			Messages:    messages,
			MaxTokens:   req.MaxTokens,
			Temperature: g.temperature,
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return ErrEmptyCompletion
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	metrics.RecordUpstream("openai", time.Since(start), err)
	if err != nil {
		return "", err
	}
	return content, nil
}

// classify keeps request errors (bad key, bad prompt) from opening the breaker.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return resilience.ClientError(err)
		}
	}
	return err
}

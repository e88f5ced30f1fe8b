package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"bookr/config"
)

const requestTimeout = 30 * time.Second

// OpenAI talks to any OpenAI compatible chat completions endpoint. Every
// question is a single request, there are no retries.
type OpenAI struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	temperature  float64
	prompt       *template.Template
	httpClient   *http.Client
	log          *zap.Logger
}

// Option customizes the provider.
type Option func(*OpenAI)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *OpenAI) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewOpenAI prepares provider. API key is resolved once, header is omitted
// when there is none.
func NewOpenAI(cfg *config.AIConfig, log *zap.Logger, opts ...Option) (*OpenAI, error) {
	prompt, err := template.New("user").Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(cfg.UserTemplate)
	if err != nil {
		return nil, fmt.Errorf("unable to parse user prompt template: %w", err)
	}

	p := &OpenAI{
		endpoint:     Endpoint(cfg.BaseURL, cfg.ChatPath),
		model:        strings.TrimSpace(cfg.Model),
		apiKey:       strings.TrimSpace(cfg.ResolveAPIKey()),
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		prompt:       prompt,
		httpClient:   &http.Client{Timeout: requestTimeout},
		log:          log,
	}
	for _, opt := range opts {
		opt(p)
	}

	log.Debug("AI provider ready",
		zap.String("endpoint", p.endpoint),
		zap.String("model", p.model),
		zap.Stringer("key", config.SecretString(p.apiKey)))
	return p, nil
}

// Endpoint joins base URL and chat path with exactly one slash.
func Endpoint(baseURL, chatPath string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(chatPath, "/")
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (p *OpenAI) Answer(ctx context.Context, question, excerpt string) string {
	answer, err := p.complete(ctx, question, excerpt)
	if err != nil {
		p.log.Debug("AI request failed", zap.Error(err))
		return "AI request failed: " + err.Error()
	}
	return answer
}

func (p *OpenAI) userPrompt(question, excerpt string) (string, error) {
	var buf strings.Builder
	if err := p.prompt.Execute(&buf, struct{ Context, Question string }{Context: excerpt, Question: question}); err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}
	return buf.String(), nil
}

func (p *OpenAI) complete(ctx context.Context, question, excerpt string) (string, error) {
	user, err := p.userPrompt(question, excerpt)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(chatCompletionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: p.systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	p.log.Debug("AI response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

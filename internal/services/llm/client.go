package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"captioner/internal/services"
	"captioner/internal/textutil"
	"captioner/internal/transcript"
)

const (
	defaultBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout    = 300 * time.Second
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	audioFormat           = "wav"
)

// Config captures the runtime settings required to talk to the model.
type Config struct {
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	// RetryAttempts is the total number of attempts; zero means one.
	RetryAttempts int
}

// Client wraps an OpenAI-compatible chat completion endpoint that accepts
// audio input parts.
type Client struct {
	endpoint string
	model    string
	headers  http.Header
	creds    CredentialSource
	http     *http.Client
	retry    retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithRetryMaxAttempts overrides the attempt count from Config.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.baseDelay = baseDelay
		c.retry.maxDelay = maxDelay
	}
}

// WithSleeper replaces the real wait between attempts.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleeper = sleeper
	}
}

// NewClient constructs a client. The credential is resolved on every request
// so a key exported after startup is picked up.
func NewClient(cfg Config, creds CredentialSource, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if creds == nil {
		creds = DefaultCredentials("")
	}
	endpoint := strings.TrimSpace(cfg.BaseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if referer := strings.TrimSpace(cfg.Referer); referer != "" {
		// OpenRouter reads HTTP-Referer; other gateways read the standard header.
		headers.Set("HTTP-Referer", referer)
		headers.Set("Referer", referer)
	}
	if title := strings.TrimSpace(cfg.Title); title != "" {
		headers.Set("X-Title", title)
	}

	client := &Client{
		endpoint: endpoint,
		model:    strings.TrimSpace(cfg.Model),
		headers:  headers,
		creds:    creds,
		http:     &http.Client{Timeout: timeout},
		retry: retryPolicy{
			attempts:  max(cfg.RetryAttempts, 1),
			baseDelay: defaultRetryBaseDelay,
			maxDelay:  defaultRetryMaxDelay,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model reports the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Caption sends the audio and instructions in one request and returns the raw
// text the model produced. Interpretation of that text is left to the caller.
func (c *Client) Caption(ctx context.Context, req CaptionRequest) (string, error) {
	const op = "llm caption"
	if strings.TrimSpace(req.AudioBase64) == "" {
		return "", services.Wrap(services.ErrValidation, "generate", op, "audio payload required", nil)
	}
	key, err := c.creds.APIKey()
	if err != nil {
		return "", services.Wrap(services.ErrMissingCredential, "generate", op, "", nil)
	}
	payload := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: BuildSystemPrompt(req)},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: BuildUserPrompt(req)},
				{Type: "input_audio", InputAudio: &inputAudio{Data: req.AudioBase64, Format: audioFormat}},
			}},
		},
	}
	content, err := c.complete(ctx, key, payload, op)
	if err != nil {
		if errors.Is(err, services.ErrEmptyResponse) || ctx.Err() != nil {
			return "", err
		}
		return "", services.Wrap(services.ErrExternalTool, "generate", op, "", err)
	}
	return content, nil
}

// HealthCheck issues a fast text-only ping to verify the key and model.
func (c *Client) HealthCheck(ctx context.Context) error {
	const op = "llm health"
	key, err := c.creds.APIKey()
	if err != nil {
		return services.Wrap(services.ErrMissingCredential, "doctor", op, "", nil)
	}
	payload := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You must respond with JSON only."},
			{Role: "user", Content: `Respond with {"ok":true}`},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	content, err := c.complete(ctx, key, payload, op)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(transcript.UnwrapFence(content)), &parsed); err != nil || !parsed.OK {
		return fmt.Errorf("%s: unexpected response %s", op, textutil.Snippet(content, 160))
	}
	return nil
}

// complete posts payload under the retry policy and returns the first
// non-empty completion text.
func (c *Client) complete(ctx context.Context, key string, payload chatCompletionRequest, op string) (string, error) {
	var content string
	err := c.retry.run(ctx, func() error {
		completion, body, err := c.post(ctx, key, payload)
		if err != nil {
			return err
		}
		text, finishReason := extractCompletionPayload(completion)
		if text != "" {
			content = text
			return nil
		}
		if len(completion.Choices) == 0 {
			return fmt.Errorf("%s: %w: no choices", op, services.ErrEmptyResponse)
		}
		return &emptyContentError{
			Op:           op,
			FinishReason: finishReason,
			Refusal:      extractCompletionRefusal(completion),
			Snippet:      textutil.Snippet(string(body), 160),
		}
	})
	return content, err
}

func (c *Client) post(ctx context.Context, key string, payload chatCompletionRequest) (chatCompletionResponse, []byte, error) {
	var completion chatCompletionResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return completion, nil, fmt.Errorf("llm request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return completion, nil, fmt.Errorf("llm request: %w", err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(req)
	if err != nil {
		return completion, nil, fmt.Errorf("llm request (timeout=%s): %w", c.http.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return completion, nil, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return completion, body, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return completion, body, fmt.Errorf("llm request: decode response: %w", err)
	}
	if completion.Error != nil {
		return completion, body, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	return completion, body, nil
}

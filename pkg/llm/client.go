// Package llm is a thin client for OpenAI-compatible chat completion APIs
// with strict JSON-schema response formats.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/samvad-hq/samvad-declaration-auditor/pkg/httpclient"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System builds a system message.
func System(content string) Message { return Message{Role: "system", Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: "user", Content: content} }

// JSONSchema names a schema the response must follow.
type JSONSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Strict      bool            `json:"strict"`
	Schema      json.RawMessage `json:"schema"`
}

// ResponseFormat constrains the shape of the completion.
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// SchemaFormat builds a strict json_schema response format.
func SchemaFormat(name, description string, schema json.RawMessage) *ResponseFormat {
	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name:        name,
			Description: description,
			Strict:      true,
			Schema:      schema,
		},
	}
}

// ChatCompletionRequest is the payload sent to the chat completions endpoint.
// Temperature is a pointer so that an explicit zero is sent.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Temperature returns a pointer to t for ChatCompletionRequest.
func Temperature(t float64) *float64 { return &t }

// Choice captures a single completion alternative.
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
	Index        int     `json:"index"`
}

// ChatCompletionResponse is the subset of the API response we care about.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// ChatClient captures the ability to perform chat completions.
type ChatClient interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Client calls the chat completions API over resty.
type Client struct {
	baseURL string
	apiKey  string
	http    *resty.Client
	limiter *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL (useful for tests).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url = strings.TrimSpace(url); url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithTimeout replaces the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithRateLimit caps requests per second; zero or negative means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewClient constructs a client with sane defaults.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    httpclient.NewRestyHTTPClient(2 * time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatCompletion executes a chat completion request.
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("llm: missing API key")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("llm: rate limit wait: %w", err)
		}
	}

	var payload ChatCompletionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&payload).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("llm: request failed: %w", err)
	}
	if resp.IsError() {
		body := resp.Body()
		if len(body) > 4096 {
			body = body[:4096]
		}
		return nil, fmt.Errorf("%w %d: %s", ErrAPI, resp.StatusCode(), strings.TrimSpace(string(body)))
	}

	return &payload, nil
}

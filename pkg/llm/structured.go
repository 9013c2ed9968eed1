package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Complete runs req and returns the content of the first choice.
func Complete(ctx context.Context, client ChatClient, req ChatCompletionRequest) (string, error) {
	if client == nil {
		return "", fmt.Errorf("llm: client is nil")
	}
	resp, err := client.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Extract runs req and decodes the reply into T.
func Extract[T any](ctx context.Context, client ChatClient, req ChatCompletionRequest) (T, error) {
	var zero T
	content, err := Complete(ctx, client, req)
	if err != nil {
		return zero, err
	}
	return Decode[T](content)
}

// Decode strictly decodes content into T and validates it. Markdown code fences
// around the JSON are tolerated. Unknown fields and trailing data are rejected.
func Decode[T any](content string) (T, error) {
	var out T
	payload := stripFences(content)
	if payload == "" {
		return out, fmt.Errorf("%w: empty content", ErrDecode)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if dec.More() {
		return out, fmt.Errorf("%w: trailing data after JSON object", ErrDecode)
	}

	if reflect.Indirect(reflect.ValueOf(out)).Kind() == reflect.Struct {
		if err := validate.Struct(out); err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return out, nil
}

func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

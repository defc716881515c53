package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClassifier implements Classifier against any OpenAI-compatible
// chat completions endpoint. It makes exactly one attempt per call.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier creates a classifier client. baseURL may be empty
// for the default endpoint, or point at a compatible host.
func NewOpenAIClassifier(apiKey, baseURL, model string) *OpenAIClassifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Classify sends the request and decodes the typed payload. The payload
// is returned as-is; callers validate it before use.
func (c *OpenAIClassifier) Classify(ctx context.Context, req Request) (*RawPayload, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: renderRequest(req)},
		},
		MaxTokens:   1024,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classification request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classification response had no choices")
	}

	payload, err := decodePayload(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("decoding classification response: %w", err)
	}
	return payload, nil
}

// decodePayload extracts the JSON object from the completion content.
// Despite JSON mode some models still wrap the object in code fences or
// prose, so the outermost braces are located first.
func decodePayload(content string) (*RawPayload, error) {
	jsonStr := strings.TrimSpace(content)
	start := strings.Index(jsonStr, "{")
	end := strings.LastIndex(jsonStr, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	jsonStr = jsonStr[start : end+1]

	var payload RawPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

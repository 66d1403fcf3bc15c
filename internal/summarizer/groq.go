package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	groqClientTimeout    = 30 * time.Second
	groqMaxResponseBytes = 1 << 20 // 1MB
	groqMaxTokens        = 300
)

// Completer 抽象 LLM 对话补全
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// APIError 接口返回了非 200 或无法识别的响应
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Unexpected Groq API response (status %d): %s", e.StatusCode, e.Body)
}

// GroqClient 调用 Groq 的 OpenAI 兼容 chat/completions 接口
type GroqClient struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

func NewGroqClient(apiKey, url, model string) *GroqClient {
	return &GroqClient{
		apiKey: apiKey,
		url:    url,
		model:  model,
		client: &http.Client{Timeout: groqClientTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *GroqClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens: groqMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("groq: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("groq: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, groqMaxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("groq: read response: %w", err)
	}
	log.Printf("groq: response status %d", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil || len(out.Choices) == 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return out.Choices[0].Message.Content, nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/multidoc-ai/internal/utils"
)

const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type openRouterModel struct {
	apiKey   string
	model    string
	endpoint string
	logger   *utils.Logger
	client   *http.Client
}

type OpenRouterRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type OpenRouterResponse struct {
	Choices []Choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage keeps Content as a pointer so an absent field can be told apart from an empty reply.
type ResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

func NewOpenRouterModel(cfg OpenRouterConfig, logger *utils.Logger) Model {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &openRouterModel{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(baseURL, "/") + "/chat/completions",
		logger:   logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (m *openRouterModel) Invoke(ctx context.Context, parts []ContentPart) (*Response, error) {
	reqBody := OpenRouterRequest{
		Model: m.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: parts,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", ErrInvocation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrInvocation, err)
	}

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "MultiDoc AI")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %w", ErrInvocation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrInvocation, err)
	}

	if resp.StatusCode != http.StatusOK {
		m.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: OpenRouter API returned status %d", ErrInvocation, resp.StatusCode)
	}

	var openRouterResp OpenRouterResponse
	if err := json.Unmarshal(body, &openRouterResp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %w", ErrInvocation, err)
	}

	if openRouterResp.Error != nil {
		return nil, fmt.Errorf("%w: OpenRouter API error: %s", ErrInvocation, openRouterResp.Error.Message)
	}

	if len(openRouterResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrInvocation)
	}

	content := openRouterResp.Choices[0].Message.Content
	if content == nil {
		return nil, fmt.Errorf("%w: response message has no content", ErrInvocation)
	}

	return &Response{Content: *content}, nil
}

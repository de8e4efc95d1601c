package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shenikar/safety_agent_system/internal/config"
	"github.com/shenikar/safety_agent_system/internal/tools"
	"github.com/sirupsen/logrus"
)

// ErrDecisionUnavailable сигнализирует, что сервис принятия решений
// недоступен или вернул непригодный ответ.
var ErrDecisionUnavailable = errors.New("decision service unavailable")

// OpenRouterClient — реализация DecisionService поверх OpenRouter
// (формат chat completions с вызовом инструментов).
type OpenRouterClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
	cfg        *config.Config
}

// NewOpenRouterClient создает новый OpenRouterClient
func NewOpenRouterClient(cfg *config.Config, logger *logrus.Logger) *OpenRouterClient {
	return &OpenRouterClient{
		httpClient: &http.Client{
			Timeout: cfg.DecisionTimeout,
		},
		logger: logger,
		cfg:    cfg,
	}
}

// chatMessage — одно сообщение диалога в проводном формате chat completions.
type chatMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name string `json:"name"`
	// Аргументы передаются строкой с JSON, как того требует формат.
	Arguments string `json:"arguments"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []tools.Def   `json:"tools,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []chatToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Decide выполняет один раунд обращения к OpenRouter.
// Если в запросе есть PriorCalls, история дополняется сообщением ассистента
// с этими вызовами и tool-сообщениями с их результатами.
func (c *OpenRouterClient) Decide(ctx context.Context, req DecisionRequest) (*Decision, error) {
	messages, err := buildMessages(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter: failed to build messages: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.OpenRouterModel,
		Messages:    messages,
		Tools:       req.Tools,
		MaxTokens:   c.cfg.DecisionMaxTokens,
		Temperature: c.cfg.DecisionTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openrouter: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenRouterURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
	if c.cfg.OpenRouterReferer != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.OpenRouterReferer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter: request failed: %w: %w", ErrDecisionUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openrouter: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(raw),
		}).Error("OpenRouter returned non-2xx status")
		return nil, fmt.Errorf("openrouter: status %d: %w", resp.StatusCode, ErrDecisionUnavailable)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("openrouter: failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openrouter: %s: %w", parsed.Error.Message, ErrDecisionUnavailable)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openrouter: empty choices: %w", ErrDecisionUnavailable)
	}

	msg := parsed.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return &Decision{Content: msg.Content}, nil
	}

	calls := make([]ToolCallRequest, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		calls = append(calls, ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return &Decision{Content: msg.Content, ToolCalls: calls}, nil
}

func buildMessages(req DecisionRequest) ([]chatMessage, error) {
	messages := []chatMessage{
		{Role: "system", Content: strPtr(req.SystemPrompt)},
		{Role: "user", Content: strPtr(req.UserQuery)},
	}

	if len(req.PriorCalls) == 0 {
		return messages, nil
	}

	// Второй раунд: вызовы первого раунда и их результаты возвращаются модели.
	assistantCalls := make([]chatToolCall, 0, len(req.PriorCalls))
	for _, call := range req.PriorCalls {
		assistantCalls = append(assistantCalls, chatToolCall{
			ID:   call.ID,
			Type: "function",
			Function: chatFunction{
				Name:      call.Name,
				Arguments: string(call.Arguments),
			},
		})
	}
	messages = append(messages, chatMessage{Role: "assistant", ToolCalls: assistantCalls})

	for _, res := range req.PriorResults {
		var content string
		if res.Failed() {
			content = fmt.Sprintf("Error: %s", res.Error)
		} else {
			payload, err := json.Marshal(res.Result)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool result for %q: %w", res.Call.Name, err)
			}
			content = string(payload)
		}
		messages = append(messages, chatMessage{
			Role:       "tool",
			Content:    strPtr(content),
			ToolCallID: res.Call.ID,
		})
	}
	return messages, nil
}

func strPtr(s string) *string { return &s }

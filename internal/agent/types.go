package agent

import (
	"context"
	"encoding/json"

	"github.com/shenikar/safety_agent_system/internal/tools"
)

//go:generate mockgen -source=types.go -destination=mocks/mock_decision.go -package=mocks

// ToolCallRequest — запрошенный сервисом принятия решений вызов инструмента.
type ToolCallRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Decision — ответ сервиса принятия решений: либо готовый текстовый ответ,
// либо непустой упорядоченный список вызовов инструментов.
type Decision struct {
	Content   string
	ToolCalls []ToolCallRequest
}

// DecisionRequest — вход сервиса принятия решений.
// PriorCalls и PriorResults заполняются только во втором раунде,
// когда результаты инструментов отправляются обратно как контекст.
type DecisionRequest struct {
	SystemPrompt string
	UserQuery    string
	Tools        []tools.Def
	PriorCalls   []ToolCallRequest
	PriorResults []ToolCallResult
}

// ToolCallResult связывает запрошенный вызов либо с результатом, либо с ошибкой.
// Никогда с обоими сразу.
type ToolCallResult struct {
	Call   ToolCallRequest `json:"call"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Failed сообщает, завершился ли вызов ошибкой.
func (r ToolCallResult) Failed() bool { return r.Error != "" }

// ToolCallSummary — краткая сводка по одному вызову для ответа API.
type ToolCallSummary struct {
	Tool   string `json:"tool"`
	Status string `json:"status"`
	Result string `json:"result"`
}

// DecisionService — внешний LLM-сервис, выбирающий инструменты и
// синтезирующий ответ. Ядро трактует его как непрозрачную функцию.
type DecisionService interface {
	Decide(ctx context.Context, req DecisionRequest) (*Decision, error)
}

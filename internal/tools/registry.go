package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Def — определение инструмента в формате function calling (схема OpenAI).
// В таком виде определения передаются сервису принятия решений.
type Def struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function — имя, описание и схема параметров инструмента.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters — JSON Schema параметров инструмента.
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]ParamDef `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// ParamDef — описание одного параметра.
type ParamDef struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Tool — именованная асинхронная операция, доступная сервису принятия решений.
// Execute не хранит состояние между вызовами: весь вход — в args и ctx.
type Tool struct {
	Name        string
	Description string
	Parameters  Parameters
	Execute     func(ctx context.Context, args json.RawMessage) (any, error)
}

// ErrUnknownTool возвращается при попытке вызвать незарегистрированный инструмент.
var ErrUnknownTool = errors.New("unknown tool")

// ArgumentError — аргументы вызова не соответствуют контракту инструмента.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ExecutionError — инструмент был вызван корректно, но завершился ошибкой.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %q execution failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Registry сопоставляет имя инструмента его контракту и исполнителю.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry создает пустой реестр инструментов.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register добавляет инструмент в реестр. Повторная регистрация имени — ошибка.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("registry: tool name must not be empty")
	}
	if t.Execute == nil {
		return fmt.Errorf("registry: tool %q has no executor", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("registry: tool %q already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Invoke выполняет инструмент по имени с сырыми JSON-аргументами.
// Ошибки различимы через errors.Is/As: ErrUnknownTool, ArgumentError, ExecutionError.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	if len(args) > 0 && !json.Valid(args) {
		return nil, &ArgumentError{Tool: name, Err: fmt.Errorf("arguments are not valid JSON")}
	}

	result, err := t.Execute(ctx, args)
	if err != nil {
		var argErr *ArgumentError
		if errors.As(err, &argErr) {
			return nil, err
		}
		return nil, &ExecutionError{Tool: name, Err: err}
	}
	return result, nil
}

// Defs возвращает определения всех инструментов в порядке регистрации.
func (r *Registry) Defs() []Def {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Def, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, Def{
			Type: "function",
			Function: Function{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return defs
}

// decodeArgs разбирает аргументы вызова в целевую структуру инструмента.
func decodeArgs(name string, args json.RawMessage, dst any) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return &ArgumentError{Tool: name, Err: err}
	}
	return nil
}

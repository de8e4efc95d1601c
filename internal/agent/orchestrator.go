package agent

import (
	"context"
	"fmt"

	"github.com/shenikar/safety_agent_system/internal/tools"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// State — фаза прогона оркестратора.
type State string

const (
	StateAwaitingDecision      State = "awaiting_decision"
	StateExecutingTools        State = "executing_tools"
	StateAwaitingFinalDecision State = "awaiting_final_decision"
	StateDone                  State = "done"
	StateFailed                State = "failed"
)

// PlaceholderAnswer возвращается, когда инструменты отработали,
// но финальный раунд синтеза не удался.
const PlaceholderAnswer = "Search completed but no summary available."

// maxParallelTools ограничивает число одновременно работающих инструментов.
const maxParallelTools = 4

// RunResult — итог одного прогона оркестратора.
type RunResult struct {
	Answer    string
	Results   []ToolCallResult
	Summaries []ToolCallSummary
	State     State
}

// Orchestrator прогоняет запрос через два раунда сервиса принятия решений:
// выбор инструментов, их параллельное выполнение и синтез финального ответа.
// Ошибка отдельного инструмента не прерывает прогон — она записывается
// в результат вызова и отправляется сервису вместе с остальными.
type Orchestrator struct {
	decision DecisionService
	registry *tools.Registry
	logger   *logrus.Logger
}

// NewOrchestrator создает новый Orchestrator
func NewOrchestrator(decision DecisionService, registry *tools.Registry, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		decision: decision,
		registry: registry,
		logger:   logger,
	}
}

// Run выполняет полный цикл: решение -> инструменты -> финальное решение.
// Failed возвращается только при отказе сервиса решений в первом раунде
// или отмене контекста; отказ финального раунда дает PlaceholderAnswer.
func (o *Orchestrator) Run(ctx context.Context, systemPrompt, query string) (*RunResult, error) {
	log := o.logger.WithFields(logrus.Fields{
		"component": "orchestrator",
		"query":     query,
	})

	log.WithField("state", StateAwaitingDecision).Debug("Requesting initial decision")
	first, err := o.decision.Decide(ctx, DecisionRequest{
		SystemPrompt: systemPrompt,
		UserQuery:    query,
		Tools:        o.registry.Defs(),
	})
	if err != nil {
		return &RunResult{State: StateFailed}, fmt.Errorf("orchestrator: initial decision failed: %w", err)
	}

	if len(first.ToolCalls) == 0 {
		// Сервис ответил сразу, без инструментов.
		return &RunResult{Answer: first.Content, State: StateDone}, nil
	}

	log.WithFields(logrus.Fields{
		"state":      StateExecutingTools,
		"tool_calls": len(first.ToolCalls),
	}).Debug("Executing requested tools")
	results := o.executeCalls(ctx, first.ToolCalls)
	if err := ctx.Err(); err != nil {
		return &RunResult{Results: results, State: StateFailed}, fmt.Errorf("orchestrator: cancelled during tool execution: %w", err)
	}

	log.WithField("state", StateAwaitingFinalDecision).Debug("Requesting final decision")
	answer := PlaceholderAnswer
	final, err := o.decision.Decide(ctx, DecisionRequest{
		SystemPrompt: systemPrompt,
		UserQuery:    query,
		Tools:        o.registry.Defs(),
		PriorCalls:   first.ToolCalls,
		PriorResults: results,
	})
	switch {
	case err != nil && ctx.Err() != nil:
		return &RunResult{Results: results, State: StateFailed}, fmt.Errorf("orchestrator: cancelled awaiting final decision: %w", ctx.Err())
	case err != nil:
		log.WithError(err).Warn("Final decision round failed, falling back to placeholder answer")
	case final.Content != "":
		answer = final.Content
	}

	return &RunResult{
		Answer:    answer,
		Results:   results,
		Summaries: Summarize(results),
		State:     StateDone,
	}, nil
}

// executeCalls выполняет вызовы параллельно, записывая результаты
// в порядке запросов независимо от порядка завершения.
func (o *Orchestrator) executeCalls(ctx context.Context, calls []ToolCallRequest) []ToolCallResult {
	results := make([]ToolCallResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTools)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			out, err := o.registry.Invoke(gctx, call.Name, call.Arguments)
			if err != nil {
				o.logger.WithFields(logrus.Fields{
					"component": "orchestrator",
					"tool":      call.Name,
				}).WithError(err).Warn("Tool call failed")
				results[i] = ToolCallResult{Call: call, Error: err.Error()}
				return nil
			}
			results[i] = ToolCallResult{Call: call, Result: out}
			return nil
		})
	}
	// Ошибки инструментов не всплывают: каждая уже записана в свой слот.
	_ = g.Wait()
	return results
}

// Summarize переводит результаты вызовов в краткие сводки для ответа API.
func Summarize(results []ToolCallResult) []ToolCallSummary {
	summaries := make([]ToolCallSummary, 0, len(results))
	for _, res := range results {
		s := ToolCallSummary{Tool: res.Call.Name, Status: "success", Result: "Tool executed successfully"}
		if res.Failed() {
			s.Status = "error"
			s.Result = res.Error
		}
		summaries = append(summaries, s)
	}
	return summaries
}

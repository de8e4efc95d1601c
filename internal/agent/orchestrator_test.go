package agent_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shenikar/safety_agent_system/internal/agent"
	"github.com/shenikar/safety_agent_system/internal/agent/mocks"
	"github.com/shenikar/safety_agent_system/internal/tools"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestOrchestrator — вспомогательная функция для создания оркестратора с моками.
func newTestOrchestrator(t *testing.T) (*agent.Orchestrator, *mocks.MockDecisionService, *tools.Registry) {
	ctrl := gomock.NewController(t)
	decisionMock := mocks.NewMockDecisionService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tools.Tool{
		Name:        "upper",
		Description: "uppercases input",
		Parameters:  tools.Parameters{Type: "object"},
		Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			return "OK:" + string(args), nil
		},
	}))
	require.NoError(t, registry.Register(tools.Tool{
		Name:        "broken",
		Description: "always fails",
		Parameters:  tools.Parameters{Type: "object"},
		Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			return nil, fmt.Errorf("backend unavailable")
		},
	}))

	return agent.NewOrchestrator(decisionMock, registry, logger), decisionMock, registry
}

func TestOrchestrator_DirectAnswer(t *testing.T) {
	// Подготовка
	orch, decisionMock, _ := newTestOrchestrator(t)
	ctx := context.Background()

	// Ожидания: сервис отвечает сразу, без вызовов инструментов.
	decisionMock.EXPECT().
		Decide(ctx, gomock.Any()).
		Return(&agent.Decision{Content: "All quiet in the area."}, nil).
		Times(1)

	// Действие
	res, err := orch.Run(ctx, "system", "is it safe?")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, agent.StateDone, res.State)
	assert.Equal(t, "All quiet in the area.", res.Answer)
	assert.Empty(t, res.Results)
}

func TestOrchestrator_ToolRound_ResultsInRequestOrder(t *testing.T) {
	// Подготовка
	orch, decisionMock, _ := newTestOrchestrator(t)
	ctx := context.Background()
	calls := []agent.ToolCallRequest{
		{ID: "call-1", Name: "upper", Arguments: json.RawMessage(`{"q":"a"}`)},
		{ID: "call-2", Name: "broken", Arguments: json.RawMessage(`{}`)},
		{ID: "call-3", Name: "upper", Arguments: json.RawMessage(`{"q":"b"}`)},
	}

	// Ожидания
	// 1. Первый раунд запрашивает три инструмента
	decisionMock.EXPECT().
		Decide(ctx, gomock.Any()).
		Return(&agent.Decision{ToolCalls: calls}, nil).
		Times(1)

	// 2. Второй раунд получает вызовы и результаты в исходном порядке
	decisionMock.EXPECT().
		Decide(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, req agent.DecisionRequest) (*agent.Decision, error) {
			require.Len(t, req.PriorCalls, 3)
			require.Len(t, req.PriorResults, 3)
			assert.Equal(t, "call-1", req.PriorResults[0].Call.ID)
			assert.Equal(t, "call-2", req.PriorResults[1].Call.ID)
			assert.Equal(t, "call-3", req.PriorResults[2].Call.ID)
			return &agent.Decision{Content: "Two of three tools succeeded."}, nil
		}).Times(1)

	// Действие
	res, err := orch.Run(ctx, "system", "what happened in sandton?")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, agent.StateDone, res.State)
	assert.Equal(t, "Two of three tools succeeded.", res.Answer)

	require.Len(t, res.Results, 3)
	assert.False(t, res.Results[0].Failed())
	assert.True(t, res.Results[1].Failed())
	assert.False(t, res.Results[2].Failed())
	// У упавшего вызова нет результата, у успешных — нет ошибки.
	assert.Nil(t, res.Results[1].Result)
	assert.Empty(t, res.Results[0].Error)

	require.Len(t, res.Summaries, 3)
	assert.Equal(t, "success", res.Summaries[0].Status)
	assert.Equal(t, "error", res.Summaries[1].Status)
	assert.Equal(t, "broken", res.Summaries[1].Tool)
}

func TestOrchestrator_UnknownToolRecordedAsError(t *testing.T) {
	// Подготовка
	orch, decisionMock, _ := newTestOrchestrator(t)
	ctx := context.Background()

	// Ожидания
	decisionMock.EXPECT().
		Decide(ctx, gomock.Any()).
		Return(&agent.Decision{ToolCalls: []agent.ToolCallRequest{
			{ID: "call-1", Name: "missing", Arguments: json.RawMessage(`{}`)},
		}}, nil).
		Times(1)
	decisionMock.EXPECT().
		Decide(ctx, gomock.Any()).
		Return(&agent.Decision{Content: "done"}, nil).
		Times(1)

	// Действие
	res, err := orch.Run(ctx, "system", "query")

	// Проверки
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.True(t, res.Results[0].Failed())
	assert.Contains(t, res.Results[0].Error, "unknown tool")
}

func TestOrchestrator_InitialDecisionFails(t *testing.T) {
	// Подготовка
	orch, decisionMock, _ := newTestOrchestrator(t)
	ctx := context.Background()

	// Ожидания
	decisionMock.EXPECT().
		Decide(ctx, gomock.Any()).
		Return(nil, fmt.Errorf("timeout")).
		Times(1)

	// Действие
	res, err := orch.Run(ctx, "system", "query")

	// Проверки
	require.Error(t, err)
	assert.Equal(t, agent.StateFailed, res.State)
	assert.ErrorContains(t, err, "initial decision failed")
}

func TestOrchestrator_FinalRoundFailureFallsBackToPlaceholder(t *testing.T) {
	// Подготовка
	orch, decisionMock, _ := newTestOrchestrator(t)
	ctx := context.Background()

	// Ожидания
	decisionMock.EXPECT().
		Decide(ctx, gomock.Any()).
		Return(&agent.Decision{ToolCalls: []agent.ToolCallRequest{
			{ID: "call-1", Name: "upper", Arguments: json.RawMessage(`{}`)},
		}}, nil).
		Times(1)
	decisionMock.EXPECT().
		Decide(ctx, gomock.Any()).
		Return(nil, fmt.Errorf("rate limited")).
		Times(1)

	// Действие
	res, err := orch.Run(ctx, "system", "query")

	// Проверки: результаты инструментов не теряются.
	require.NoError(t, err)
	assert.Equal(t, agent.StateDone, res.State)
	assert.Equal(t, agent.PlaceholderAnswer, res.Answer)
	require.Len(t, res.Results, 1)
	assert.False(t, res.Results[0].Failed())
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	// Подготовка
	orch, decisionMock, _ := newTestOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())

	// Ожидания: контекст отменяется во время выполнения инструментов.
	decisionMock.EXPECT().
		Decide(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req agent.DecisionRequest) (*agent.Decision, error) {
			cancel()
			return &agent.Decision{ToolCalls: []agent.ToolCallRequest{
				{ID: "call-1", Name: "upper", Arguments: json.RawMessage(`{}`)},
			}}, nil
		}).Times(1)

	// Действие
	res, err := orch.Run(ctx, "system", "query")

	// Проверки
	require.Error(t, err)
	assert.Equal(t, agent.StateFailed, res.State)
}

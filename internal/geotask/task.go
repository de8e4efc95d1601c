package geotask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/safety_agent_system/internal/tools"
)

const (
	taskQueueKey    = "geo_tasks"
	statusKeyPrefix = "geo_task_status:"
)

// ErrStatusNotFound возвращается, когда статус задачи не найден или истек.
var ErrStatusNotFound = errors.New("geo task status not found")

// TaskState — фаза жизненного цикла гео-задачи.
type TaskState string

const (
	TaskQueued     TaskState = "queued"
	TaskProcessing TaskState = "processing"
	TaskDone       TaskState = "done"
	TaskFailed     TaskState = "failed"
)

// Task — отложенная гео-обработка результатов поиска.
// Ставится в очередь обработчиком поиска и исполняется воркером.
type Task struct {
	ID            string                   `json:"id"`
	Query         string                   `json:"query"`
	SearchResults []tools.SearchResultItem `json:"search_results"`
	EnqueuedAt    time.Time                `json:"enqueued_at"`
}

// Status — наблюдаемое состояние гео-задачи.
// В отличие от fire-and-forget вызова, завершение и ошибки задачи
// видны тому, кто ее поставил.
type Status struct {
	TaskID             string    `json:"task_id"`
	State              TaskState `json:"state"`
	IncidentsGenerated int       `json:"incidents_generated,omitempty"`
	Filename           string    `json:"filename,omitempty"`
	Error              string    `json:"error,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TaskPublisher — интерфейс для постановки гео-задач в очередь.
type TaskPublisher interface {
	Publish(ctx context.Context, task Task) error
}

// StatusTracker читает и пишет статусы задач.
type StatusTracker interface {
	SetStatus(ctx context.Context, status Status) error
	GetStatus(ctx context.Context, taskID string) (*Status, error)
}

// RedisTaskQueue — реализация очереди и трекера статусов поверх Redis.
type RedisTaskQueue struct {
	redisClient *redis.Client
	statusTTL   time.Duration
}

// NewRedisTaskQueue создает новый RedisTaskQueue
func NewRedisTaskQueue(client *redis.Client, statusTTL time.Duration) *RedisTaskQueue {
	return &RedisTaskQueue{
		redisClient: client,
		statusTTL:   statusTTL,
	}
}

// Publish ставит задачу в очередь и помечает ее как queued.
func (q *RedisTaskQueue) Publish(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal geo task: %w", err)
	}

	if err := q.redisClient.LPush(ctx, taskQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish geo task to Redis: %w", err)
	}
	return q.SetStatus(ctx, Status{
		TaskID:    task.ID,
		State:     TaskQueued,
		UpdatedAt: time.Now().UTC(),
	})
}

// SetStatus записывает статус задачи с TTL.
func (q *RedisTaskQueue) SetStatus(ctx context.Context, status Status) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal geo task status: %w", err)
	}
	if err := q.redisClient.Set(ctx, statusKeyPrefix+status.TaskID, payload, q.statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to store geo task status: %w", err)
	}
	return nil
}

// GetStatus возвращает статус задачи по идентификатору.
func (q *RedisTaskQueue) GetStatus(ctx context.Context, taskID string) (*Status, error) {
	payload, err := q.redisClient.Get(ctx, statusKeyPrefix+taskID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStatusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read geo task status: %w", err)
	}

	var status Status
	if err := json.Unmarshal([]byte(payload), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal geo task status: %w", err)
	}
	return &status, nil
}

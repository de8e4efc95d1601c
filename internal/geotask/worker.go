package geotask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/safety_agent_system/internal/agent"
	"github.com/shenikar/safety_agent_system/internal/assembler"
	"github.com/shenikar/safety_agent_system/internal/config"
	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/shenikar/safety_agent_system/internal/store"
	"github.com/shenikar/safety_agent_system/internal/tools"
	"github.com/sirupsen/logrus"
)

// geoSystemPrompt управляет гео-раундом: сервис решений обязан получать
// координаты и структуру инцидентов через инструменты, а не выдумывать их.
const geoSystemPrompt = `You are a GeoAgent that converts safety news into structured, geolocated data. Your tasks:

1. Use the geocode_location tool to get coordinates for locations mentioned
2. Use the extract_incident_data tool to analyze news content
3. Create structured incident objects based on the tool results

IMPORTANT: You MUST use the tools to get accurate data. Do not generate coordinates or incident data without using the tools first.`

// Worker разбирает очередь гео-задач: прогоняет оркестратор с гео-инструментами,
// собирает инциденты, дописывает их в хранилище и архивирует пакет.
// Каждая смена фазы записывается в трекер статусов, так что постановщик
// задачи всегда может узнать ее судьбу.
type Worker struct {
	redisClient  *redis.Client
	logger       *logrus.Logger
	cfg          *config.Config
	orchestrator *agent.Orchestrator
	assembler    *assembler.Assembler
	incidents    store.IncidentStore
	archive      *store.FileArchive
	tracker      StatusTracker
}

// NewWorker создает новый Worker
func NewWorker(
	redisClient *redis.Client,
	logger *logrus.Logger,
	cfg *config.Config,
	orchestrator *agent.Orchestrator,
	asm *assembler.Assembler,
	incidents store.IncidentStore,
	archive *store.FileArchive,
	tracker StatusTracker,
) *Worker {
	return &Worker{
		redisClient:  redisClient,
		logger:       logger,
		cfg:          cfg,
		orchestrator: orchestrator,
		assembler:    asm,
		incidents:    incidents,
		archive:      archive,
		tracker:      tracker,
	}
}

// Start запускает горутину для обработки очереди гео-задач
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting geo task worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping geo task worker.")
				return
			default:
				// BRPop - блокирующее извлечение из правой части очереди,
				// 0 означает бесконечное ожидание
				result, err := w.redisClient.BRPop(ctx, 0, taskQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue // Контекст отменен, но не ошибка Redis
					}
					w.logger.WithError(err).Error("Failed to pop geo task from Redis")
					time.Sleep(w.cfg.GeoTaskRetryDelay) // Ждем перед повторной попыткой
					continue
				}

				// result[0] - ключ, result[1] - значение
				var task Task
				if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal geo task from Redis")
					continue
				}

				w.processTask(ctx, task)
			}
		}
	}()
}

func (w *Worker) processTask(ctx context.Context, task Task) {
	log := w.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"query":   task.Query,
	})
	log.Info("Processing geo task...")

	w.setStatus(ctx, Status{TaskID: task.ID, State: TaskProcessing})

	incidents := w.runPipeline(ctx, task, log)

	for _, inc := range incidents {
		if err := w.incidents.Append(ctx, inc); err != nil {
			log.WithError(err).Error("Failed to append incident to store")
			w.setStatus(ctx, Status{TaskID: task.ID, State: TaskFailed, Error: err.Error()})
			return
		}
	}

	filename, err := w.archive.Save(incidents)
	if err != nil {
		log.WithError(err).Error("Failed to archive incidents")
		w.setStatus(ctx, Status{TaskID: task.ID, State: TaskFailed, Error: err.Error()})
		return
	}

	log.WithFields(logrus.Fields{
		"incidents": len(incidents),
		"filename":  filename,
	}).Info("Geo task completed")
	w.setStatus(ctx, Status{
		TaskID:             task.ID,
		State:              TaskDone,
		IncidentsGenerated: len(incidents),
		Filename:           filename,
	})
}

// runPipeline прогоняет гео-раунд и собирает инциденты из выходов инструментов.
// Отказ сервиса решений не роняет задачу: ассемблер соберет запасной инцидент.
func (w *Worker) runPipeline(ctx context.Context, task Task, log *logrus.Entry) []models.Incident {
	run, err := w.orchestrator.Run(ctx, geoSystemPrompt, geoUserPrompt(task))
	if err != nil {
		log.WithError(err).Warn("Geo orchestration failed, assembling fallback incident")
		return w.assembler.Assemble(task.Query, nil, nil)
	}

	geo, extractions := collectToolOutput(run.Results)
	return w.assembler.Assemble(task.Query, geo, extractions)
}

// collectToolOutput разбирает результаты вызовов по типам инструментов.
// Последний успешный геокод выигрывает; извлечения накапливаются в порядке вызовов.
func collectToolOutput(results []agent.ToolCallResult) (*tools.GeocodeResult, []tools.ExtractionResult) {
	var geo *tools.GeocodeResult
	extractions := make([]tools.ExtractionResult, 0, len(results))
	for _, res := range results {
		if res.Failed() {
			continue
		}
		switch v := res.Result.(type) {
		case tools.GeocodeResult:
			geo = &v
		case tools.ExtractionResult:
			extractions = append(extractions, v)
		}
	}
	return geo, extractions
}

func geoUserPrompt(task Task) string {
	payload, err := json.MarshalIndent(task.SearchResults, "", "  ")
	if err != nil {
		payload = []byte("[]")
	}
	return fmt.Sprintf(`Process this safety query and search results into geolocated incident objects:

Query: %q
Search Results: %s

Use the geocode_location tool for the location in the query, and extract_incident_data tool for each search result to create structured incident data.`, task.Query, payload)
}

func (w *Worker) setStatus(ctx context.Context, status Status) {
	status.UpdatedAt = time.Now().UTC()
	if err := w.tracker.SetStatus(ctx, status); err != nil {
		w.logger.WithError(err).WithField("task_id", status.TaskID).Error("Failed to update geo task status")
	}
}

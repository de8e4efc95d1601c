package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/safety_agent_system/internal/agent"
	"github.com/shenikar/safety_agent_system/internal/config"
	"github.com/shenikar/safety_agent_system/internal/evaluation"
	"github.com/shenikar/safety_agent_system/internal/geotask"
	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/shenikar/safety_agent_system/internal/store"
	"github.com/shenikar/safety_agent_system/internal/tools"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=safety.go -destination=mocks/mock_safety.go -package=mocks

// searchSystemPrompt управляет поисковым раундом сервиса решений.
const searchSystemPrompt = `You are a SearchAgent that helps users find crime and safety information. Your task is to:

1. Use the search_local_crime_data tool to find recent safety incidents for the user's query
2. Analyze the search results to provide a helpful summary with specific incident counts and types
3. Return both the summary and the raw search results

IMPORTANT: You MUST use the search_local_crime_data tool to get current information from our local crime database.`

// Orchestrator определяет контракт прогона запроса через сервис решений и инструменты
type Orchestrator interface {
	Run(ctx context.Context, systemPrompt, query string) (*agent.RunResult, error)
}

// GeoTaskQueue определяет контракт очереди фоновых гео-задач
type GeoTaskQueue interface {
	Publish(ctx context.Context, task geotask.Task) error
	GetStatus(ctx context.Context, taskID string) (*geotask.Status, error)
}

// RiskAssessor определяет контракт расчета риска по зоне
type RiskAssessor interface {
	AssessArea(ctx context.Context, area models.Point, radiusKm float64, window time.Duration) (*models.RiskAssessment, error)
}

// Archive определяет контракт доступа к архивным пакетам инцидентов
type Archive interface {
	Load(filename string) ([]byte, error)
	Latest() (string, error)
}

// SearchResponse — итог поискового запроса: ответ сервиса решений,
// найденные инциденты и идентификатор фоновой гео-задачи.
type SearchResponse struct {
	Answer         string
	Incidents      []models.Incident
	ToolExecutions []agent.ToolCallSummary
	GeoTaskID      string
}

// Stats — сводка по содержимому хранилища инцидентов.
type Stats struct {
	TotalIncidents  int
	ByType          map[models.CrimeType]int
	AverageSeverity float64
	Last24h         int
}

// RiskReport — оценка риска, привязанная к запрошенной локации.
type RiskReport struct {
	Location    string
	Coordinates models.Point
	RadiusKm    float64
	WindowHours int
	Assessment  models.RiskAssessment
}

// SafetyService определяет контракт для бизнес-логики агента безопасности
type SafetyService interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
	ListIncidents(ctx context.Context, query string) ([]models.Incident, error)
	Stats(ctx context.Context) (*Stats, error)
	AssessRisk(ctx context.Context, location string, radiusKm float64, windowHours int) (*RiskReport, error)
	Evaluate(ctx context.Context, filename string) (*evaluation.Result, error)
	TaskStatus(ctx context.Context, taskID string) (*geotask.Status, error)
}

type safetyService struct {
	orchestrator Orchestrator
	incidents    store.IncidentStore
	risk         RiskAssessor
	evaluator    *evaluation.Evaluator
	archive      Archive
	queue        GeoTaskQueue
	logger       *logrus.Logger
	cfg          *config.Config
}

// NewSafetyService создает новый SafetyService
func NewSafetyService(
	orchestrator Orchestrator,
	incidents store.IncidentStore,
	risk RiskAssessor,
	evaluator *evaluation.Evaluator,
	archive Archive,
	queue GeoTaskQueue,
	logger *logrus.Logger,
	cfg *config.Config,
) SafetyService {
	return &safetyService{
		orchestrator: orchestrator,
		incidents:    incidents,
		risk:         risk,
		evaluator:    evaluator,
		archive:      archive,
		queue:        queue,
		logger:       logger,
		cfg:          cfg,
	}
}

// Search выполняет поисковый раунд и ставит фоновую гео-задачу.
// Отказ постановки задачи не роняет поиск: ответ возвращается без GeoTaskID.
func (s *safetyService) Search(ctx context.Context, query string) (*SearchResponse, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "safety",
		"method":  "Search",
		"query":   query,
	})
	log.Info("Starting safety search")

	run, err := s.orchestrator.Run(ctx, searchSystemPrompt, query)
	if err != nil {
		log.WithError(err).Error("Search orchestration failed")
		return nil, fmt.Errorf("service: search failed: %w", err)
	}

	incidents, searchResults := collectSearchResults(run.Results)

	resp := &SearchResponse{
		Answer:         run.Answer,
		Incidents:      incidents,
		ToolExecutions: run.Summaries,
	}

	task := geotask.Task{
		ID:            uuid.NewString(),
		Query:         query,
		SearchResults: searchResults,
		EnqueuedAt:    time.Now().UTC(),
	}
	if err := s.queue.Publish(ctx, task); err != nil {
		// Гео-обработка — производная от поиска, ее недоступность не фатальна.
		log.WithError(err).Error("Failed to enqueue geo task")
	} else {
		resp.GeoTaskID = task.ID
	}

	log.WithFields(logrus.Fields{
		"incidents":   len(incidents),
		"geo_task_id": resp.GeoTaskID,
	}).Info("Safety search completed")
	return resp, nil
}

// collectSearchResults выбирает выдачу поискового инструмента из результатов прогона.
func collectSearchResults(results []agent.ToolCallResult) ([]models.Incident, []tools.SearchResultItem) {
	incidents := make([]models.Incident, 0)
	items := make([]tools.SearchResultItem, 0)
	for _, res := range results {
		if res.Failed() {
			continue
		}
		if sr, ok := res.Result.(*tools.SearchResult); ok {
			incidents = append(incidents, sr.FoundIncidents...)
			items = append(items, sr.Results...)
		}
	}
	return incidents, items
}

// ListIncidents возвращает инциденты, при непустом query — с текстовым фильтром.
func (s *safetyService) ListIncidents(ctx context.Context, query string) ([]models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "safety",
		"method":  "ListIncidents",
		"query":   query,
	})

	var (
		incidents []models.Incident
		err       error
	)
	if query == "" {
		incidents, err = s.incidents.All(ctx)
	} else {
		incidents, err = s.incidents.Matching(ctx, query)
	}
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from store")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// Stats собирает сводку по хранилищу: всего, по категориям, средняя
// серьезность и число инцидентов за последние сутки.
func (s *safetyService) Stats(ctx context.Context) (*Stats, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "safety",
		"method":  "Stats",
	})

	all, err := s.incidents.All(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load incidents for stats")
		return nil, fmt.Errorf("service: could not compute stats: %w", err)
	}
	recent, err := s.incidents.Since(ctx, 24*time.Hour)
	if err != nil {
		log.WithError(err).Error("Failed to load recent incidents for stats")
		return nil, fmt.Errorf("service: could not compute stats: %w", err)
	}

	stats := &Stats{
		TotalIncidents: len(all),
		ByType:         make(map[models.CrimeType]int),
		Last24h:        len(recent),
	}
	severitySum := 0
	for _, inc := range all {
		stats.ByType[inc.Type]++
		severitySum += inc.Severity
	}
	if len(all) > 0 {
		stats.AverageSeverity = float64(severitySum) / float64(len(all))
	}
	return stats, nil
}

// AssessRisk геокодирует локацию и считает оценку риска вокруг нее.
func (s *safetyService) AssessRisk(ctx context.Context, location string, radiusKm float64, windowHours int) (*RiskReport, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.DefaultRadiusKm
	}
	if windowHours <= 0 {
		windowHours = s.cfg.RiskWindowHours
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":      "safety",
		"method":       "AssessRisk",
		"location":     location,
		"radius_km":    radiusKm,
		"window_hours": windowHours,
	})
	log.Info("Assessing area risk")

	geo := tools.GeocodeLocation(location)
	assessment, err := s.risk.AssessArea(ctx, geo.Coordinates, radiusKm, time.Duration(windowHours)*time.Hour)
	if err != nil {
		log.WithError(err).Error("Risk assessment failed")
		return nil, fmt.Errorf("service: could not assess risk: %w", err)
	}

	log.WithField("overall_score", assessment.OverallRiskScore).Info("Risk assessment completed")
	return &RiskReport{
		Location:    geo.Location,
		Coordinates: geo.Coordinates,
		RadiusKm:    radiusKm,
		WindowHours: windowHours,
		Assessment:  *assessment,
	}, nil
}

// Evaluate оценивает архивный пакет; пустое имя файла означает самый свежий.
func (s *safetyService) Evaluate(ctx context.Context, filename string) (*evaluation.Result, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "safety",
		"method":   "Evaluate",
		"filename": filename,
	})

	if filename == "" {
		latest, err := s.archive.Latest()
		if err != nil {
			log.WithError(err).Warn("No archived result files to evaluate")
			return nil, fmt.Errorf("service: no results to evaluate: %w", err)
		}
		filename = latest
	}

	data, err := s.archive.Load(filename)
	if err != nil {
		log.WithError(err).Error("Failed to load archived results")
		return nil, fmt.Errorf("service: could not load results file: %w", err)
	}

	result, err := s.evaluator.Evaluate(data, filename)
	if err != nil {
		log.WithError(err).Error("Evaluation failed")
		return nil, fmt.Errorf("service: could not evaluate results: %w", err)
	}
	return result, nil
}

// TaskStatus возвращает состояние фоновой гео-задачи.
func (s *safetyService) TaskStatus(ctx context.Context, taskID string) (*geotask.Status, error) {
	status, err := s.queue.GetStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get task status: %w", err)
	}
	return status, nil
}

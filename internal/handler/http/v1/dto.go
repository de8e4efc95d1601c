package v1

import (
	"time"

	"github.com/shenikar/safety_agent_system/internal/models"
)

// SearchRequest DTO для поискового запроса
// @Description DTO для поискового запроса по безопасности
type SearchRequest struct {
	Query string `json:"query" validate:"required,min=2,max=500"`
}

// PointDTO GeoJSON-точка в порядке [lng, lat]
// @Description GeoJSON-точка в порядке [lng, lat]
type PointDTO struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	Datetime    time.Time `json:"datetime"`
	Coordinates PointDTO  `json:"coordinates"`
	Type        string    `json:"type"`
	NewsID      string    `json:"newsID"`
	Severity    int       `json:"severity"`
	Keywords    []string  `json:"keywords"`
	Summary     string    `json:"summary"`
}

// ToolCallResponse DTO для сводки по одному вызову инструмента
// @Description DTO для сводки по одному вызову инструмента
type ToolCallResponse struct {
	Tool   string `json:"tool"`
	Status string `json:"status"`
	Result string `json:"result"`
}

// SearchResponse DTO для ответа на поисковый запрос
// @Description DTO для ответа на поисковый запрос
type SearchResponse struct {
	Answer    string              `json:"answer"`
	Results   []*IncidentResponse `json:"results"`
	ToolCalls []ToolCallResponse  `json:"toolCalls"`
	GeoTaskID string              `json:"geoTaskId,omitempty"`
}

// StatsResponse DTO для ответа со статистикой хранилища
// @Description DTO для ответа со статистикой хранилища
type StatsResponse struct {
	TotalIncidents  int            `json:"total_incidents"`
	ByType          map[string]int `json:"by_type"`
	AverageSeverity float64        `json:"average_severity"`
	Last24h         int            `json:"last_24h"`
}

// RiskResponse DTO для ответа с оценкой риска по зоне
// @Description DTO для ответа с оценкой риска по зоне
type RiskResponse struct {
	Location    string                `json:"location"`
	Coordinates PointDTO              `json:"coordinates"`
	RadiusKm    float64               `json:"radius_km"`
	WindowHours int                   `json:"window_hours"`
	Assessment  models.RiskAssessment `json:"assessment"`
}

// EvaluateRequest DTO для запроса оценки качества архивного файла
// @Description DTO для запроса оценки качества; пустое имя означает самый свежий файл
type EvaluateRequest struct {
	Filename string `json:"filename,omitempty"`
}

// TaskStatusResponse DTO для ответа о состоянии гео-задачи
// @Description DTO для ответа о состоянии гео-задачи
type TaskStatusResponse struct {
	TaskID             string    `json:"task_id"`
	State              string    `json:"state"`
	IncidentsGenerated int       `json:"incidents_generated,omitempty"`
	Filename           string    `json:"filename,omitempty"`
	Error              string    `json:"error,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

package v1

import (
	"github.com/shenikar/safety_agent_system/internal/geotask"
	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/shenikar/safety_agent_system/internal/service"
)

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model models.Incident) *IncidentResponse {
	return &IncidentResponse{
		Datetime: model.Datetime,
		Coordinates: PointDTO{
			Type:        model.Coordinates.Type,
			Coordinates: model.Coordinates.Coordinates,
		},
		Type:     string(model.Type),
		NewsID:   model.NewsID,
		Severity: model.Severity,
		Keywords: model.Keywords,
		Summary:  model.Summary,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, inc := range incidents {
		responses[i] = ModelToIncidentResponse(inc)
	}
	return responses
}

// SearchToResponse преобразует результат поиска сервиса в DTO
func SearchToResponse(resp *service.SearchResponse) *SearchResponse {
	toolCalls := make([]ToolCallResponse, len(resp.ToolExecutions))
	for i, te := range resp.ToolExecutions {
		toolCalls[i] = ToolCallResponse{
			Tool:   te.Tool,
			Status: te.Status,
			Result: te.Result,
		}
	}
	return &SearchResponse{
		Answer:    resp.Answer,
		Results:   ModelsToIncidentResponses(resp.Incidents),
		ToolCalls: toolCalls,
		GeoTaskID: resp.GeoTaskID,
	}
}

// StatsToResponse преобразует сводку хранилища в DTO
func StatsToResponse(stats *service.Stats) *StatsResponse {
	byType := make(map[string]int, len(stats.ByType))
	for t, n := range stats.ByType {
		byType[string(t)] = n
	}
	return &StatsResponse{
		TotalIncidents:  stats.TotalIncidents,
		ByType:          byType,
		AverageSeverity: stats.AverageSeverity,
		Last24h:         stats.Last24h,
	}
}

// RiskToResponse преобразует отчет о риске в DTO
func RiskToResponse(report *service.RiskReport) *RiskResponse {
	return &RiskResponse{
		Location: report.Location,
		Coordinates: PointDTO{
			Type:        report.Coordinates.Type,
			Coordinates: report.Coordinates.Coordinates,
		},
		RadiusKm:    report.RadiusKm,
		WindowHours: report.WindowHours,
		Assessment:  report.Assessment,
	}
}

// StatusToResponse преобразует статус гео-задачи в DTO
func StatusToResponse(status *geotask.Status) *TaskStatusResponse {
	return &TaskStatusResponse{
		TaskID:             status.TaskID,
		State:              string(status.State),
		IncidentsGenerated: status.IncidentsGenerated,
		Filename:           status.Filename,
		Error:              status.Error,
		UpdatedAt:          status.UpdatedAt,
	}
}

package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check открыт всегда
	api.GET("/system/health", h.healthCheck)

	// Остальной API закрыт API-ключом; без настроенных ключей защита выключена
	protected := api.Group("")
	if len(h.cfg.APIKeys) > 0 {
		protected.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	}

	// Поисковый раунд агента
	protected.POST("/search", h.search)

	// Маршруты хранилища инцидентов
	incidents := protected.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/stats", h.getStats)
	}

	// Оценка риска по зоне
	protected.GET("/risk", h.assessRisk)

	// Оценка качества архивных пакетов
	protected.POST("/evaluate", h.evaluateResults)

	// Статус фоновых гео-задач
	protected.GET("/tasks/:id", h.getTaskStatus)
}

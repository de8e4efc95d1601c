package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/safety_agent_system/internal/config"
	"github.com/shenikar/safety_agent_system/internal/evaluation"
	"github.com/shenikar/safety_agent_system/internal/geotask"
	"github.com/shenikar/safety_agent_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	safetyService service.SafetyService
	logger        *logrus.Logger
	validate      *validator.Validate
	cfg           *config.Config
}

func NewHandler(safetyService service.SafetyService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		safetyService: safetyService,
		logger:        logger,
		validate:      validator.New(),
		cfg:           cfg,
	}
}

// @Summary Search for safety information
// @Description Run an agent-driven search over the local incident database and enqueue background geo processing. Requires API key.
// @Tags Search
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param search body SearchRequest true "Search request"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Decision service unavailable"
// @Router /search [post]
func (h *Handler) search(c *gin.Context) {
	var input SearchRequest
	log := h.logger.WithField("method", "search")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.safetyService.Search(c.Request.Context(), input.Query)
	if err != nil {
		log.WithError(err).Error("Failed to run search in service")
		c.JSON(http.StatusBadGateway, gin.H{"error": "search is temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, SearchToResponse(resp))
}

// @Summary Get a list of incidents
// @Description Get stored incidents, optionally filtered by a text query. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param query query string false "Substring filter over keywords, summary and identifier"
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	incidents, err := h.safetyService.ListIncidents(c.Request.Context(), c.Query("query"))
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident store statistics
// @Description Get totals, per-category counts and average severity. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	stats, err := h.safetyService.Stats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsToResponse(stats))
}

// @Summary Assess area risk
// @Description Compute a multi-factor risk assessment around a location. Requires API key.
// @Tags Risk
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param location query string true "Location name to assess"
// @Param radius_km query number false "Radius in kilometres"
// @Param window_hours query int false "Assessment window in hours"
// @Success 200 {object} RiskResponse
// @Failure 400 {object} map[string]string "Missing location"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /risk [get]
func (h *Handler) assessRisk(c *gin.Context) {
	log := h.logger.WithField("method", "assessRisk")

	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}
	radiusKm, _ := strconv.ParseFloat(c.DefaultQuery("radius_km", "0"), 64)
	windowHours, _ := strconv.Atoi(c.DefaultQuery("window_hours", "0"))

	report, err := h.safetyService.AssessRisk(c.Request.Context(), location, radiusKm, windowHours)
	if err != nil {
		log.WithError(err).Error("Failed to assess risk in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, RiskToResponse(report))
}

// @Summary Evaluate an archived result file
// @Description Score an archived incident batch for schema compliance and data quality. Requires API key.
// @Tags Evaluation
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param evaluate body EvaluateRequest false "Evaluation request; empty filename means the latest file"
// @Success 200 {object} evaluation.Result
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "File not found"
// @Failure 422 {object} map[string]string "File is not a valid incident batch"
// @Router /evaluate [post]
func (h *Handler) evaluateResults(c *gin.Context) {
	var input EvaluateRequest
	log := h.logger.WithField("method", "evaluateResults")

	// Тело опционально: пустой запрос означает самый свежий архив.
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.safetyService.Evaluate(c.Request.Context(), input.Filename)
	if err != nil {
		if errors.Is(err, evaluation.ErrInvalidData) {
			log.WithError(err).Warn("Archived results are not valid JSON")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "results file is not a valid incident batch"})
			return
		}
		log.WithError(err).Warn("Failed to evaluate results")
		c.JSON(http.StatusNotFound, gin.H{"error": "results file not found"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get geo task status
// @Description Get the state of a background geo-processing task by its ID. Requires API key.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Task ID"
// @Success 200 {object} TaskStatusResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tasks/{id} [get]
func (h *Handler) getTaskStatus(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getTaskStatus").WithField("task_id", id)

	status, err := h.safetyService.TaskStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, geotask.ErrStatusNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		log.WithError(err).Error("Failed to get task status from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatusToResponse(status))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

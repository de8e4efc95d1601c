package assembler

import (
	"fmt"
	"time"

	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/shenikar/safety_agent_system/internal/schema"
	"github.com/shenikar/safety_agent_system/internal/tools"
	"github.com/sirupsen/logrus"
)

// fallbackSummaryFormat — резюме запасного инцидента.
const fallbackSummaryFormat = "General safety information for %s area."

// Assembler превращает сырые результаты инструментов в проверенные инциденты.
// Восстановимые пропуски (дата, идентификатор, резюме) дозаполняются,
// невосстановимые записи отбрасываются с предупреждением в логе.
// Пустой вход никогда не дает пустой выход: собирается запасной инцидент.
type Assembler struct {
	validator *schema.Validator
	logger    *logrus.Logger
	now       func() time.Time
}

// NewAssembler создает новый Assembler
func NewAssembler(validator *schema.Validator, logger *logrus.Logger) *Assembler {
	return &Assembler{
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Assemble собирает инциденты из результатов геокодирования и извлечения.
// Каждая запись проходит через полную валидацию схемы; на выходе
// гарантированно хотя бы один валидный инцидент.
func (a *Assembler) Assemble(query string, geo *tools.GeocodeResult, extractions []tools.ExtractionResult) []models.Incident {
	point := tools.DefaultCityCentre
	if geo != nil {
		point = geo.Coordinates
	}

	now := a.now()
	incidents := make([]models.Incident, 0, len(extractions))
	for i, ext := range extractions {
		raw := a.rawFromExtraction(ext, point, now, i)
		inc, issues := a.validator.Validate(raw)
		if len(issues) > 0 {
			// Невосстановимый брак: категория или серьезность вне домена.
			a.logger.WithFields(logrus.Fields{
				"component": "assembler",
				"index":     i,
				"issues":    issues,
			}).Warn("Dropping extraction that failed validation")
			continue
		}
		incidents = append(incidents, *inc)
	}

	if len(incidents) == 0 {
		incidents = append(incidents, a.fallbackIncident(query, point, now))
	}
	return incidents
}

// rawFromExtraction дозаполняет восстановимые поля перед валидацией.
func (a *Assembler) rawFromExtraction(ext tools.ExtractionResult, point models.Point, now time.Time, idx int) models.RawIncident {
	keywords := ext.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	summary := ext.Summary
	if summary == "" {
		summary = "No summary available"
	}

	return models.RawIncident{
		Datetime: now.Format(time.RFC3339),
		Coordinates: models.RawPoint{
			Type:        "Point",
			Coordinates: point.Coordinates[:],
		},
		Type:     string(ext.Type),
		NewsID:   fmt.Sprintf("geo-%d-%d", now.UnixMilli(), idx),
		Severity: float64(ext.Severity),
		Keywords: keywords,
		Summary:  tools.TruncateSummary(summary),
	}
}

// fallbackIncident — запасной инцидент, когда ни одна запись не собралась.
func (a *Assembler) fallbackIncident(query string, point models.Point, now time.Time) models.Incident {
	a.logger.WithField("component", "assembler").Info("No valid extractions, assembling fallback incident")
	return models.Incident{
		Datetime:    now,
		Coordinates: point,
		Type:        models.CrimeProperty,
		NewsID:      fmt.Sprintf("fallback-%d", now.UnixMilli()),
		Severity:    3,
		Keywords:    []string{"safety", "general", "area"},
		Summary:     tools.TruncateSummary(fmt.Sprintf(fallbackSummaryFormat, query)),
	}
}

package risk

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/shenikar/safety_agent_system/internal/store"
	"github.com/sirupsen/logrus"
)

// Имена факторов; на них же завязаны правила рекомендаций.
const (
	factorViolent   = "Violent Crime Risk"
	factorProperty  = "Property Crime Risk"
	factorFrequency = "Incident Frequency"
	factorSeverity  = "Average Severity"
	factorTime      = "Time Pattern Risk"
	factorDensity   = "Location Density"
)

// highFactorThreshold — порог, после которого фактор порождает рекомендации.
const highFactorThreshold = 60

// Engine считает многофакторную оценку риска по зоне поверх хранилища инцидентов.
// Оценка производная: ничего не персистится, каждый вызов пересчитывает
// ее из текущего содержимого хранилища.
type Engine struct {
	store  store.IncidentStore
	logger *logrus.Logger
	now    func() time.Time
}

// NewEngine создает новый Engine
func NewEngine(st store.IncidentStore, logger *logrus.Logger) *Engine {
	return &Engine{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// AssessArea оценивает риск в радиусе radiusKm от точки за окно window.
// Пустая выборка дает нулевую оценку с нулевой уверенностью, а не ошибку.
func (e *Engine) AssessArea(ctx context.Context, area models.Point, radiusKm float64, window time.Duration) (*models.RiskAssessment, error) {
	log := e.logger.WithFields(logrus.Fields{
		"component": "risk",
		"radius_km": radiusKm,
		"window":    window.String(),
	})

	now := e.now()
	incidents, err := e.incidentsInArea(ctx, area, radiusKm, now.Add(-window), now)
	if err != nil {
		return nil, fmt.Errorf("risk: failed to select current window: %w", err)
	}
	previous, err := e.incidentsInArea(ctx, area, radiusKm, now.Add(-2*window), now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("risk: failed to select previous window: %w", err)
	}

	factors := []models.RiskFactor{
		violentCrimeRisk(incidents),
		propertyCrimeRisk(incidents),
		frequencyRisk(incidents, window),
		severityRisk(incidents),
		timePatternRisk(incidents),
		locationDensityRisk(incidents, radiusKm),
	}

	overall := weightedScore(factors)
	trends := analyzeTrends(incidents, previous, window)

	log.WithFields(logrus.Fields{
		"incidents":     len(incidents),
		"overall_score": overall,
	}).Debug("Risk assessment computed")

	return &models.RiskAssessment{
		OverallRiskScore: overall,
		RiskLevel:        riskLevel(overall),
		Factors:          factors,
		Trends:           trends,
		Recommendations:  recommendations(factors, trends, len(incidents)),
		ConfidenceScore:  confidenceScore(len(incidents), window),
	}, nil
}

// incidentsInArea — пересечение фильтров по времени и по радиусу.
func (e *Engine) incidentsInArea(ctx context.Context, area models.Point, radiusKm float64, from, to time.Time) ([]models.Incident, error) {
	inWindow, err := e.store.Between(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]models.Incident, 0, len(inWindow))
	for _, inc := range inWindow {
		if store.HaversineKm(area, inc.Coordinates) <= radiusKm {
			out = append(out, inc)
		}
	}
	return out, nil
}

// violentCrimeRisk — доля насильственных инцидентов (категория или серьезность >= 4).
func violentCrimeRisk(incidents []models.Incident) models.RiskFactor {
	violent := 0
	for _, inc := range incidents {
		if inc.Type == models.CrimeViolent || inc.Type == models.CrimeSexual || inc.Severity >= 4 {
			violent++
		}
	}
	ratio := safeRatio(violent, len(incidents))
	return models.RiskFactor{
		Type:        factorViolent,
		Weight:      0.4,
		Description: fmt.Sprintf("%d violent incidents out of %d total", violent, len(incidents)),
		Score:       math.Min(ratio*100, 100),
	}
}

// propertyCrimeRisk — доля имущественных преступлений, с меньшим потолком.
func propertyCrimeRisk(incidents []models.Incident) models.RiskFactor {
	property := 0
	for _, inc := range incidents {
		if inc.Type == models.CrimeProperty {
			property++
		}
	}
	ratio := safeRatio(property, len(incidents))
	return models.RiskFactor{
		Type:        factorProperty,
		Weight:      0.25,
		Description: fmt.Sprintf("%d property crimes detected", property),
		Score:       math.Min(ratio*80, 100),
	}
}

// frequencyRisk — частота инцидентов в сутки; 5+ в сутки дает максимум.
func frequencyRisk(incidents []models.Incident, window time.Duration) models.RiskFactor {
	perDay := float64(len(incidents)) / window.Hours() * 24
	return models.RiskFactor{
		Type:        factorFrequency,
		Weight:      0.2,
		Description: fmt.Sprintf("%.1f incidents per day", perDay),
		Score:       math.Min(perDay*20, 100),
	}
}

// severityRisk — средняя серьезность, нормированная к шкале 0-100.
func severityRisk(incidents []models.Incident) models.RiskFactor {
	if len(incidents) == 0 {
		return models.RiskFactor{
			Type:        factorSeverity,
			Weight:      0.1,
			Description: "No incidents to analyze",
			Score:       0,
		}
	}
	sum := 0
	for _, inc := range incidents {
		sum += inc.Severity
	}
	avg := float64(sum) / float64(len(incidents))
	return models.RiskFactor{
		Type:        factorSeverity,
		Weight:      0.1,
		Description: fmt.Sprintf("Average severity: %.1f/5", avg),
		Score:       avg / 5 * 100,
	}
}

// timePatternRisk — доля инцидентов в опасное время: ночью (22:00-06:00)
// или в выходные.
func timePatternRisk(incidents []models.Incident) models.RiskFactor {
	dangerous := 0
	for _, inc := range incidents {
		hour := inc.Datetime.Hour()
		day := inc.Datetime.Weekday()
		if hour >= 22 || hour <= 6 || day == time.Sunday || day == time.Saturday {
			dangerous++
		}
	}
	ratio := safeRatio(dangerous, len(incidents))
	return models.RiskFactor{
		Type:        factorTime,
		Weight:      0.05,
		Description: fmt.Sprintf("%.0f%% of incidents during high-risk times", ratio*100),
		Score:       ratio * 60,
	}
}

// locationDensityRisk — плотность инцидентов на км² круга запроса.
func locationDensityRisk(incidents []models.Incident, radiusKm float64) models.RiskFactor {
	area := math.Pi * radiusKm * radiusKm
	density := float64(len(incidents)) / area
	return models.RiskFactor{
		Type:        factorDensity,
		Weight:      0.05,
		Description: fmt.Sprintf("%.2f incidents per km²", density),
		Score:       math.Min(density*10, 100),
	}
}

// weightedScore — взвешенное среднее факторов, округленное до целого.
func weightedScore(factors []models.RiskFactor) int {
	var weightedSum, totalWeight float64
	for _, f := range factors {
		weightedSum += f.Score * f.Weight
		totalWeight += f.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(weightedSum / totalWeight))
}

func riskLevel(score int) models.RiskLevel {
	switch {
	case score <= 25:
		return models.RiskLow
	case score <= 50:
		return models.RiskMedium
	case score <= 75:
		return models.RiskHigh
	default:
		return models.RiskExtreme
	}
}

// analyzeTrends сравнивает текущее окно с предыдущим окном той же длины.
// Направление меняется только при изменении более чем на 20%.
func analyzeTrends(current, previous []models.Incident, window time.Duration) models.TrendAnalysis {
	change := 0.0
	if len(previous) > 0 {
		change = float64(len(current)-len(previous)) / float64(len(previous)) * 100
	}

	direction := models.TrendStable
	if math.Abs(change) > 20 {
		direction = models.TrendIncreasing
		if change < 0 {
			direction = models.TrendDecreasing
		}
	}

	hours := int(window.Hours())
	return models.TrendAnalysis{
		Direction:          direction,
		ChangePercentage:   int(math.Round(change)),
		Timeframe:          fmt.Sprintf("%dh-over-%dh", hours, hours),
		SignificantChanges: significantChanges(current, previous),
	}
}

// significantChanges отмечает новые категории и заметный рост серьезности.
func significantChanges(current, previous []models.Incident) []string {
	changes := []string{}

	previousTypes := make(map[models.CrimeType]struct{}, len(previous))
	for _, inc := range previous {
		previousTypes[inc.Type] = struct{}{}
	}
	seen := make(map[models.CrimeType]struct{}, len(current))
	for _, inc := range current {
		if _, dup := seen[inc.Type]; dup {
			continue
		}
		seen[inc.Type] = struct{}{}
		if _, ok := previousTypes[inc.Type]; !ok && len(previous) > 0 {
			changes = append(changes, fmt.Sprintf("New crime type detected: %s", inc.Type))
		}
	}

	if len(current) > 0 && len(previous) > 0 {
		currentAvg := avgSeverity(current)
		previousAvg := avgSeverity(previous)
		if currentAvg > previousAvg+0.5 {
			changes = append(changes, fmt.Sprintf("Incident severity increased by %.1f", currentAvg-previousAvg))
		}
	}
	return changes
}

func avgSeverity(incidents []models.Incident) float64 {
	sum := 0
	for _, inc := range incidents {
		sum += inc.Severity
	}
	return float64(sum) / float64(len(incidents))
}

// recommendations — фиксированный, упорядоченный набор правил:
// насильственные -> имущественные -> частота -> тренд -> новые паттерны.
func recommendations(factors []models.RiskFactor, trends models.TrendAnalysis, incidentCount int) []string {
	if incidentCount == 0 {
		return []string{"No recent incident data for this area - maintain general situational awareness"}
	}

	high := make(map[string]bool, len(factors))
	for _, f := range factors {
		if f.Score > highFactorThreshold {
			high[f.Type] = true
		}
	}

	recs := []string{}
	if high[factorViolent] {
		recs = append(recs,
			"High violent crime risk - avoid the area during late hours",
			"Travel in groups when possible",
			"Share your location with trusted contacts",
		)
	}
	if high[factorProperty] {
		recs = append(recs,
			"Secure vehicles and avoid displaying valuables",
			"Use additional security measures for properties",
		)
	}
	if high[factorFrequency] {
		recs = append(recs,
			"Monitor the area regularly for updates",
			"Consider alternative routes or locations",
		)
	}
	if trends.Direction == models.TrendIncreasing {
		recs = append(recs, fmt.Sprintf("Crime increasing by %d%% - heightened caution advised", trends.ChangePercentage))
	}
	if len(trends.SignificantChanges) > 0 {
		recs = append(recs, "New crime patterns detected - stay updated on latest developments")
	}
	return recs
}

// confidenceScore растет с объемом данных и длиной окна, каждый вклад
// ограничен независимо. Без инцидентов уверенность нулевая.
func confidenceScore(incidentCount int, window time.Duration) int {
	if incidentCount == 0 {
		return 0
	}
	dataScore := math.Min(float64(incidentCount)*5, 70)
	timeScore := math.Min(window.Hours()/168*30, 30)
	return int(math.Round(dataScore + timeScore))
}

func safeRatio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

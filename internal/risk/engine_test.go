package risk

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/shenikar/safety_agent_system/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Среда 4 марта 2026, 18:00 UTC: будний день, дневные часы,
// чтобы фактор времени в детерминированном сценарии был нулевым.
var testNow = time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

var testArea = models.NewPoint(28.0473, -26.1076)

func newTestEngine(t *testing.T, seed ...models.Incident) *Engine {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	e := NewEngine(store.NewMemoryStore(seed...), logger)
	e.now = func() time.Time { return testNow }
	return e
}

func riskIncident(id string, at time.Time, ctype models.CrimeType, severity int) models.Incident {
	return models.Incident{
		Datetime:    at,
		Coordinates: testArea,
		Type:        ctype,
		NewsID:      id,
		Severity:    severity,
		Keywords:    []string{"test"},
		Summary:     "Incident for risk analysis.",
	}
}

func TestAssessArea_EmptySelection(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.AssessArea(context.Background(), testArea, 5, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 0, res.OverallRiskScore)
	assert.Equal(t, models.RiskLow, res.RiskLevel)
	assert.Equal(t, 0, res.ConfidenceScore)
	assert.Equal(t, models.TrendStable, res.Trends.Direction)
	require.Len(t, res.Factors, 6)
	for _, f := range res.Factors {
		assert.Zerof(t, f.Score, "factor %q", f.Type)
	}
	// Только общий совет, без факторных рекомендаций.
	require.Len(t, res.Recommendations, 1)
	assert.Contains(t, res.Recommendations[0], "No recent incident data")
}

func TestAssessArea_DeterministicScenario(t *testing.T) {
	// 10 инцидентов за 24 часа в радиусе 5 км:
	// 6 насильственных с серьезностью 5, 4 имущественных с серьезностью 2.
	seed := make([]models.Incident, 0, 10)
	for i := 0; i < 6; i++ {
		at := testNow.Add(-time.Duration(i+1) * 30 * time.Minute)
		seed = append(seed, riskIncident(fmt.Sprintf("v-%d", i), at, models.CrimeViolent, 5))
	}
	for i := 0; i < 4; i++ {
		at := testNow.Add(-time.Duration(i+7) * 30 * time.Minute)
		seed = append(seed, riskIncident(fmt.Sprintf("p-%d", i), at, models.CrimeProperty, 2))
	}
	e := newTestEngine(t, seed...)

	res, err := e.AssessArea(context.Background(), testArea, 5, 24*time.Hour)

	require.NoError(t, err)

	factors := map[string]models.RiskFactor{}
	for _, f := range res.Factors {
		factors[f.Type] = f
	}
	assert.InDelta(t, 60, factors[factorViolent].Score, 0.01)   // 6/10 * 100
	assert.InDelta(t, 32, factors[factorProperty].Score, 0.01)  // 4/10 * 80
	assert.InDelta(t, 100, factors[factorFrequency].Score, 0.01) // 10/сутки, потолок
	assert.InDelta(t, 76, factors[factorSeverity].Score, 0.01)  // avg 3.8 / 5
	assert.Zero(t, factors[factorTime].Score)

	// Взвешенное среднее: (60*.4 + 32*.25 + 100*.2 + 76*.1 + density*.05) / 1.05
	assert.InDelta(t, 57, res.OverallRiskScore, 1)
	assert.Equal(t, models.RiskHigh, res.RiskLevel)

	// min(10*5, 70) + min(24/168*30, 30) = 50 + 4.29
	assert.Equal(t, 54, res.ConfidenceScore)

	// Порог 60 строгий: фактор насильственных преступлений ровно 60 не срабатывает,
	// рекомендации дает только частота.
	assert.Equal(t, []string{
		"Monitor the area regularly for updates",
		"Consider alternative routes or locations",
	}, res.Recommendations)
}

func TestAssessArea_RadiusFiltering(t *testing.T) {
	inArea := riskIncident("near", testNow.Add(-time.Hour), models.CrimeProperty, 3)
	outOfArea := riskIncident("far", testNow.Add(-time.Hour), models.CrimeProperty, 3)
	outOfArea.Coordinates = models.NewPoint(18.4241, -33.9249) // Кейптаун

	e := newTestEngine(t, inArea, outOfArea)

	res, err := e.AssessArea(context.Background(), testArea, 5, 24*time.Hour)

	require.NoError(t, err)
	// Учитывается только инцидент в радиусе.
	assert.Contains(t, res.Factors[0].Description, "out of 1 total")
}

func TestAssessArea_TrendIncreasing(t *testing.T) {
	seed := []models.Incident{
		// Предыдущее окно: 2 инцидента.
		riskIncident("prev-1", testNow.Add(-30*time.Hour), models.CrimeProperty, 2),
		riskIncident("prev-2", testNow.Add(-32*time.Hour), models.CrimeProperty, 2),
	}
	// Текущее окно: 5 инцидентов, рост на 150%.
	for i := 0; i < 5; i++ {
		at := testNow.Add(-time.Duration(i+1) * time.Hour)
		seed = append(seed, riskIncident(fmt.Sprintf("cur-%d", i), at, models.CrimeProperty, 2))
	}
	e := newTestEngine(t, seed...)

	res, err := e.AssessArea(context.Background(), testArea, 5, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, models.TrendIncreasing, res.Trends.Direction)
	assert.Equal(t, 150, res.Trends.ChangePercentage)
	assert.Equal(t, "24h-over-24h", res.Trends.Timeframe)
	assert.Contains(t, res.Recommendations, "Crime increasing by 150% - heightened caution advised")
}

func TestAssessArea_TrendStableWithinThreshold(t *testing.T) {
	seed := []models.Incident{
		riskIncident("prev-1", testNow.Add(-30*time.Hour), models.CrimeProperty, 2),
		riskIncident("prev-2", testNow.Add(-32*time.Hour), models.CrimeProperty, 2),
		riskIncident("prev-3", testNow.Add(-34*time.Hour), models.CrimeProperty, 2),
		riskIncident("prev-4", testNow.Add(-36*time.Hour), models.CrimeProperty, 2),
		riskIncident("prev-5", testNow.Add(-38*time.Hour), models.CrimeProperty, 2),
		// Текущее окно: 6 инцидентов, рост на 20% — ровно на границе, stable.
		riskIncident("cur-1", testNow.Add(-1*time.Hour), models.CrimeProperty, 2),
		riskIncident("cur-2", testNow.Add(-2*time.Hour), models.CrimeProperty, 2),
		riskIncident("cur-3", testNow.Add(-3*time.Hour), models.CrimeProperty, 2),
		riskIncident("cur-4", testNow.Add(-4*time.Hour), models.CrimeProperty, 2),
		riskIncident("cur-5", testNow.Add(-5*time.Hour), models.CrimeProperty, 2),
		riskIncident("cur-6", testNow.Add(-6*time.Hour), models.CrimeProperty, 2),
	}
	e := newTestEngine(t, seed...)

	res, err := e.AssessArea(context.Background(), testArea, 5, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, models.TrendStable, res.Trends.Direction)
	assert.Equal(t, 20, res.Trends.ChangePercentage)
}

func TestAssessArea_SignificantChanges(t *testing.T) {
	seed := []models.Incident{
		riskIncident("prev-1", testNow.Add(-30*time.Hour), models.CrimeProperty, 2),
		// Текущее окно: новая категория и выросшая серьезность.
		riskIncident("cur-1", testNow.Add(-1*time.Hour), models.CrimeViolent, 5),
	}
	e := newTestEngine(t, seed...)

	res, err := e.AssessArea(context.Background(), testArea, 5, 24*time.Hour)

	require.NoError(t, err)
	require.Len(t, res.Trends.SignificantChanges, 2)
	assert.Contains(t, res.Trends.SignificantChanges[0], "New crime type detected: Violent Crimes")
	assert.Contains(t, res.Trends.SignificantChanges[1], "Incident severity increased by 3.0")
	assert.Contains(t, res.Recommendations, "New crime patterns detected - stay updated on latest developments")
}

func TestRiskLevelBuckets(t *testing.T) {
	assert.Equal(t, models.RiskLow, riskLevel(0))
	assert.Equal(t, models.RiskLow, riskLevel(25))
	assert.Equal(t, models.RiskMedium, riskLevel(26))
	assert.Equal(t, models.RiskMedium, riskLevel(50))
	assert.Equal(t, models.RiskHigh, riskLevel(51))
	assert.Equal(t, models.RiskHigh, riskLevel(75))
	assert.Equal(t, models.RiskExtreme, riskLevel(76))
	assert.Equal(t, models.RiskExtreme, riskLevel(100))
}

func TestConfidenceScoreSaturation(t *testing.T) {
	week := 168 * time.Hour

	// Данные и окно насыщаются независимо.
	assert.Equal(t, 100, confidenceScore(20, week))
	assert.Equal(t, 0, confidenceScore(0, week))
	assert.Equal(t, 35, confidenceScore(1, week)) // 5 + 30
}

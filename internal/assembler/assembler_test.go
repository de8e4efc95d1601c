package assembler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/shenikar/safety_agent_system/internal/schema"
	"github.com/shenikar/safety_agent_system/internal/tools"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return NewAssembler(schema.New(), logger)
}

func TestAssemble_RepairsRecoverableFields(t *testing.T) {
	a := newTestAssembler(t)
	geo := &tools.GeocodeResult{
		Location:    "sandton",
		Coordinates: models.NewPoint(28.0473, -26.1076),
		Confidence:  "high",
	}

	// Резюме и ключевые слова отсутствуют — восстановимые пропуски.
	incidents := a.Assemble("sandton", geo, []tools.ExtractionResult{
		{Type: models.CrimeViolent, Severity: 4, Keywords: nil, Summary: ""},
	})

	require.Len(t, incidents, 1)
	inc := incidents[0]
	assert.Equal(t, models.CrimeViolent, inc.Type)
	assert.Equal(t, geo.Coordinates, inc.Coordinates)
	assert.Equal(t, "No summary available", inc.Summary)
	assert.NotNil(t, inc.Keywords)
	assert.True(t, strings.HasPrefix(inc.NewsID, "geo-"))
	assert.False(t, inc.Datetime.IsZero())
}

func TestAssemble_DropsUnrecoverableRecords(t *testing.T) {
	a := newTestAssembler(t)

	incidents := a.Assemble("sandton", nil, []tools.ExtractionResult{
		{Type: "Unknown Category", Severity: 3, Summary: "bad type"},
		{Type: models.CrimeProperty, Severity: 9, Summary: "bad severity"},
		{Type: models.CrimeProperty, Severity: 3, Summary: "good record"},
	})

	require.Len(t, incidents, 1)
	assert.Equal(t, "good record", incidents[0].Summary)
}

func TestAssemble_FallbackWhenNothingSurvives(t *testing.T) {
	a := newTestAssembler(t)

	incidents := a.Assemble("parkhurst", nil, nil)

	require.Len(t, incidents, 1)
	fb := incidents[0]
	assert.True(t, strings.HasPrefix(fb.NewsID, "fallback-"))
	assert.Equal(t, models.CrimeProperty, fb.Type)
	assert.Equal(t, 3, fb.Severity)
	assert.Equal(t, []string{"safety", "general", "area"}, fb.Keywords)
	assert.Equal(t, "General safety information for parkhurst area.", fb.Summary)
	assert.Equal(t, tools.DefaultCityCentre, fb.Coordinates)

	// Запасной инцидент сам проходит полную валидацию схемы.
	_, issues := schema.New().Validate(models.RawFromIncident(fb))
	assert.Empty(t, issues)
}

func TestAssemble_LongSummaryTruncated(t *testing.T) {
	a := newTestAssembler(t)

	incidents := a.Assemble("sandton", nil, []tools.ExtractionResult{
		{Type: models.CrimeProperty, Severity: 3, Summary: strings.Repeat("x", 200)},
	})

	require.Len(t, incidents, 1)
	assert.Len(t, []rune(incidents[0].Summary), tools.SummaryMaxLen)
}

func TestAssemble_GeocodeFallsBackToCityCentre(t *testing.T) {
	a := newTestAssembler(t)

	incidents := a.Assemble("somewhere", nil, []tools.ExtractionResult{
		{Type: models.CrimeCyber, Severity: 3, Summary: "phishing wave"},
	})

	require.Len(t, incidents, 1)
	assert.Equal(t, tools.DefaultCityCentre, incidents[0].Coordinates)
}

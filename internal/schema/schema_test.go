package schema

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validRaw возвращает заведомо валидного кандидата.
func validRaw() models.RawIncident {
	return models.RawIncident{
		Datetime:    "2025-08-18T20:15:00Z",
		Coordinates: models.RawPoint{Type: "Point", Coordinates: []float64{28.0211, -26.1342}},
		Type:        string(models.CrimeViolent),
		NewsID:      "test-news-123",
		Severity:    3,
		Keywords:    []string{"robbery", "Parkhurst", "Johannesburg"},
		Summary:     "Short summary of the incident.",
	}
}

func TestValidate_ValidIncident(t *testing.T) {
	v := New()

	inc, issues := v.Validate(validRaw())

	require.Empty(t, issues)
	require.NotNil(t, inc)
	assert.Equal(t, models.CrimeViolent, inc.Type)
	assert.Equal(t, models.NewPoint(28.0211, -26.1342), inc.Coordinates)
	assert.Equal(t, 3, inc.Severity)
}

func TestValidate_RoundTripIdentity(t *testing.T) {
	// Схема — тождественная функция на валидных данных.
	v := New()
	first, issues := v.Validate(validRaw())
	require.Empty(t, issues)

	second, issues := v.Validate(models.RawFromIncident(*first))

	require.Empty(t, issues)
	assert.Equal(t, first, second)
}

func TestValidate_SeverityBounds(t *testing.T) {
	v := New()

	cases := []struct {
		severity float64
		valid    bool
	}{
		{0, false},
		{1, true},
		{5, true},
		{6, false},
		{3.5, false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("severity_%v", tc.severity), func(t *testing.T) {
			raw := validRaw()
			raw.Severity = tc.severity

			inc, issues := v.Validate(raw)

			if tc.valid {
				require.Empty(t, issues)
				assert.Equal(t, int(tc.severity), inc.Severity)
			} else {
				require.NotEmpty(t, issues)
				assert.Nil(t, inc)
				assert.Equal(t, "severity", issues[0].Path)
			}
		})
	}
}

func TestValidate_SummaryLength(t *testing.T) {
	v := New()

	raw := validRaw()
	raw.Summary = strings.Repeat("a", 100)
	_, issues := v.Validate(raw)
	assert.Empty(t, issues, "summary of exactly 100 characters must pass")

	raw.Summary = strings.Repeat("a", 101)
	inc, issues := v.Validate(raw)
	require.NotEmpty(t, issues)
	assert.Nil(t, inc)
	assert.Equal(t, "summary", issues[0].Path)
}

func TestValidate_Coordinates(t *testing.T) {
	v := New()

	cases := []struct {
		name  string
		point models.RawPoint
		valid bool
	}{
		{"two_finite_numbers", models.RawPoint{Type: "Point", Coordinates: []float64{28.0, -26.2}}, true},
		{"one_element", models.RawPoint{Type: "Point", Coordinates: []float64{123}}, false},
		{"three_elements", models.RawPoint{Type: "Point", Coordinates: []float64{1, 2, 3}}, false},
		{"nan_coordinate", models.RawPoint{Type: "Point", Coordinates: []float64{math.NaN(), -26.2}}, false},
		{"wrong_discriminator", models.RawPoint{Type: "point", Coordinates: []float64{28.0, -26.2}}, false},
		{"missing_object", models.RawPoint{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validRaw()
			raw.Coordinates = tc.point

			_, issues := v.Validate(raw)

			if tc.valid {
				assert.Empty(t, issues)
			} else {
				require.NotEmpty(t, issues)
				assert.Contains(t, issues[0].Path, "coordinates")
			}
		})
	}
}

func TestValidate_InvalidCrimeType(t *testing.T) {
	v := New()
	raw := validRaw()
	raw.Type = "Invalid Crime Type"

	inc, issues := v.Validate(raw)

	require.NotEmpty(t, issues)
	assert.Nil(t, inc)
	assert.Equal(t, "type", issues[0].Path)
}

func TestValidate_CaseSensitiveCrimeType(t *testing.T) {
	// Категории не приводятся к "ближайшему" значению: сравнение строгое.
	v := New()
	raw := validRaw()
	raw.Type = "violent crimes"

	_, issues := v.Validate(raw)

	require.NotEmpty(t, issues)
}

func TestValidate_InvalidDatetime(t *testing.T) {
	v := New()
	raw := validRaw()
	raw.Datetime = "invalid-date"

	inc, issues := v.Validate(raw)

	require.NotEmpty(t, issues)
	assert.Nil(t, inc)
	assert.Equal(t, "datetime", issues[0].Path)
}

func TestValidate_AllCrimeTypes(t *testing.T) {
	v := New()

	for _, ct := range models.AllCrimeTypes {
		raw := validRaw()
		raw.Type = string(ct)
		raw.NewsID = "test-" + strings.ToLower(strings.ReplaceAll(string(ct), " ", "-"))

		_, issues := v.Validate(raw)

		assert.Emptyf(t, issues, "crime type %q must be accepted", ct)
	}
}

func TestValidate_EmptyKeywordsAllowed(t *testing.T) {
	v := New()
	raw := validRaw()
	raw.Keywords = []string{}

	inc, issues := v.Validate(raw)

	require.Empty(t, issues)
	assert.Empty(t, inc.Keywords)
}

func TestValidate_NilKeywordsRejected(t *testing.T) {
	v := New()
	raw := validRaw()
	raw.Keywords = nil

	_, issues := v.Validate(raw)

	require.NotEmpty(t, issues)
	assert.Equal(t, "keywords", issues[0].Path)
}

func TestValidateBatchSafe_MixedBatch(t *testing.T) {
	// Подготовка: один валидный и один битый кандидат.
	v := New()
	bad := validRaw()
	bad.Severity = 10
	bad.Type = "Invalid Type"

	res := v.ValidateBatchSafe([]models.RawIncident{validRaw(), bad})

	// Безопасный вариант никогда не паникует и всегда сообщает все нарушения.
	assert.False(t, res.Success)
	assert.Nil(t, res.Data)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Path, "[1].")
}

func TestValidateBatch_AllValid(t *testing.T) {
	v := New()
	second := validRaw()
	second.NewsID = "test-news-456"
	second.Type = string(models.CrimeProperty)
	second.Severity = 5

	incidents, err := v.ValidateBatch([]models.RawIncident{validRaw(), second})

	require.NoError(t, err)
	assert.Len(t, incidents, 2)
}

func TestValidateBatch_ReportsAllIssues(t *testing.T) {
	v := New()
	bad := validRaw()
	bad.Severity = 0
	bad.Summary = strings.Repeat("x", 120)

	_, err := v.ValidateBatch([]models.RawIncident{bad})

	require.Error(t, err)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Len(t, batchErr.Issues, 2)
}

func TestValidateJSONSafe_MalformedRecord(t *testing.T) {
	v := New()
	payload := []byte(`[
		{"datetime":"2025-08-18T20:15:00Z","coordinates":{"type":"Point","coordinates":[28.0,-26.2]},
		 "type":"Violent Crimes","newsID":"a","severity":3,"keywords":["x"],"summary":"ok"},
		{"datetime":"2025-08-18T20:15:00Z","coordinates":{"type":"Point","coordinates":["not","numbers"]},
		 "type":"Violent Crimes","newsID":"b","severity":3,"keywords":["x"],"summary":"ok"}
	]`)

	res := v.ValidateJSONSafe(payload)

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "[1]", res.Errors[0].Path)
}

func TestValidateJSONSafe_PathsIndexOriginalArray(t *testing.T) {
	// Подготовка: битая запись перед нарушающей схему — пути не должны "съезжать"
	// на позиции после уплотнения.
	v := New()
	payload := []byte(`[
		{"datetime":12345},
		{"datetime":"2025-08-18T20:15:00Z","coordinates":{"type":"Point","coordinates":[28.0,-26.2]},
		 "type":"Violent Crimes","newsID":"a","severity":3,"keywords":["x"],"summary":"ok"},
		{"datetime":"2025-08-18T20:15:00Z","coordinates":{"type":"Point","coordinates":[28.0,-26.2]},
		 "type":"Violent Crimes","newsID":"b","severity":9,"keywords":["x"],"summary":"ok"}
	]`)

	res := v.ValidateJSONSafe(payload)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "[0]", res.Errors[0].Path)
	assert.Equal(t, "[2].severity", res.Errors[1].Path)
}

func TestValidateJSONSafe_NotAnArray(t *testing.T) {
	v := New()

	res := v.ValidateJSONSafe([]byte(`{"datetime":"x"}`))

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
}

func TestValidate_DatetimePreserved(t *testing.T) {
	v := New()
	raw := validRaw()

	inc, issues := v.Validate(raw)

	require.Empty(t, issues)
	expected, _ := time.Parse(time.RFC3339, raw.Datetime)
	assert.True(t, inc.Datetime.Equal(expected))
}

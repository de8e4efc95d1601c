package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shenikar/safety_agent_system/internal/schema"
	"github.com/sirupsen/logrus"
)

// ErrInvalidData возвращается, когда файл результатов непригоден для оценки:
// это не JSON-массив записей. Нарушения схемы сюда не попадают — они часть отчета.
var ErrInvalidData = errors.New("evaluation: invalid JSON file")

// Границы Южной Африки (приблизительные) для проверки точности координат.
// Используются только для скоринга, не для допуска записей в хранилище.
const (
	southAfricaMinLng = 16.0
	southAfricaMaxLng = 33.0
	southAfricaMinLat = -35.0
	southAfricaMaxLat = -22.0
)

// SchemaCheck — итог проверки схемы по пакету.
type SchemaCheck struct {
	Passed bool           `json:"passed"`
	Errors []schema.Issue `json:"errors"`
}

// CoordinateCheck — итог проверки координат по региональным границам.
type CoordinateCheck struct {
	SouthAfricaCount   int `json:"southAfricaCount"`
	InvalidCoordinates int `json:"invalidCoordinates"`
	AccuracyScore      int `json:"accuracyScore"`
}

// Result — полный отчет оценки качества архивного файла.
type Result struct {
	Filename              string          `json:"filename"`
	TotalIncidents        int             `json:"totalIncidents"`
	ValidIncidents        int             `json:"validIncidents"`
	InvalidIncidents      int             `json:"invalidIncidents"`
	SchemaValidation      SchemaCheck     `json:"schemaValidation"`
	CoordinateValidation  CoordinateCheck `json:"coordinateValidation"`
	SeverityDistribution  map[int]int     `json:"severityDistribution"`
	CrimeTypeDistribution map[string]int  `json:"crimeTypeDistribution"`
	OverallScore          int             `json:"overallScore"`
	Recommendations       []string        `json:"recommendations"`
}

// Evaluator оценивает качество пакета инцидентов: соответствие схеме,
// точность координат, распределения и сводный балл.
type Evaluator struct {
	validator *schema.Validator
	logger    *logrus.Logger
}

// NewEvaluator создает новый Evaluator
func NewEvaluator(validator *schema.Validator, logger *logrus.Logger) *Evaluator {
	return &Evaluator{
		validator: validator,
		logger:    logger,
	}
}

// Evaluate разбирает сырой JSON-пакет и строит отчет.
// Ошибка возвращается только на непригодном JSON; нарушения схемы
// и плохие координаты отражаются в отчете, а не прерывают оценку.
func (e *Evaluator) Evaluate(data []byte, filename string) (*Result, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidData, filename, err)
	}

	schemaRes := e.validator.ValidateJSONSafe(data)
	coordRes := checkCoordinates(records)

	valid, invalid := len(records), 0
	if !schemaRes.Success {
		valid, invalid = 0, len(records)
	}

	result := &Result{
		Filename:         filename,
		TotalIncidents:   len(records),
		ValidIncidents:   valid,
		InvalidIncidents: invalid,
		SchemaValidation: SchemaCheck{
			Passed: schemaRes.Success,
			Errors: schemaRes.Errors,
		},
		CoordinateValidation:  coordRes,
		SeverityDistribution:  severityDistribution(records),
		CrimeTypeDistribution: crimeTypeDistribution(records),
	}
	result.OverallScore = overallScore(schemaRes.Success, coordRes, len(records))
	result.Recommendations = recommendations(result)

	e.logger.WithFields(logrus.Fields{
		"component": "evaluation",
		"filename":  filename,
		"incidents": len(records),
		"score":     result.OverallScore,
	}).Info("Evaluation completed")
	return result, nil
}

// checkCoordinates считает записи внутри региональных границ и записи
// с непригодными координатами.
func checkCoordinates(records []map[string]any) CoordinateCheck {
	var inBounds, invalid int
	for _, rec := range records {
		lng, lat, ok := extractCoordinates(rec)
		if !ok {
			invalid++
			continue
		}
		if lng >= southAfricaMinLng && lng <= southAfricaMaxLng &&
			lat >= southAfricaMinLat && lat <= southAfricaMaxLat {
			inBounds++
		}
	}

	accuracy := 0.0
	if usable := len(records) - invalid; usable > 0 {
		accuracy = float64(inBounds) / float64(usable) * 100
	}
	return CoordinateCheck{
		SouthAfricaCount:   inBounds,
		InvalidCoordinates: invalid,
		AccuracyScore:      int(accuracy + 0.5),
	}
}

func extractCoordinates(rec map[string]any) (lng, lat float64, ok bool) {
	point, ok := rec["coordinates"].(map[string]any)
	if !ok {
		return 0, 0, false
	}
	pair, ok := point["coordinates"].([]any)
	if !ok || len(pair) != 2 {
		return 0, 0, false
	}
	lng, lngOK := pair[0].(float64)
	lat, latOK := pair[1].(float64)
	if !lngOK || !latOK {
		return 0, 0, false
	}
	return lng, lat, true
}

func severityDistribution(records []map[string]any) map[int]int {
	dist := map[int]int{}
	for _, rec := range records {
		sev, ok := rec["severity"].(float64)
		if !ok {
			continue
		}
		s := int(sev)
		if float64(s) == sev && s >= 1 && s <= 5 {
			dist[s]++
		}
	}
	return dist
}

func crimeTypeDistribution(records []map[string]any) map[string]int {
	dist := map[string]int{}
	for _, rec := range records {
		if t, ok := rec["type"].(string); ok {
			dist[t]++
		}
	}
	return dist
}

// overallScore — сводный балл: схема 40, точность координат 30,
// полнота данных 20, качество координатных данных 10.
func overallScore(schemaPassed bool, coords CoordinateCheck, total int) int {
	score := 0.0
	if schemaPassed {
		score += 40
	}
	score += float64(coords.AccuracyScore) / 100 * 30
	if total > 0 {
		score += 20
	}
	if coords.InvalidCoordinates == 0 {
		score += 10
	} else {
		validRatio := float64(total-coords.InvalidCoordinates) / float64(total)
		score += validRatio * 10
	}
	return int(score + 0.5)
}

func recommendations(r *Result) []string {
	recs := []string{}

	if !r.SchemaValidation.Passed {
		recs = append(recs, "Fix schema validation errors to ensure data structure compliance")
	}
	if r.CoordinateValidation.AccuracyScore < 80 {
		recs = append(recs, "Improve coordinate accuracy - many incidents appear outside South Africa")
	}
	if r.CoordinateValidation.InvalidCoordinates > 0 {
		recs = append(recs, "Ensure all incidents have valid coordinate data")
	}
	if len(r.SeverityDistribution) == 1 {
		recs = append(recs, "Consider more varied severity scoring for realistic incident assessment")
	}
	if len(r.CrimeTypeDistribution) == 1 {
		recs = append(recs, "Diversify crime type classification for more comprehensive coverage")
	}
	if r.CoordinateValidation.AccuracyScore >= 90 && r.SchemaValidation.Passed {
		recs = append(recs, "Excellent data quality - consider expanding to more detailed incident information")
	}

	return recs
}

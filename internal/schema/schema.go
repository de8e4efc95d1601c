package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/safety_agent_system/internal/models"
)

// Issue — одно структурное нарушение схемы: путь до поля и сообщение.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// BatchError агрегирует все нарушения пакетной валидации.
type BatchError struct {
	Issues []Issue
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("schema: %d validation issue(s), first: %s: %s",
		len(e.Issues), e.Issues[0].Path, e.Issues[0].Message)
}

// BatchResult — результат "безопасной" пакетной валидации.
// При Success=false Data равен nil, а Errors содержит упорядоченный список нарушений.
type BatchResult struct {
	Success bool              `json:"success"`
	Data    []models.Incident `json:"data"`
	Errors  []Issue           `json:"errors"`
}

// Validator проверяет структурный контракт инцидента.
// Чистый и синхронный: без I/O и без общего изменяемого состояния.
type Validator struct {
	validate *validator.Validate
}

// New создает валидатор с зарегистрированными доменными правилами.
func New() *Validator {
	v := validator.New()

	// Пути в ошибках строим по json-тегам, а не по именам полей Go.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("crimetype", func(fl validator.FieldLevel) bool {
		return models.CrimeType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("intlike", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})

	return &Validator{validate: v}
}

// Validate проверяет одного кандидата и возвращает либо инцидент, либо список нарушений.
// Правила применяются в порядке объявления полей RawIncident: datetime, координаты,
// категория, newsID, severity, keywords, summary.
func (v *Validator) Validate(raw models.RawIncident) (*models.Incident, []Issue) {
	if err := v.validate.Struct(raw); err != nil {
		return nil, issuesFromError(err, "")
	}

	dt, err := time.Parse(time.RFC3339, raw.Datetime)
	if err != nil {
		// Недостижимо после rfc3339, но парс ошибки не глотаем.
		return nil, []Issue{{Path: "datetime", Message: "must be a valid ISO-8601 timestamp"}}
	}

	inc := &models.Incident{
		Datetime:    dt,
		Coordinates: models.NewPoint(raw.Coordinates.Coordinates[0], raw.Coordinates.Coordinates[1]),
		Type:        models.CrimeType(raw.Type),
		NewsID:      raw.NewsID,
		Severity:    int(raw.Severity),
		Keywords:    append([]string(nil), raw.Keywords...),
		Summary:     raw.Summary,
	}
	return inc, nil
}

// ValidateBatch проверяет пакет целиком: либо весь пакет валиден,
// либо возвращается ошибка со всеми нарушениями.
func (v *Validator) ValidateBatch(raws []models.RawIncident) ([]models.Incident, error) {
	res := v.ValidateBatchSafe(raws)
	if !res.Success {
		return nil, &BatchError{Issues: res.Errors}
	}
	return res.Data, nil
}

// ValidateBatchSafe — невыбрасывающий вариант пакетной валидации.
// Никогда не паникует; вызывающий сам решает, оставлять ли частичный результат.
func (v *Validator) ValidateBatchSafe(raws []models.RawIncident) BatchResult {
	incidents := make([]models.Incident, 0, len(raws))
	var issues []Issue

	for i, raw := range raws {
		inc, recIssues := v.Validate(raw)
		if len(recIssues) > 0 {
			for _, is := range recIssues {
				issues = append(issues, Issue{
					Path:    fmt.Sprintf("[%d].%s", i, is.Path),
					Message: is.Message,
				})
			}
			continue
		}
		incidents = append(incidents, *inc)
	}

	if len(issues) > 0 {
		return BatchResult{Success: false, Data: nil, Errors: issues}
	}
	return BatchResult{Success: true, Data: incidents, Errors: nil}
}

// ValidateJSONSafe валидирует сырой JSON-массив инцидентов.
// Записи декодируются и проверяются по одной, поэтому одна битая запись не роняет
// весь пакет, а пути нарушений индексируются по исходному массиву.
func (v *Validator) ValidateJSONSafe(data []byte) BatchResult {
	var rawRecords []json.RawMessage
	if err := json.Unmarshal(data, &rawRecords); err != nil {
		return BatchResult{Success: false, Errors: []Issue{{Path: "", Message: "payload must be a JSON array of incidents"}}}
	}

	incidents := make([]models.Incident, 0, len(rawRecords))
	var issues []Issue
	for i, rec := range rawRecords {
		var raw models.RawIncident
		if err := json.Unmarshal(rec, &raw); err != nil {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("[%d]", i),
				Message: fmt.Sprintf("malformed incident record: %v", err),
			})
			continue
		}
		inc, recIssues := v.Validate(raw)
		if len(recIssues) > 0 {
			for _, is := range recIssues {
				issues = append(issues, Issue{
					Path:    fmt.Sprintf("[%d].%s", i, is.Path),
					Message: is.Message,
				})
			}
			continue
		}
		incidents = append(incidents, *inc)
	}

	if len(issues) > 0 {
		return BatchResult{Success: false, Data: nil, Errors: issues}
	}
	return BatchResult{Success: true, Data: incidents, Errors: nil}
}

// issuesFromError переводит ошибки validator/v10 в упорядоченные пары (путь, сообщение).
func issuesFromError(err error, prefix string) []Issue {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{Path: prefix, Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace имеет вид "RawIncident.coordinates.coordinates[0]" — отрезаем корень.
		path := fe.Namespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		issues = append(issues, Issue{Path: prefix + path, Message: issueMessage(fe)})
	}
	return issues
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "rfc3339":
		return "must be a valid ISO-8601 timestamp"
	case "eq":
		return `must be the literal "Point"`
	case "len":
		return "must contain exactly 2 coordinates [lng, lat]"
	case "finite":
		return "coordinate must be a finite number"
	case "crimetype":
		return "must be one of the six crime categories"
	case "intlike", "min", "max":
		if fe.StructField() == "Severity" || fe.Tag() == "intlike" {
			return "must be an integer between 1 and 5"
		}
		return "must be at most 100 characters"
	case "required":
		if strings.HasPrefix(fe.StructField(), "Keywords") {
			if strings.Contains(fe.StructField(), "[") {
				return "keyword must be a non-empty string"
			}
			return "must be an array of strings"
		}
		return "field is required"
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

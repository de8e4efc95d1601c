package tools

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shenikar/safety_agent_system/internal/models"
)

// ExtractToolName — имя инструмента извлечения данных об инциденте.
const ExtractToolName = "extract_incident_data"

// SummaryMaxLen — жесткий лимит длины резюме в символах.
const SummaryMaxLen = 100

// ExtractArgs — аргументы вызова extract_incident_data.
type ExtractArgs struct {
	NewsText string `json:"newsText"`
	Location string `json:"location"`
}

// ExtractionResult — структурированные данные, извлеченные из текста новости.
type ExtractionResult struct {
	Type              models.CrimeType `json:"type"`
	Severity          int              `json:"severity"`
	Keywords          []string         `json:"keywords"`
	Summary           string           `json:"summary"`
	ExtractedLocation string           `json:"extractedLocation"`
}

// keywordBucket — одно правило классификации: категория, ее маркеры
// и типовая тяжесть инцидентов этой категории.
type keywordBucket struct {
	Category models.CrimeType
	Markers  []string
	Severity int
}

// crimeKeywordBuckets — упорядоченная таблица правил классификации.
// Это намеренно простая эвристика, а не NLP: правила проверяются строго
// в этом порядке, и первая категория с совпадением выигрывает. Порядок —
// явный тестируемый артефакт, а не побочный эффект обхода map.
var crimeKeywordBuckets = []keywordBucket{
	{models.CrimeViolent, []string{"assault", "robbery", "mugging", "attack", "violence", "murder", "shooting"}, 4},
	{models.CrimeProperty, []string{"theft", "burglary", "fraud", "scam", "stolen", "break-in"}, 3},
	{models.CrimePublicOrder, []string{"protest", "disturbance", "vandalism", "loitering"}, 3},
	{models.CrimeCyber, []string{"cyber", "online", "digital", "phishing", "hacking"}, 3},
	{models.CrimeOrganised, []string{"syndicate", "gang", "organized", "cartel"}, 4},
	{models.CrimeSexual, []string{"sexual", "harassment", "assault"}, 5},
}

// importantWordPattern выделяет слова из четырех и более символов
// для дополнительных ключевых слов.
var importantWordPattern = regexp.MustCompile(`\b\w{4,}\b`)

// ExtractIncident извлекает категорию, тяжесть, ключевые слова и резюме из текста.
func ExtractIncident(newsText, location string) ExtractionResult {
	lower := strings.ToLower(newsText)

	// Категория и тяжесть по умолчанию, если ни одно правило не сработало.
	category := models.CrimeProperty
	severity := 3
	var keywords []string

	for _, bucket := range crimeKeywordBuckets {
		var matches []string
		for _, marker := range bucket.Markers {
			if strings.Contains(lower, marker) {
				matches = append(matches, marker)
			}
		}
		if len(matches) > 0 {
			category = bucket.Category
			severity = bucket.Severity
			keywords = append(keywords, matches...)
			break
		}
	}

	// Добираем до пяти "важных" слов из текста.
	important := importantWordPattern.FindAllString(lower, -1)
	if len(important) > 5 {
		important = important[:5]
	}
	keywords = append(keywords, important...)
	keywords = dedupeStrings(keywords)
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	return ExtractionResult{
		Type:              category,
		Severity:          severity,
		Keywords:          keywords,
		Summary:           TruncateSummary(newsText),
		ExtractedLocation: location,
	}
}

// TruncateSummary обрезает текст до лимита резюме, считая символы, а не байты.
func TruncateSummary(text string) string {
	runes := []rune(text)
	if len(runes) > SummaryMaxLen {
		runes = runes[:SummaryMaxLen]
	}
	return strings.TrimSpace(string(runes))
}

// dedupeStrings убирает дубликаты, сохраняя порядок первого вхождения.
func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// NewExtractTool создает инструмент extract_incident_data.
func NewExtractTool() Tool {
	return Tool{
		Name:        ExtractToolName,
		Description: "Extract structured incident data from news text",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]ParamDef{
				"newsText": {
					Type:        "string",
					Description: "The news text to extract incident data from",
				},
				"location": {
					Type:        "string",
					Description: "The primary location mentioned",
				},
			},
			Required: []string{"newsText", "location"},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in ExtractArgs
			if err := decodeArgs(ExtractToolName, args, &in); err != nil {
				return nil, err
			}
			return ExtractIncident(in.NewsText, in.Location), nil
		},
	}
}

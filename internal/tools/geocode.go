package tools

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/shenikar/safety_agent_system/internal/models"
)

// GeocodeToolName — имя инструмента геокодирования.
const GeocodeToolName = "geocode_location"

// DefaultCityCentre — центр Йоханнесбурга, точка по умолчанию для
// нераспознанных названий и синтетических инцидентов.
var DefaultCityCentre = models.NewPoint(28.0473, -26.2041)

// GeocodeArgs — аргументы вызова geocode_location.
type GeocodeArgs struct {
	Location string `json:"location"`
}

// GeocodeResult — результат геокодирования.
// Confidence "high" только при точном совпадении с газетиром, иначе "medium".
type GeocodeResult struct {
	Location    string       `json:"location"`
	Coordinates models.Point `json:"coordinates"`
	Confidence  string       `json:"confidence"`
}

// gazetteer — статический справочник южноафриканских локаций, [долгота, широта].
var gazetteer = map[string][2]float64{
	// Йоханнесбург
	"parkhurst":               {28.0093, -26.1414},
	"parkhurst, johannesburg": {28.0093, -26.1414},
	"sandton":                 {28.0473, -26.1076},
	"sandton, johannesburg":   {28.0473, -26.1076},
	"rosebank":                {28.0420, -26.1464},
	"rosebank, johannesburg":  {28.0420, -26.1464},
	"melville":                {28.0093, -26.1809},
	"melville, johannesburg":  {28.0093, -26.1809},
	"johannesburg":            {28.0473, -26.2041},
	"johannesburg cbd":        {28.0473, -26.2041},
	// Кейптаун
	"cape town":              {18.4241, -33.9249},
	"cape town cbd":          {18.4241, -33.9249},
	"camps bay":              {18.3775, -33.9506},
	"camps bay, cape town":   {18.3775, -33.9506},
	"sea point":              {18.3906, -33.9167},
	"sea point, cape town":   {18.3906, -33.9167},
	"observatory":            {18.4733, -33.9333},
	"observatory, cape town": {18.4733, -33.9333},
	// Дурбан
	"durban":           {31.0218, -29.8587},
	"durban cbd":       {31.0218, -29.8587},
	"umhlanga":         {31.0952, -29.7277},
	"umhlanga, durban": {31.0952, -29.7277},
	// Претория
	"pretoria":           {28.1881, -25.7479},
	"pretoria cbd":       {28.1881, -25.7479},
	"hatfield":           {28.2378, -25.7500},
	"hatfield, pretoria": {28.2378, -25.7500},
}

// gazetteerKeys — отсортированные ключи газетира.
// Частичный поиск идет по этому списку, чтобы результат был детерминированным:
// порядок обхода map в Go случаен.
var gazetteerKeys = func() []string {
	keys := make([]string, 0, len(gazetteer))
	for k := range gazetteer {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// GeocodeLocation разрешает свободное название места в точку.
// Сначала точное совпадение, затем частичное; нераспознанное название
// деградирует в точку по умолчанию. Никогда не возвращает ошибку.
func GeocodeLocation(location string) GeocodeResult {
	normalized := strings.ToLower(strings.TrimSpace(location))

	if coords, ok := gazetteer[normalized]; ok {
		return GeocodeResult{
			Location:    location,
			Coordinates: models.NewPoint(coords[0], coords[1]),
			Confidence:  "high",
		}
	}

	if normalized != "" {
		for _, key := range gazetteerKeys {
			if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
				coords := gazetteer[key]
				return GeocodeResult{
					Location:    location,
					Coordinates: models.NewPoint(coords[0], coords[1]),
					Confidence:  "medium",
				}
			}
		}
	}

	return GeocodeResult{
		Location:    location,
		Coordinates: DefaultCityCentre,
		Confidence:  "medium",
	}
}

// NewGeocodeTool создает инструмент geocode_location.
func NewGeocodeTool() Tool {
	return Tool{
		Name:        GeocodeToolName,
		Description: "Convert location names to geographic coordinates (longitude, latitude)",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]ParamDef{
				"location": {
					Type:        "string",
					Description: "The location name to geocode (e.g. 'Parkhurst, Johannesburg')",
				},
			},
			Required: []string{"location"},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in GeocodeArgs
			if err := decodeArgs(GeocodeToolName, args, &in); err != nil {
				return nil, err
			}
			return GeocodeLocation(in.Location), nil
		},
	}
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/shenikar/safety_agent_system/internal/store"
)

// SearchToolName — имя инструмента поиска по локальной базе инцидентов.
const SearchToolName = "search_local_crime_data"

// maxSearchResults ограничивает выдачу поиска.
const maxSearchResults = 5

// SearchArgs — аргументы вызова search_local_crime_data.
type SearchArgs struct {
	Query    string `json:"query"`
	Location string `json:"location,omitempty"`
}

// SearchResultItem — одна запись поисковой выдачи.
type SearchResultItem struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
	Severity int    `json:"severity"`
	Location string `json:"location"`
}

// SearchResult — результат поиска по базе инцидентов.
type SearchResult struct {
	Results        []SearchResultItem `json:"results"`
	SearchQuery    string             `json:"searchQuery"`
	Location       string             `json:"location"`
	TotalResults   int                `json:"totalResults"`
	FoundIncidents []models.Incident  `json:"foundIncidents"`
}

// knownLocations — локации, которые поиск умеет выделять из свободного запроса.
var knownLocations = []string{
	"sandton", "parkhurst", "rosebank", "melville", "bryanston",
	"fourways", "randburg", "alexandra", "soweto", "hillbrow",
	"kempton park", "benoni", "centurion", "pretoria", "johannesburg",
}

// ExtractLocationFromQuery выделяет первую известную локацию из запроса.
// Если ничего не найдено, возвращает Йоханнесбург.
func ExtractLocationFromQuery(query string) string {
	lower := strings.ToLower(query)
	for _, loc := range knownLocations {
		if strings.Contains(lower, loc) {
			return loc
		}
	}
	return "johannesburg"
}

// SearchLocalCrimeData ищет инциденты по подстрочному совпадению запроса и локации.
// Выдача отсортирована от свежих к старым и ограничена maxSearchResults.
func SearchLocalCrimeData(ctx context.Context, st store.IncidentStore, query, location string) (*SearchResult, error) {
	if location == "" {
		location = ExtractLocationFromQuery(query)
	}

	all, err := st.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidents for search: %w", err)
	}

	terms := strings.Fields(strings.ToLower(query))
	locLower := strings.ToLower(location)

	matched := make([]models.Incident, 0)
	for _, inc := range all {
		if incidentMatchesLocation(inc, locLower) || incidentMatchesTerms(inc, terms) {
			matched = append(matched, inc)
		}
	}

	// От свежих к старым.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Datetime.After(matched[j].Datetime)
	})

	top := matched
	if len(top) > maxSearchResults {
		top = top[:maxSearchResults]
	}

	items := make([]SearchResultItem, 0, len(top))
	for _, inc := range top {
		items = append(items, SearchResultItem{
			Title:    fmt.Sprintf("%s - %s", inc.Type, strings.Join(inc.Keywords, ", ")),
			URL:      fmt.Sprintf("https://local-safety-reports.com/incident/%s", inc.NewsID),
			Snippet:  inc.Summary,
			Date:     inc.Datetime.Format("2006-01-02"),
			Severity: inc.Severity,
			Location: displayLocation(inc),
		})
	}

	return &SearchResult{
		Results:        items,
		SearchQuery:    query,
		Location:       location,
		TotalResults:   len(matched),
		FoundIncidents: top,
	}, nil
}

func incidentMatchesLocation(inc models.Incident, locLower string) bool {
	if locLower == "" {
		return false
	}
	for _, kw := range inc.Keywords {
		if strings.Contains(strings.ToLower(kw), locLower) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(inc.NewsID), locLower)
}

func incidentMatchesTerms(inc models.Incident, terms []string) bool {
	summary := strings.ToLower(inc.Summary)
	ctype := strings.ToLower(string(inc.Type))
	for _, term := range terms {
		if strings.Contains(summary, term) || strings.Contains(ctype, term) {
			return true
		}
		for _, kw := range inc.Keywords {
			if strings.Contains(strings.ToLower(kw), term) {
				return true
			}
		}
	}
	return false
}

// displayLocation подбирает человекочитаемую локацию из ключевых слов.
func displayLocation(inc models.Incident) string {
	for _, kw := range inc.Keywords {
		lower := strings.ToLower(kw)
		if strings.Contains(lower, "burg") || strings.Contains(lower, "town") {
			return kw
		}
	}
	return "Johannesburg"
}

// NewSearchTool создает инструмент search_local_crime_data поверх хранилища.
func NewSearchTool(st store.IncidentStore) Tool {
	return Tool{
		Name:        SearchToolName,
		Description: "Search local crime database for safety incidents in specific areas",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]ParamDef{
				"query": {
					Type:        "string",
					Description: "The search query for crime/safety news",
				},
				"location": {
					Type:        "string",
					Description: "The location to focus the search on (e.g. 'Parkhurst', 'Sandton', 'Johannesburg')",
				},
			},
			Required: []string{"query"},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in SearchArgs
			if err := decodeArgs(SearchToolName, args, &in); err != nil {
				return nil, err
			}
			return SearchLocalCrimeData(ctx, st, in.Query, in.Location)
		},
	}
}

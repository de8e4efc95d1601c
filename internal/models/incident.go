package models

import (
	"time"
)

// CrimeType — закрытый набор категорий преступлений.
// Значения сравниваются строго, без приведения регистра.
type CrimeType string

const (
	CrimeViolent     CrimeType = "Violent Crimes"
	CrimeProperty    CrimeType = "Property & Financial Crimes"
	CrimePublicOrder CrimeType = "Public Order & Social Crimes"
	CrimeCyber       CrimeType = "Cyber & Communication Crimes"
	CrimeOrganised   CrimeType = "Organised Crime & Syndicate Operations"
	CrimeSexual      CrimeType = "Sexual Offences"
)

// AllCrimeTypes задает фиксированный порядок категорий.
// Порядок важен: экстрактор проверяет категории именно в этой последовательности,
// и первая совпавшая выигрывает.
var AllCrimeTypes = []CrimeType{
	CrimeViolent,
	CrimeProperty,
	CrimePublicOrder,
	CrimeCyber,
	CrimeOrganised,
	CrimeSexual,
}

// Valid сообщает, входит ли значение в закрытый набор категорий.
func (c CrimeType) Valid() bool {
	for _, t := range AllCrimeTypes {
		if c == t {
			return true
		}
	}
	return false
}

// Point — географическая точка в формате GeoJSON.
// Канонический порядок координат — [долгота, широта]. Обратный порядок — баг.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint создает точку с дискриминатором "Point".
func NewPoint(lng, lat float64) Point {
	return Point{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

func (p Point) Longitude() float64 { return p.Coordinates[0] }
func (p Point) Latitude() float64  { return p.Coordinates[1] }

// Incident — проверенная запись об инциденте безопасности.
// После валидации и записи в хранилище инцидент неизменяем:
// исправление — это новая запись, а не мутация существующей.
type Incident struct {
	Datetime    time.Time `json:"datetime"`
	Coordinates Point     `json:"coordinates"`
	Type        CrimeType `json:"type"`
	NewsID      string    `json:"newsID"`
	Severity    int       `json:"severity"`
	Keywords    []string  `json:"keywords"`
	Summary     string    `json:"summary"`
}

// RawPoint — непроверенная точка из внешнего источника.
// Длина Coordinates намеренно не фиксирована: схема проверяет, что элементов ровно два.
type RawPoint struct {
	Type        string    `json:"type" validate:"required,eq=Point"`
	Coordinates []float64 `json:"coordinates" validate:"len=2,dive,finite"`
}

// RawIncident — непроверенный кандидат в инциденты.
// Поля типизированы свободно, потому что источник (агентный пайплайн) не доверенный.
// Порядок полей задает порядок проверки правил схемы.
type RawIncident struct {
	Datetime    string   `json:"datetime" validate:"required,rfc3339"`
	Coordinates RawPoint `json:"coordinates"`
	Type        string   `json:"type" validate:"required,crimetype"`
	NewsID      string   `json:"newsID" validate:"required"`
	Severity    float64  `json:"severity" validate:"intlike,min=1,max=5"`
	Keywords    []string `json:"keywords" validate:"required,dive,required"`
	Summary     string   `json:"summary" validate:"max=100"`
}

// RawFromIncident переводит проверенный инцидент обратно в кандидата.
// Нужен для закона идемпотентности схемы: валидный инцидент проходит валидацию без изменений.
func RawFromIncident(inc Incident) RawIncident {
	return RawIncident{
		Datetime:    inc.Datetime.Format(time.RFC3339),
		Coordinates: RawPoint{Type: inc.Coordinates.Type, Coordinates: inc.Coordinates.Coordinates[:]},
		Type:        string(inc.Type),
		NewsID:      inc.NewsID,
		Severity:    float64(inc.Severity),
		Keywords:    inc.Keywords,
		Summary:     inc.Summary,
	}
}

package models

// RiskLevel — градация итогового риска по зоне.
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskExtreme RiskLevel = "Extreme"
)

// TrendDirection — направление изменения числа инцидентов между окнами.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// RiskFactor — один взвешенный фактор в составе общей оценки риска.
type RiskFactor struct {
	Type        string  `json:"type"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// TrendAnalysis — сравнение текущего окна с предыдущим окном той же длины.
type TrendAnalysis struct {
	Direction          TrendDirection `json:"direction"`
	ChangePercentage   int            `json:"changePercentage"`
	Timeframe          string         `json:"timeframe"`
	SignificantChanges []string       `json:"significantChanges"`
}

// RiskAssessment — производная оценка риска по зоне.
// Не персистится: пересчитывается по требованию из текущего содержимого хранилища.
type RiskAssessment struct {
	OverallRiskScore int           `json:"overallRiskScore"`
	RiskLevel        RiskLevel     `json:"riskLevel"`
	Factors          []RiskFactor  `json:"factors"`
	Trends           TrendAnalysis `json:"trends"`
	Recommendations  []string      `json:"recommendations"`
	ConfidenceScore  int           `json:"confidenceScore"`
}

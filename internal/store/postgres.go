package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/safety_agent_system/internal/models"
)

// PostgresStore — реализация IncidentStore поверх PostgreSQL/PostGIS.
// Семантика та же, что у MemoryStore: только добавление, без мутаций.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore создает хранилище поверх пула соединений.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const incidentColumns = `
	news_id,
	datetime,
	ST_X(location::geometry) as longitude,
	ST_Y(location::geometry) as latitude,
	type,
	severity,
	keywords,
	summary
`

// Append добавляет инцидент в журнал.
func (s *PostgresStore) Append(ctx context.Context, inc models.Incident) error {
	query := `
		INSERT INTO incidents (news_id, datetime, location, type, severity, keywords, summary)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5, $6, $7, $8);
	`
	_, err := s.db.Exec(ctx, query,
		inc.NewsID,
		inc.Datetime,
		inc.Coordinates.Longitude(),
		inc.Coordinates.Latitude(),
		string(inc.Type),
		inc.Severity,
		inc.Keywords,
		inc.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to append incident: %w", err)
	}
	return nil
}

// All возвращает все инциденты в порядке добавления.
func (s *PostgresStore) All(ctx context.Context) ([]models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY id;`
	return s.queryIncidents(ctx, query)
}

// Since возвращает инциденты не старше заданного окна.
func (s *PostgresStore) Since(ctx context.Context, window time.Duration) ([]models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE datetime > $1 ORDER BY id;`
	return s.queryIncidents(ctx, query, time.Now().Add(-window))
}

// Between возвращает инциденты в интервале [from, to].
func (s *PostgresStore) Between(ctx context.Context, from, to time.Time) ([]models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE datetime BETWEEN $1 AND $2 ORDER BY id;`
	return s.queryIncidents(ctx, query, from, to)
}

// WithinRadius возвращает инциденты в радиусе radiusKm от точки.
func (s *PostgresStore) WithinRadius(ctx context.Context, p models.Point, radiusKm float64) ([]models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE ST_DWithin(
			location,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3
		)
		ORDER BY id;
	`
	return s.queryIncidents(ctx, query, p.Longitude(), p.Latitude(), radiusKm*1000)
}

// Matching возвращает инциденты с подстрочным совпадением по ключевым словам,
// резюме или идентификатору, без учета регистра.
func (s *PostgresStore) Matching(ctx context.Context, text string) ([]models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE summary ILIKE '%' || $1 || '%'
			OR news_id ILIKE '%' || $1 || '%'
			OR EXISTS (
				SELECT 1 FROM unnest(keywords) AS kw WHERE kw ILIKE '%' || $1 || '%'
			)
		ORDER BY id;
	`
	return s.queryIncidents(ctx, query, text)
}

func (s *PostgresStore) queryIncidents(ctx context.Context, query string, args ...any) ([]models.Incident, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]models.Incident, 0)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incident rows: %w", err)
	}
	return incidents, nil
}

func scanIncident(row pgx.Row) (models.Incident, error) {
	var (
		inc      models.Incident
		lng, lat float64
		ctype    string
	)
	err := row.Scan(
		&inc.NewsID,
		&inc.Datetime,
		&lng,
		&lat,
		&ctype,
		&inc.Severity,
		&inc.Keywords,
		&inc.Summary,
	)
	if err != nil {
		return models.Incident{}, fmt.Errorf("failed to scan incident row: %w", err)
	}
	inc.Coordinates = models.NewPoint(lng, lat)
	inc.Type = models.CrimeType(ctype)
	return inc, nil
}

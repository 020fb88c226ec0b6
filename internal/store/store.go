package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a research run id is unknown.
var ErrNotFound = errors.New("research run not found")

// Store persists completed research runs in Postgres.
type Store struct {
	DB *sql.DB
}

// ResearchRun is the durable record of one completed run.
type ResearchRun struct {
	ID          string                   `json:"query_id"`
	Query       string                   `json:"query"`
	MaxSearches int                      `json:"max_searches"`
	MaxResults  int                      `json:"max_results"`
	Results     []map[string]interface{} `json:"results"`
	Comments    string                   `json:"comments"`
	CreatedAt   time.Time                `json:"created_at"`
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// SaveRun stores a completed research run.
func (s *Store) SaveRun(ctx context.Context, run ResearchRun) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO research_runs (id, query, max_searches, max_results, results, comments, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Query, run.MaxSearches, run.MaxResults, results, run.Comments, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save research run: %w", err)
	}
	return nil
}

// GetRun retrieves a stored research run by id.
func (s *Store) GetRun(ctx context.Context, id string) (ResearchRun, error) {
	var (
		run     ResearchRun
		results []byte
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, query, max_searches, max_results, results, comments, created_at
		 FROM research_runs WHERE id=$1`, id).
		Scan(&run.ID, &run.Query, &run.MaxSearches, &run.MaxResults, &results, &run.Comments, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return ResearchRun{}, ErrNotFound
	}
	if err != nil {
		return ResearchRun{}, fmt.Errorf("failed to load research run: %w", err)
	}
	if err := json.Unmarshal(results, &run.Results); err != nil {
		return ResearchRun{}, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return run, nil
}

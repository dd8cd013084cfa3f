package sqlstorage

import (
	"context"
	"fmt"

	"github.com/Fuchsoria/genre-bandit/internal/storage"
	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS feedback_events (
	id         UUID PRIMARY KEY,
	session_id TEXT NOT NULL,
	round      INTEGER NOT NULL,
	arm        INTEGER NOT NULL,
	genre      TEXT NOT NULL,
	reward     SMALLINT NOT NULL CHECK (reward IN (0, 1)),
	policy     TEXT NOT NULL,
	date       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS feedback_events_session_idx ON feedback_events (session_id, round);
CREATE TABLE IF NOT EXISTS simulation_runs (
	id           UUID PRIMARY KEY,
	policy       TEXT NOT NULL,
	rounds       INTEGER NOT NULL,
	epsilon      DOUBLE PRECISION NOT NULL,
	seed         BIGINT NOT NULL,
	best_arm     INTEGER NOT NULL,
	total_reward DOUBLE PRECISION NOT NULL,
	pct_optimal  DOUBLE PRECISION NOT NULL,
	date         TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type Storage struct {
	db *sqlx.DB
}

func New(ctx context.Context, connectionString string) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("cannot open db, %w", err)
	}

	return &Storage{db}, nil
}

func (s *Storage) Connect(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot connect to db, %w", err)
	}

	return nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("cannot apply schema, %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) AddFeedbackEvent(ctx context.Context, event storage.FeedbackEvent) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO feedback_events
		(id, session_id, round, arm, genre, reward, policy, date)
		VALUES (:id, :session_id, :round, :arm, :genre, :reward, :policy, :date)`, event)
	if err != nil {
		return fmt.Errorf("cannot add feedback event, %w", err)
	}

	return nil
}

func (s *Storage) GetFeedbackEvents(ctx context.Context, sessionID string) ([]storage.FeedbackEvent, error) {
	var events []storage.FeedbackEvent

	err := s.db.SelectContext(ctx, &events,
		"SELECT * FROM feedback_events WHERE session_id=$1 ORDER BY round", sessionID)
	if err != nil {
		return nil, fmt.Errorf("cannot get feedback events, %w", err)
	}

	return events, nil
}

func (s *Storage) ClearFeedbackEvents(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM feedback_events WHERE session_id=$1", sessionID); err != nil {
		return fmt.Errorf("cannot clear feedback events, %w", err)
	}

	return nil
}

func (s *Storage) AddSimulationRun(ctx context.Context, run storage.SimulationRun) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO simulation_runs
		(id, policy, rounds, epsilon, seed, best_arm, total_reward, pct_optimal, date)
		VALUES (:id, :policy, :rounds, :epsilon, :seed, :best_arm, :total_reward, :pct_optimal, :date)`, run)
	if err != nil {
		return fmt.Errorf("cannot add simulation run, %w", err)
	}

	return nil
}

func (s *Storage) GetSimulationRuns(ctx context.Context) ([]storage.SimulationRun, error) {
	var runs []storage.SimulationRun

	if err := s.db.SelectContext(ctx, &runs, "SELECT * FROM simulation_runs ORDER BY date"); err != nil {
		return nil, fmt.Errorf("cannot get simulation runs, %w", err)
	}

	return runs, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	List(ctx context.Context, limit int) ([]entity.Result, error)
}

type resultRepository struct {
	conn *sql.DB
}

// NewResultRepository - expects the results table to exist, see storage.SQLiteStorage.Init.
func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

func (that *resultRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT OR REPLACE INTO results (match_id, outcome, winner, rounds, moves, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		result.MatchID, result.Outcome, result.Winner, result.Rounds, result.Moves, result.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

// List - returns the latest results first.
func (that *resultRepository) List(ctx context.Context, limit int) ([]entity.Result, error) {
	query := `SELECT match_id, outcome, winner, rounds, moves, finished_at
		FROM results ORDER BY finished_at DESC, match_id LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}
	defer rows.Close()

	results := make([]entity.Result, 0, limit)
	for rows.Next() {
		var result entity.Result
		if err = rows.Scan(&result.MatchID, &result.Outcome, &result.Winner,
			&result.Rounds, &result.Moves, &result.FinishedAt); err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}

	return results, nil
}

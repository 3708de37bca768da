package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
)

const defaultResultsLimit = 20

type HistoryUseCase interface {
	GetMatch(ctx context.Context, id string) (*entity.Match, error)
	GetBoardAt(ctx context.Context, id string, moves int) (*entity.Board, error)
	ListResults(ctx context.Context, limit int) ([]entity.Result, error)
}

type matchReader interface {
	GetByID(ctx context.Context, id string) (*entity.Match, error)
}

type resultLister interface {
	List(ctx context.Context, limit int) ([]entity.Result, error)
}

type historyUseCase struct {
	matches matchReader
	results resultLister
}

func NewHistoryUseCase(matches matchReader, results resultLister) HistoryUseCase {
	return &historyUseCase{
		matches: matches,
		results: results,
	}
}

func (that *historyUseCase) GetMatch(ctx context.Context, id string) (*entity.Match, error) {
	match, err := that.matches.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}

	return match, nil
}

// GetBoardAt - rebuilds the board after the first moves recorded attempts of a match.
func (that *historyUseCase) GetBoardAt(ctx context.Context, id string, moves int) (*entity.Board, error) {
	match, err := that.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	played := match.PlayedMoves()
	if moves < 0 || moves > len(played) {
		return nil, fmt.Errorf("%w: match %s has %d moves", apperror.ErrNotFound, id, len(played))
	}

	return entity.Replay(played[:moves]), nil
}

func (that *historyUseCase) ListResults(ctx context.Context, limit int) ([]entity.Result, error) {
	if limit <= 0 {
		limit = defaultResultsLimit
	}

	results, err := that.results.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}

package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
)

func newStoredMatch() *entity.Match {
	player1 := entity.Player{ID: entity.Player1, Name: "player1"}
	player2 := entity.Player{ID: entity.Player2, Name: "player2"}

	return &entity.Match{
		ID: "123",
		Moves: []entity.MoveRecord{
			{MoveNumber: 1, Move: entity.NewMove(player1, 4, 4, "")},
			{MoveNumber: 2, Move: entity.NewMove(player2, 0, 0, "Error: move not in active macroboard")},
			{MoveNumber: 2, Move: entity.NewMove(player2, 3, 3, "")},
		},
	}
}

func TestHistoryUseCase_GetBoardAt(t *testing.T) {
	ctx := context.Background()

	t.Run("Rebuilds the board after the first moves", func(t *testing.T) {
		// Given: a stored match with an illegal attempt in the middle
		matches := &mockMatchRepo{}
		matches.On("GetByID", ctx, "123").Return(newStoredMatch(), nil).Once()
		history := NewHistoryUseCase(matches, &mockResultRepo{})

		// When: the board after the first two attempts is requested
		board, err := history.GetBoardAt(ctx, "123", 2)

		// Then: only the legal move is on the board
		require.NoError(t, err)
		assert.Equal(t, entity.Player1, board.Cell(4, 4))
		assert.Equal(t, entity.EmptyCell, board.Cell(0, 0))
		assert.True(t, board.SubBoard(1, 1).IsActive())
		matches.AssertExpectations(t)
	})

	t.Run("Error when the move count is out of range", func(t *testing.T) {
		matches := &mockMatchRepo{}
		matches.On("GetByID", ctx, "123").Return(newStoredMatch(), nil).Once()
		history := NewHistoryUseCase(matches, &mockResultRepo{})

		_, err := history.GetBoardAt(ctx, "123", 4)

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Error when the match is missing", func(t *testing.T) {
		matches := &mockMatchRepo{}
		matches.On("GetByID", ctx, "404").Return(nil, apperror.ErrNotFound).Once()
		history := NewHistoryUseCase(matches, &mockResultRepo{})

		_, err := history.GetBoardAt(ctx, "404", 0)

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestHistoryUseCase_ListResults(t *testing.T) {
	ctx := context.Background()

	t.Run("Uses the default limit", func(t *testing.T) {
		// Given: a result store with one result
		results := &mockResultRepo{}
		results.On("List", ctx, defaultResultsLimit).Return([]entity.Result{{MatchID: "123"}}, nil).Once()
		history := NewHistoryUseCase(&mockMatchRepo{}, results)

		// When: results are listed without a limit
		listed, err := history.ListResults(ctx, 0)

		// Then: the stored results are returned
		require.NoError(t, err)
		assert.Equal(t, []entity.Result{{MatchID: "123"}}, listed)
		results.AssertExpectations(t)
	})

	t.Run("Error from the store", func(t *testing.T) {
		results := &mockResultRepo{}
		results.On("List", ctx, 5).Return(nil, errRedisDown).Once()
		history := NewHistoryUseCase(&mockMatchRepo{}, results)

		_, err := history.ListResults(ctx, 5)

		require.ErrorIs(t, err, errRedisDown)
	})
}

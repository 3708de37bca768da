package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe/testing/suite"
)

func TestResultRepository_Save(t *testing.T) {
	ctx, st := suite.NewSQLite(t)

	resultRepo := NewResultRepository(st.Connection)

	// Given: the result of a finished match
	result := entity.NewResult(newTestMatch("123"))

	// When: Save is called twice for the same match
	require.NoError(t, resultRepo.Save(ctx, result))
	result.Rounds = 2
	require.NoError(t, resultRepo.Save(ctx, result))

	// Then: one row is kept with the latest values
	results, err := resultRepo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "123", results[0].MatchID)
	assert.Equal(t, entity.OutcomeForfeit, results[0].Outcome)
	assert.Equal(t, "player1", results[0].Winner)
	assert.Equal(t, 2, results[0].Rounds)
	assert.Equal(t, 2, results[0].Moves)
	assert.True(t, result.FinishedAt.Equal(results[0].FinishedAt))
}

func TestResultRepository_List(t *testing.T) {
	t.Run("Latest first", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		resultRepo := NewResultRepository(st.Connection)

		// Given: three results finished one minute apart
		base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		for i, id := range []string{"a", "b", "c"} {
			require.NoError(t, resultRepo.Save(ctx, &entity.Result{
				MatchID:    id,
				Outcome:    entity.OutcomeDraw,
				Rounds:     41,
				Moves:      81,
				FinishedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		// When: List is called with a limit of two
		results, err := resultRepo.List(ctx, 2)

		// Then: the two latest results are returned
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "c", results[0].MatchID)
		assert.Equal(t, "b", results[1].MatchID)
		assert.Empty(t, results[0].Winner)
	})

	t.Run("Empty table", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		resultRepo := NewResultRepository(st.Connection)

		// When: List is called on an empty table
		results, err := resultRepo.List(ctx, 10)

		// Then: an empty list is returned
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

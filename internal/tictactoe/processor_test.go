package tictactoe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errBotCrashed = errors.New("bot crashed")

type mockSeat struct {
	mock.Mock

	id   int
	name string
}

func newMockSeat(t *testing.T, id int, name string) *mockSeat {
	t.Helper()

	seat := &mockSeat{id: id, name: name}
	t.Cleanup(func() { seat.AssertExpectations(t) })

	return seat
}

func (that *mockSeat) ID() int {
	return that.id
}

func (that *mockSeat) Name() string {
	return that.name
}

func (that *mockSeat) SendUpdate(_ context.Context, key string, value any) error {
	args := that.Called(key, value)
	return args.Error(0)
}

func (that *mockSeat) RequestMove(_ context.Context, action string) (string, error) {
	args := that.Called(action)
	return args.String(0), args.Error(1)
}

func (that *mockSeat) OutputEngineWarning(message string) {
	that.Called(message)
}

// randomSeat answers with a random legal move on the board.
type randomSeat struct {
	id    int
	board *entity.Board
	rnd   *rand.Rand
	calls int
}

func (that *randomSeat) ID() int      { return that.id }
func (that *randomSeat) Name() string { return fmt.Sprintf("player%d", that.id) }

func (that *randomSeat) SendUpdate(context.Context, string, any) error { return nil }
func (that *randomSeat) OutputEngineWarning(string)                    {}

func (that *randomSeat) RequestMove(context.Context, string) (string, error) {
	that.calls++

	var moves []entity.Position
	for column := 0; column < entity.BoardSize; column++ {
		for row := 0; row < entity.BoardSize; row++ {
			if that.board.Cell(column, row) == entity.EmptyCell && that.board.SubBoard(column/3, row/3).IsActive() {
				moves = append(moves, entity.Position{Column: column, Row: row})
			}
		}
	}

	move := moves[that.rnd.Intn(len(moves))]

	return fmt.Sprintf("place_move %d %d", move.Column, move.Row), nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor(t *testing.T, seats ...Seat) (*Processor, *entity.Board) {
	t.Helper()

	board := entity.NewBoard()
	processor, err := NewProcessor(newTestLogger(), seats, board)
	require.NoError(t, err)

	return processor, board
}

func TestNewProcessor(t *testing.T) {
	t.Run("Error on wrong seat count", func(t *testing.T) {
		// When: a processor is created with a single seat
		_, err := NewProcessor(newTestLogger(), []Seat{newMockSeat(t, 1, "player1")}, entity.NewBoard())

		// Then: ErrInvalidSeats is returned
		require.ErrorIs(t, err, ErrInvalidSeats)
	})

	t.Run("Error on duplicate seat ids", func(t *testing.T) {
		seats := []Seat{newMockSeat(t, 1, "player1"), newMockSeat(t, 1, "player2")}

		_, err := NewProcessor(newTestLogger(), seats, entity.NewBoard())

		require.ErrorIs(t, err, ErrInvalidSeats)
	})

	t.Run("Error on seat id outside 1 and 2", func(t *testing.T) {
		seats := []Seat{newMockSeat(t, 1, "player1"), newMockSeat(t, 3, "player3")}

		_, err := NewProcessor(newTestLogger(), seats, entity.NewBoard())

		require.ErrorIs(t, err, ErrInvalidSeats)
	})
}

func TestProcessor_PlayRound(t *testing.T) {
	ctx := context.Background()

	t.Run("Both seats play a legal move", func(t *testing.T) {
		// Given: two seats answering with legal moves
		seat1 := newMockSeat(t, 1, "player1")
		seat2 := newMockSeat(t, 2, "player2")
		processor, board := newTestProcessor(t, seat1, seat2)

		emptyField := board.String()

		seat1.On("SendUpdate", UpdateRound, 1).Return(nil).Once()
		seat1.On("SendUpdate", UpdateMove, 1).Return(nil).Once()
		seat1.On("SendUpdate", UpdateField, emptyField).Return(nil).Once()
		seat1.On("SendUpdate", UpdateMacroboard, "-1,-1,-1,-1,-1,-1,-1,-1,-1").Return(nil).Once()
		seat1.On("RequestMove", "move").Return("place_move 4 4", nil).Once()

		seat2.On("SendUpdate", UpdateRound, 1).Return(nil).Once()
		seat2.On("SendUpdate", UpdateMove, 2).Return(nil).Once()
		seat2.On("SendUpdate", UpdateField, mock.AnythingOfType("string")).Return(nil).Once()
		seat2.On("SendUpdate", UpdateMacroboard, "0,0,0,0,-1,0,0,0,0").Return(nil).Once()
		seat2.On("RequestMove", "move").Return("place_move 3 3", nil).Once()

		// When: a round is played
		processor.PlayRound(ctx, 1)

		// Then: both moves are on the board
		assert.Equal(t, entity.Player1, board.Cell(4, 4))
		assert.Equal(t, entity.Player2, board.Cell(3, 3))
		assert.Equal(t, []entity.Position{{Column: 0, Row: 0}}, board.ActiveSubBoards())

		// Then: the history and counters are updated
		assert.Equal(t, 1, processor.RoundNumber())
		assert.Equal(t, 3, processor.MoveNumber())
		assert.Equal(t, []entity.Move{
			entity.NewMove(entity.Player{ID: 1, Name: "player1"}, 4, 4, ""),
			entity.NewMove(entity.Player{ID: 2, Name: "player2"}, 3, 3, ""),
		}, processor.Moves())

		records := processor.MoveRecords()
		require.Len(t, records, 2)
		assert.Equal(t, 1, records[0].MoveNumber)
		assert.Equal(t, 2, records[1].MoveNumber)

		assert.False(t, processor.IsGameOver())
		assert.Nil(t, processor.Winner())
		assert.Equal(t, entity.OutcomeOngoing, processor.Outcome().Kind)
	})

	t.Run("Illegal move gets a second attempt", func(t *testing.T) {
		// Given: player 1 first answers with a move out of bounds
		seat1 := newMockSeat(t, 1, "player1")
		seat2 := newMockSeat(t, 2, "player2")
		processor, board := newTestProcessor(t, seat1, seat2)

		seat1.On("SendUpdate", mock.Anything, mock.Anything).Return(nil)
		seat2.On("SendUpdate", mock.Anything, mock.Anything).Return(nil)

		seat1.On("RequestMove", "move").Return("place_move 99 0", nil).Once()
		seat1.On("OutputEngineWarning", "Error: move out of bounds").Return().Once()
		seat1.On("RequestMove", "move").Return("place_move 4 4", nil).Once()
		seat2.On("RequestMove", "move").Return("place_move 4 3", nil).Once()

		// When: a round is played
		processor.PlayRound(ctx, 1)

		// Then: the illegal attempt is recorded and the retry is applied
		moves := processor.Moves()
		require.Len(t, moves, 3)
		assert.Equal(t, entity.NewMove(entity.Player{ID: 1, Name: "player1"}, 99, 0, "Error: move out of bounds"), moves[0])
		assert.True(t, moves[0].IsIllegal())
		assert.False(t, moves[1].IsIllegal())
		assert.Equal(t, entity.Player1, board.Cell(4, 4))
		assert.Equal(t, entity.Player2, board.Cell(4, 3))

		// Then: both attempts share the move number and the game goes on
		records := processor.MoveRecords()
		assert.Equal(t, 1, records[0].MoveNumber)
		assert.Equal(t, 1, records[1].MoveNumber)
		assert.Equal(t, records[0].PreviousField, records[1].PreviousField)
		assert.Equal(t, 3, processor.MoveNumber())
		assert.False(t, processor.IsGameOver())
	})

	t.Run("Two failed attempts forfeit the seat", func(t *testing.T) {
		// Given: player 1 sends garbage twice
		seat1 := newMockSeat(t, 1, "player1")
		seat2 := newMockSeat(t, 2, "player2")
		processor, board := newTestProcessor(t, seat1, seat2)

		seat1.On("SendUpdate", mock.Anything, mock.Anything).Return(nil)
		seat1.On("RequestMove", "move").Return("hello", nil).Twice()
		seat1.On("OutputEngineWarning", "Failed to parse input 'hello'").Return().Twice()

		// When: a round is played
		processor.PlayRound(ctx, 1)

		// Then: the game is over and player 2 wins regardless of the board
		assert.True(t, processor.IsGameOver())
		assert.Equal(t, seat2, processor.Winner())
		assert.True(t, board.IsMoveAvailable())

		outcome := processor.Outcome()
		assert.Equal(t, entity.OutcomeForfeit, outcome.Kind)
		assert.Equal(t, &entity.Player{ID: 2, Name: "player2"}, outcome.Winner)
		assert.Equal(t, &entity.Player{ID: 1, Name: "player1"}, outcome.Loser)

		// Then: player 2 was never asked to move
		seat2.AssertNotCalled(t, "RequestMove", mock.Anything)

		// Then: both failed attempts are recorded
		moves := processor.Moves()
		require.Len(t, moves, 2)
		for _, move := range moves {
			assert.Equal(t, "Error: failed to parse input", move.IllegalMove)
			assert.Equal(t, -1, move.Column)
			assert.Equal(t, -1, move.Row)
		}
		assert.Equal(t, 2, processor.MoveNumber())
	})

	t.Run("Second seat forfeits after a legal first move", func(t *testing.T) {
		// Given: player 2 plays into an inactive sub-board and then fails to answer
		seat1 := newMockSeat(t, 1, "player1")
		seat2 := newMockSeat(t, 2, "player2")
		processor, _ := newTestProcessor(t, seat1, seat2)

		seat1.On("SendUpdate", mock.Anything, mock.Anything).Return(nil)
		seat2.On("SendUpdate", mock.Anything, mock.Anything).Return(nil)

		seat1.On("RequestMove", "move").Return("place_move 4 4", nil).Once()
		seat2.On("RequestMove", "move").Return("place_move 0 0", nil).Once()
		seat2.On("OutputEngineWarning", "Error: move not in active macroboard").Return().Once()
		seat2.On("RequestMove", "move").Return("", errBotCrashed).Once()
		seat2.On("OutputEngineWarning", "Failed to parse input ''").Return().Once()

		// When: a round is played
		processor.PlayRound(ctx, 1)

		// Then: player 1 wins by forfeit
		assert.True(t, processor.IsGameOver())
		assert.Equal(t, seat1, processor.Winner())
		assert.Equal(t, entity.OutcomeForfeit, processor.Outcome().Kind)
	})

	t.Run("Failed update does not stop the turn", func(t *testing.T) {
		// Given: updates to player 1 fail
		seat1 := newMockSeat(t, 1, "player1")
		seat2 := newMockSeat(t, 2, "player2")
		processor, board := newTestProcessor(t, seat1, seat2)

		seat1.On("SendUpdate", mock.Anything, mock.Anything).Return(errBotCrashed)
		seat2.On("SendUpdate", mock.Anything, mock.Anything).Return(nil)
		seat1.On("RequestMove", "move").Return("place_move 0 0", nil).Once()
		seat2.On("RequestMove", "move").Return("place_move 1 1", nil).Once()

		// When: a round is played
		processor.PlayRound(ctx, 1)

		// Then: the moves are still applied
		assert.Equal(t, entity.Player1, board.Cell(0, 0))
		assert.Equal(t, entity.Player2, board.Cell(1, 1))
	})

	t.Run("Finished game plays no more turns", func(t *testing.T) {
		// Given: a match already decided by forfeit
		seat1 := newMockSeat(t, 1, "player1")
		seat2 := newMockSeat(t, 2, "player2")
		processor, _ := newTestProcessor(t, seat1, seat2)

		seat1.On("SendUpdate", mock.Anything, mock.Anything).Return(nil)
		seat1.On("RequestMove", "move").Return("place_move x y", nil).Twice()
		seat1.On("OutputEngineWarning", "Failed to parse input 'place_move x y'").Return().Twice()
		processor.PlayRound(ctx, 1)

		// When: another round is played
		processor.PlayRound(ctx, 2)

		// Then: nobody is asked again
		seat1.AssertNumberOfCalls(t, "RequestMove", 2)
		seat2.AssertNotCalled(t, "RequestMove", mock.Anything)
		assert.Equal(t, 2, processor.RoundNumber())
		assert.Len(t, processor.Moves(), 2)
	})
}

func TestProcessor_FullGame(t *testing.T) {
	ctx := context.Background()

	for seed := int64(1); seed <= 20; seed++ {
		// Given: two seats playing random legal moves
		board := entity.NewBoard()
		rnd := rand.New(rand.NewSource(seed)) //nolint: gosec // deterministic test games
		seat1 := &randomSeat{id: entity.Player1, board: board, rnd: rnd}
		seat2 := &randomSeat{id: entity.Player2, board: board, rnd: rnd}

		processor, err := NewProcessor(newTestLogger(), []Seat{seat1, seat2}, board)
		require.NoError(t, err)

		// When: rounds are played until the game is over
		round := 1
		for ; !processor.IsGameOver(); round++ {
			require.LessOrEqual(t, round, 41, "a game cannot last longer than 81 moves")
			processor.PlayRound(ctx, round)
		}

		// Then: every turn produced exactly one legal move
		moves := processor.Moves()
		assert.Len(t, moves, seat1.calls+seat2.calls)
		assert.Equal(t, len(moves)+1, processor.MoveNumber())
		for _, move := range moves {
			assert.False(t, move.IsIllegal())
		}

		// Then: the outcome matches the board
		outcome := processor.Outcome()
		winner := processor.Winner()
		switch {
		case winner != nil:
			assert.Equal(t, board.Winner(), winner.ID())
			assert.Equal(t, entity.OutcomeWin, outcome.Kind)
			assert.Equal(t, winner.ID(), outcome.Winner.ID)
		default:
			assert.False(t, board.IsMoveAvailable())
			assert.Equal(t, entity.OutcomeDraw, outcome.Kind)
			assert.Nil(t, outcome.Winner)
		}

		// Then: replaying the recorded moves rebuilds the same board
		replayed := entity.Replay(moves)
		assert.Equal(t, board.String(), replayed.String())
		assert.Equal(t, board.MacroboardString(), replayed.MacroboardString())
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr bool
	}{
		{name: "integers", input: "place_move 4 4", want: Command{Column: 4, Row: 4}},
		{name: "decimals are truncated", input: "place_move 4.9 2.1", want: Command{Column: 4, Row: 2}},
		{name: "extra whitespace", input: "  place_move\t3   5 \n", want: Command{Column: 3, Row: 5}},
		{name: "out of range numbers still parse", input: "place_move 99 0", want: Command{Column: 99, Row: 0}},
		{name: "unknown command", input: "move 1 2", wantErr: true},
		{name: "empty input", input: "", wantErr: true},
		{name: "missing row", input: "place_move 1", wantErr: true},
		{name: "non numeric column", input: "place_move a 1", wantErr: true},
		{name: "not a number", input: "place_move NaN 1", wantErr: true},
		{name: "huge number", input: "place_move 1 1e300", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, err := ParseCommand(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, command)
		})
	}
}

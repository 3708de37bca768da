package tictactoe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
)

const (
	seatCount = 2

	actionMove = "move"

	UpdateRound      = "round"
	UpdateMove       = "move"
	UpdateField      = "field"
	UpdateMacroboard = "macroboard"
)

var ErrInvalidSeats = errors.New("invalid seats")

// Seat is what the processor needs from the host for one player.
type Seat interface {
	ID() int
	Name() string

	SendUpdate(ctx context.Context, key string, value any) error
	RequestMove(ctx context.Context, action string) (string, error)
	OutputEngineWarning(message string)
}

// Processor plays rounds on a board: it asks every seat for a move, gives one retry
// on bad input and forfeits a seat that fails twice in the same turn.
type Processor struct {
	logger *slog.Logger

	seats []Seat
	board *entity.Board

	moveNumber  int
	roundNumber int
	moves       []entity.Move
	records     []entity.MoveRecord

	forfeited Seat
}

func NewProcessor(logger *slog.Logger, seats []Seat, board *entity.Board) (*Processor, error) {
	if len(seats) != seatCount {
		return nil, fmt.Errorf("%w: need %d seats, got %d", ErrInvalidSeats, seatCount, len(seats))
	}

	if seats[0].ID() == seats[1].ID() {
		return nil, fmt.Errorf("%w: duplicate seat id %d", ErrInvalidSeats, seats[0].ID())
	}

	for _, seat := range seats {
		if seat.ID() != entity.Player1 && seat.ID() != entity.Player2 {
			return nil, fmt.Errorf("%w: seat id %d", ErrInvalidSeats, seat.ID())
		}
	}

	return &Processor{
		logger:     logger.With("component", "processor"),
		seats:      seats,
		board:      board,
		moveNumber: 1,
	}, nil
}

// PlayRound - gives every seat one turn, unless the game ends first.
func (that *Processor) PlayRound(ctx context.Context, roundNumber int) {
	log := that.logger.With("method", "PlayRound", "round", roundNumber)
	log.Debug("playing round")

	that.roundNumber = roundNumber

	for _, seat := range that.seats {
		if that.IsGameOver() {
			break
		}

		that.sendUpdates(ctx, seat, roundNumber)

		if !that.takeTurn(ctx, seat) && !that.takeTurn(ctx, seat) {
			log.Info("seat forfeited after repeated errors", "seat", seat.Name())
			that.forfeited = seat
		}

		that.moveNumber++
	}

	if log.Enabled(ctx, slog.LevelDebug) {
		log.Debug("round finished", "board", that.board.Dump())
	}
}

func (that *Processor) sendUpdates(ctx context.Context, seat Seat, roundNumber int) {
	updates := []struct {
		key   string
		value any
	}{
		{UpdateRound, roundNumber},
		{UpdateMove, that.moveNumber},
		{UpdateField, that.board.String()},
		{UpdateMacroboard, that.board.MacroboardString()},
	}

	for _, update := range updates {
		if err := seat.SendUpdate(ctx, update.key, update.value); err != nil {
			that.logger.Warn("failed to send update", "seat", seat.Name(), "key", update.key, "error", err)
		}
	}
}

// takeTurn - requests a move from the seat and applies it. Returns false on a failed attempt.
func (that *Processor) takeTurn(ctx context.Context, seat Seat) bool {
	response, err := seat.RequestMove(ctx, actionMove)
	if err != nil {
		that.logger.Warn("no move received", "seat", seat.Name(), "error", err)
		response = ""
	}

	return that.parseResponse(response, seat)
}

// parseResponse - parses the response and places it on the board. Every attempt is recorded.
func (that *Processor) parseResponse(response string, seat Seat) bool {
	previousField := that.board.PresentationString(seat.ID(), true)

	command, err := ParseCommand(response)
	if err != nil {
		that.board.SetLastError(apperror.ErrParseInput)
		seat.OutputEngineWarning(fmt.Sprintf("Failed to parse input '%s'", response))
		that.recordMove(seat, -1, -1, previousField)

		return false
	}

	ok := that.board.AddMove(command.Column, command.Row, seat.ID())
	if !ok {
		seat.OutputEngineWarning(that.board.LastError())
	}

	that.recordMove(seat, command.Column, command.Row, previousField)

	return ok
}

func (that *Processor) recordMove(seat Seat, column, row int, previousField string) {
	move := entity.NewMove(playerOf(seat), column, row, that.board.LastError())
	that.moves = append(that.moves, move)

	that.records = append(that.records, entity.MoveRecord{
		MoveNumber:    that.moveNumber,
		Move:          move,
		PreviousField: previousField,
		Field:         that.board.PresentationString(seat.ID(), false),
	})
}

// Winner - returns the winning seat or nil. A forfeit overrides the board.
func (that *Processor) Winner() Seat {
	if that.forfeited != nil {
		return that.opponentOf(that.forfeited)
	}

	winnerID := that.board.Winner()
	if winnerID == entity.EmptyCell {
		return nil
	}

	for _, seat := range that.seats {
		if seat.ID() == winnerID {
			return seat
		}
	}

	return nil
}

func (that *Processor) IsGameOver() bool {
	return !that.board.IsMoveAvailable() || that.Winner() != nil
}

// Outcome - returns the tagged result of the match so far.
func (that *Processor) Outcome() entity.Outcome {
	if that.forfeited != nil {
		winner := playerOf(that.opponentOf(that.forfeited))
		loser := playerOf(that.forfeited)

		return entity.Outcome{Kind: entity.OutcomeForfeit, Winner: &winner, Loser: &loser}
	}

	if winner := that.Winner(); winner != nil {
		player := playerOf(winner)
		loser := playerOf(that.opponentOf(winner))

		return entity.Outcome{Kind: entity.OutcomeWin, Winner: &player, Loser: &loser}
	}

	if !that.board.IsMoveAvailable() {
		return entity.Outcome{Kind: entity.OutcomeDraw}
	}

	return entity.Outcome{Kind: entity.OutcomeOngoing}
}

func (that *Processor) RoundNumber() int {
	return that.roundNumber
}

// MoveNumber - returns the number the next turn will get.
func (that *Processor) MoveNumber() int {
	return that.moveNumber
}

// Moves - returns every recorded attempt in play order.
func (that *Processor) Moves() []entity.Move {
	moves := make([]entity.Move, len(that.moves))
	copy(moves, that.moves)

	return moves
}

func (that *Processor) MoveRecords() []entity.MoveRecord {
	records := make([]entity.MoveRecord, len(that.records))
	copy(records, that.records)

	return records
}

func (that *Processor) Board() *entity.Board {
	return that.board
}

// Players - returns the seats as players, in seat order.
func (that *Processor) Players() []entity.Player {
	players := make([]entity.Player, 0, len(that.seats))
	for _, seat := range that.seats {
		players = append(players, playerOf(seat))
	}

	return players
}

func (that *Processor) opponentOf(seat Seat) Seat {
	for _, other := range that.seats {
		if other.ID() != seat.ID() {
			return other
		}
	}

	return nil
}

func playerOf(seat Seat) entity.Player {
	return entity.Player{ID: seat.ID(), Name: seat.Name()}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/tictactoe"
)

// RandomCommand is the bot command that plays in-process with RandomPlayer.
const RandomCommand = "builtin:random"

const (
	cellsCount  = entity.BoardSize * entity.BoardSize
	macroCount  = entity.MacroSize * entity.MacroSize
	emptyCode   = "0"
	activeCode  = "-1"
	noMoveReply = "pass"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// RandomPlayer is an in-process bot that plays a random legal move from the last field it was sent.
type RandomPlayer struct {
	id   int
	name string
	rnd  *rand.Rand

	field      []string
	macroboard []string
	warnings   []string
}

func NewRandom(id int, name string, seed int64) *RandomPlayer {
	return &RandomPlayer{
		id:   id,
		name: name,
		rnd:  rand.New(rand.NewSource(seed)), //nolint: gosec // it's ok
	}
}

func (that *RandomPlayer) ID() int {
	return that.id
}

func (that *RandomPlayer) Name() string {
	return that.name
}

func (that *RandomPlayer) SendSetting(context.Context, string, any) error {
	return nil
}

func (that *RandomPlayer) SendUpdate(_ context.Context, key string, value any) error {
	switch key {
	case tictactoe.UpdateField:
		that.field = strings.Split(fmt.Sprint(value), ",")
	case tictactoe.UpdateMacroboard:
		that.macroboard = strings.Split(fmt.Sprint(value), ",")
	}

	return nil
}

func (that *RandomPlayer) RequestMove(context.Context, string) (string, error) {
	position, err := that.chooseMove()
	if err != nil {
		return noMoveReply, nil
	}

	return fmt.Sprintf("place_move %d %d", position.Column, position.Row), nil
}

func (that *RandomPlayer) OutputEngineWarning(message string) {
	that.warnings = append(that.warnings, message)
}

func (that *RandomPlayer) Warnings() []string {
	warnings := make([]string, len(that.warnings))
	copy(warnings, that.warnings)

	return warnings
}

func (that *RandomPlayer) Close() error {
	return nil
}

func (that *RandomPlayer) chooseMove() (entity.Position, error) {
	if len(that.field) != cellsCount || len(that.macroboard) != macroCount {
		return entity.Position{}, ErrNoAvailableMoves
	}

	available := make([]entity.Position, 0, cellsCount)
	for i, cell := range that.field {
		column, row := i%entity.BoardSize, i/entity.BoardSize
		macro := (row/entity.MacroSize)*entity.MacroSize + column/entity.MacroSize

		if cell == emptyCode && that.macroboard[macro] == activeCode {
			available = append(available, entity.Position{Column: column, Row: row})
		}
	}

	if len(available) == 0 {
		return entity.Position{}, ErrNoAvailableMoves
	}

	return available[that.rnd.Intn(len(available))], nil
}

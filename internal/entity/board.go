package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
)

const (
	EmptyCell = 0
	Player1   = 1
	Player2   = 2

	BoardSize = 9
	MacroSize = 3

	subSize = BoardSize / MacroSize
)

// Presentation bits, LSB first.
const (
	bitPlayer1 = 1 << iota
	bitPlayer2
	bitActivePlayer1
	bitActivePlayer2
	bitTakenPlayer1
	bitTakenPlayer2
)

// WinCombos - lines of a 3x3 grid flattened as y*3+x: rows, columns, diagonals.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Position struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Board holds the 9x9 cell grid and the 3x3 macroboard. Cells and macroboard are indexed [column][row].
type Board struct {
	cells      [BoardSize][BoardSize]int
	macroboard [MacroSize][MacroSize]SubBoardStatus
	lastMove   *Position
	lastErr    error
}

// NewBoard - creates an empty board. With no move played yet every sub-board is active.
func NewBoard() *Board {
	board := &Board{}
	board.updateMacroboard()

	return board
}

// AddMove - places playerID at (column, row). Returns false and keeps the reason in LastError when the move is illegal.
func (that *Board) AddMove(column, row, playerID int) bool {
	that.lastErr = nil

	if err := that.validateMove(column, row, playerID); err != nil {
		that.lastErr = err
		return false
	}

	that.cells[column][row] = playerID
	that.lastMove = &Position{Column: column, Row: row}
	that.updateMacroboard()

	return true
}

func (that *Board) validateMove(column, row, playerID int) error {
	if column < 0 || row < 0 || column >= BoardSize || row >= BoardSize {
		return apperror.ErrMoveOutOfBounds
	}

	if playerID != Player1 && playerID != Player2 {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidPlayer, playerID)
	}

	if that.cells[column][row] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	if !that.macroboard[column/subSize][row/subSize].IsActive() {
		return apperror.ErrNotActiveMacroboard
	}

	return nil
}

// Err - returns the reason the last AddMove was rejected, nil after a legal move.
func (that *Board) Err() error {
	return that.lastErr
}

// LastError - returns the rejection message sent to players, empty after a legal move.
func (that *Board) LastError() string {
	if that.lastErr == nil {
		return ""
	}

	return "Error: " + that.lastErr.Error()
}

func (that *Board) SetLastError(err error) {
	that.lastErr = err
}

func (that *Board) LastMove() (Position, bool) {
	if that.lastMove == nil {
		return Position{}, false
	}

	return *that.lastMove, true
}

// Cell - returns the player id at (column, row), EmptyCell outside the board.
func (that *Board) Cell(column, row int) int {
	if column < 0 || row < 0 || column >= BoardSize || row >= BoardSize {
		return EmptyCell
	}

	return that.cells[column][row]
}

func (that *Board) SubBoard(x, y int) SubBoardStatus {
	return that.macroboard[x][y]
}

// ActiveSubBoards - returns the sub-boards the next move may land in, row-major.
func (that *Board) ActiveSubBoards() []Position {
	var active []Position

	for y := 0; y < MacroSize; y++ {
		for x := 0; x < MacroSize; x++ {
			if that.macroboard[x][y].IsActive() {
				active = append(active, Position{Column: x, Row: y})
			}
		}
	}

	return active
}

// Winner - returns the player id owning three sub-boards in a row, or EmptyCell.
func (that *Board) Winner() int {
	that.updateMacroboard()

	var owners [9]int
	for y := 0; y < MacroSize; y++ {
		for x := 0; x < MacroSize; x++ {
			owners[y*MacroSize+x] = that.macroboard[x][y].Owner()
		}
	}

	return lineWinner(owners)
}

// IsMoveAvailable - reports whether any sub-board is neither decided nor full.
func (that *Board) IsMoveAvailable() bool {
	for y := 0; y < MacroSize; y++ {
		for x := 0; x < MacroSize; x++ {
			if !that.isSubBoardClosed(x, y) {
				return true
			}
		}
	}

	return false
}

// updateMacroboard - recomputes sub-board winners, then marks the sub-board(s) the next move must land in.
func (that *Board) updateMacroboard() {
	for x := 0; x < MacroSize; x++ {
		for y := 0; y < MacroSize; y++ {
			if winner := that.subBoardWinner(x, y); winner != EmptyCell {
				that.macroboard[x][y] = WonSubBoard(winner)
			} else {
				that.macroboard[x][y] = OpenSubBoard()
			}
		}
	}

	if that.lastMove != nil {
		targetX, targetY := that.lastMove.Column%subSize, that.lastMove.Row%subSize
		if !that.isSubBoardClosed(targetX, targetY) {
			that.macroboard[targetX][targetY] = ActiveSubBoard()
			return
		}
	}

	for x := 0; x < MacroSize; x++ {
		for y := 0; y < MacroSize; y++ {
			if !that.isSubBoardClosed(x, y) {
				that.macroboard[x][y] = ActiveSubBoard()
			}
		}
	}
}

// isSubBoardClosed - a sub-board is closed when it is decided or every cell is taken.
func (that *Board) isSubBoardClosed(x, y int) bool {
	return that.macroboard[x][y].IsDecided() || that.isSubBoardFull(x, y)
}

func (that *Board) isSubBoardFull(x, y int) bool {
	for row := y * subSize; row < y*subSize+subSize; row++ {
		for column := x * subSize; column < x*subSize+subSize; column++ {
			if that.cells[column][row] == EmptyCell {
				return false
			}
		}
	}

	return true
}

func (that *Board) subBoardWinner(x, y int) int {
	var grid [9]int
	for row := 0; row < subSize; row++ {
		for column := 0; column < subSize; column++ {
			grid[row*subSize+column] = that.cells[x*subSize+column][y*subSize+row]
		}
	}

	return lineWinner(grid)
}

func lineWinner(grid [9]int) int {
	for _, combo := range WinCombos {
		a, b, c := grid[combo[0]], grid[combo[1]], grid[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

// String - comma separated player ids of all 81 cells, row-major.
func (that *Board) String() string {
	values := make([]string, 0, BoardSize*BoardSize)
	for row := 0; row < BoardSize; row++ {
		for column := 0; column < BoardSize; column++ {
			values = append(values, strconv.Itoa(that.cells[column][row]))
		}
	}

	return strings.Join(values, ",")
}

// MacroboardString - comma separated macroboard codes, row-major: 0 open, 1/2 won, -1 active.
func (that *Board) MacroboardString() string {
	values := make([]string, 0, MacroSize*MacroSize)
	for y := 0; y < MacroSize; y++ {
		for x := 0; x < MacroSize; x++ {
			values = append(values, strconv.Itoa(that.macroboard[x][y].Code()))
		}
	}

	return strings.Join(values, ",")
}

// PresentationString - comma separated bitmask per cell as seen by viewer.
//
//	bit 0: player 1
//	bit 1: player 2
//	bit 2: possible move for player 1
//	bit 3: possible move for player 2
//	bit 4: sub-board taken by player 1
//	bit 5: sub-board taken by player 2
func (that *Board) PresentationString(viewer int, showPossibleMoves bool) string {
	values := make([]string, 0, BoardSize*BoardSize)
	for row := 0; row < BoardSize; row++ {
		for column := 0; column < BoardSize; column++ {
			values = append(values, strconv.Itoa(that.cellBits(column, row, viewer, showPossibleMoves)))
		}
	}

	return strings.Join(values, ",")
}

func (that *Board) cellBits(column, row, viewer int, showPossibleMoves bool) int {
	bits := 0
	cell := that.cells[column][row]
	status := that.macroboard[column/subSize][row/subSize]

	switch cell {
	case Player1:
		bits |= bitPlayer1
	case Player2:
		bits |= bitPlayer2
	}

	if showPossibleMoves && cell == EmptyCell && status.IsActive() {
		switch viewer {
		case Player1:
			bits |= bitActivePlayer1
		case Player2:
			bits |= bitActivePlayer2
		}
	}

	switch status.Owner() {
	case Player1:
		bits |= bitTakenPlayer1
	case Player2:
		bits |= bitTakenPlayer2
	}

	return bits
}

// Dump - renders the board for debug logs; the last move is marked with '*'.
func (that *Board) Dump() string {
	var sb strings.Builder

	for row := 0; row < BoardSize; row++ {
		for column := 0; column < BoardSize; column++ {
			sb.WriteString(strconv.Itoa(that.cells[column][row]))
			if column == BoardSize-1 {
				continue
			}

			separator := ", "
			if column%subSize == subSize-1 {
				separator = "| "
			}
			if that.lastMove != nil && that.lastMove.Column == column && that.lastMove.Row == row {
				separator = "* "
			}
			sb.WriteString(separator)
		}

		if row%subSize == subSize-1 && row != BoardSize-1 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat("---", BoardSize-1))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Macroboard:\n")
	for y := 0; y < MacroSize; y++ {
		for x := 0; x < MacroSize; x++ {
			fmt.Fprintf(&sb, "%-3d", that.macroboard[x][y].Code())
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Replay - builds a fresh board from recorded moves, skipping illegal attempts.
func Replay(moves []Move) *Board {
	board := NewBoard()

	for _, move := range moves {
		if move.IsIllegal() {
			continue
		}

		board.AddMove(move.Column, move.Row, move.Player.ID)
	}

	return board
}

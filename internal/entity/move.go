package entity

// Move is one attempt by a player. Column and Row are -1 when the input could not be parsed.
type Move struct {
	Player      Player `json:"player"`
	Column      int    `json:"column"`
	Row         int    `json:"row"`
	IllegalMove string `json:"illegal_move,omitempty"`
}

func NewMove(player Player, column, row int, illegalMove string) Move {
	return Move{
		Player:      player,
		Column:      column,
		Row:         row,
		IllegalMove: illegalMove,
	}
}

func (that Move) IsIllegal() bool {
	return that.IllegalMove != ""
}

// MoveRecord pairs a move with the presentation strings of the board before and after it,
// both from the acting player's point of view.
type MoveRecord struct {
	MoveNumber    int    `json:"move_number"`
	Move          Move   `json:"move"`
	PreviousField string `json:"previous_field"`
	Field         string `json:"field"`
}

package entity

import "time"

// Match is the persisted record of a played match.
type Match struct {
	ID         string       `json:"id"`
	Players    []Player     `json:"players"`
	Rounds     int          `json:"rounds"`
	Outcome    Outcome      `json:"outcome"`
	Field      string       `json:"field"`
	Macroboard string       `json:"macroboard"`
	Moves      []MoveRecord `json:"moves"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// PlayedMoves - returns the moves of the match in play order.
func (that *Match) PlayedMoves() []Move {
	moves := make([]Move, 0, len(that.Moves))
	for _, record := range that.Moves {
		moves = append(moves, record.Move)
	}

	return moves
}

// Result is the summary row kept for every finished match.
type Result struct {
	MatchID    string    `json:"match_id"`
	Outcome    string    `json:"outcome"`
	Winner     string    `json:"winner,omitempty"`
	Rounds     int       `json:"rounds"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewResult(match *Match) *Result {
	return &Result{
		MatchID:    match.ID,
		Outcome:    match.Outcome.Kind,
		Winner:     match.Outcome.WinnerName(),
		Rounds:     match.Rounds,
		Moves:      len(match.Moves),
		FinishedAt: match.FinishedAt,
	}
}

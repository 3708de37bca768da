package entity

const (
	OutcomeOngoing = "ongoing"
	OutcomeWin     = "win"
	OutcomeDraw    = "draw"
	OutcomeForfeit = "forfeit"
)

// Outcome is the result of a match. Forfeit is only produced by the round processor,
// Win and Draw come from the board.
type Outcome struct {
	Kind   string  `json:"kind"`
	Winner *Player `json:"winner,omitempty"`
	Loser  *Player `json:"loser,omitempty"`
}

func (that Outcome) IsOver() bool {
	return that.Kind != OutcomeOngoing
}

func (that Outcome) IsForfeit() bool {
	return that.Kind == OutcomeForfeit
}

func (that Outcome) IsDraw() bool {
	return that.Kind == OutcomeDraw
}

// WinnerName - returns the winner's name or an empty string when nobody won.
func (that Outcome) WinnerName() string {
	if that.Winner == nil {
		return ""
	}

	return that.Winner.Name
}

package entity

// SubBoardState is the kind of status a sub-board holds on the macroboard.
type SubBoardState int

const (
	SubBoardOpen SubBoardState = iota
	SubBoardWon
	SubBoardActive
)

// Wire codes of the macroboard listing.
const (
	codeOpen   = 0
	codeActive = -1
)

// SubBoardStatus is a tagged sub-board status: open, won by a player, or active.
// Active is derived and recomputed after every move.
type SubBoardStatus struct {
	State  SubBoardState
	Winner int
}

func OpenSubBoard() SubBoardStatus {
	return SubBoardStatus{State: SubBoardOpen}
}

func WonSubBoard(playerID int) SubBoardStatus {
	return SubBoardStatus{State: SubBoardWon, Winner: playerID}
}

func ActiveSubBoard() SubBoardStatus {
	return SubBoardStatus{State: SubBoardActive}
}

func (that SubBoardStatus) IsDecided() bool {
	return that.State == SubBoardWon
}

func (that SubBoardStatus) IsActive() bool {
	return that.State == SubBoardActive
}

// Owner - returns the winning player id or EmptyCell when the sub-board is not won.
func (that SubBoardStatus) Owner() int {
	if that.State == SubBoardWon {
		return that.Winner
	}

	return EmptyCell
}

// Code - returns the macroboard wire value: 0 open, 1/2 won, -1 active.
func (that SubBoardStatus) Code() int {
	switch that.State {
	case SubBoardWon:
		return that.Winner
	case SubBoardActive:
		return codeActive
	default:
		return codeOpen
	}
}

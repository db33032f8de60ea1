package entity

type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"

	// Empty marks a cell nobody has played yet.
	Empty Mark = ""
)

const BoardSize = 9

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// WinCombos are the 8 lines in the order they are checked: rows, columns, diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a row-major 3x3 grid. It is an array so assignment copies it.
type Board [BoardSize]Mark

// Outcome is derived from a Board and never stored alongside it.
type Outcome struct {
	Status Status `json:"status"`
	Winner Mark   `json:"winner,omitempty"`
}

// Winner - returns the mark that completed a line, or Empty.
func (that Board) Winner() Mark {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != Empty && a == b && b == c {
			return a
		}
	}

	return Empty
}

// Evaluate - same as b.Winner.
func Evaluate(b Board) Mark {
	return b.Winner()
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

func (that Board) IsEmpty(cell int) bool {
	return that[cell] == Empty
}

// With - returns a copy of the board with mark placed at cell. The receiver is not modified.
func (that Board) With(cell int, mark Mark) Board {
	that[cell] = mark
	return that
}

// OutcomeOf - a win takes priority over a full board.
func OutcomeOf(b Board) Outcome {
	if winner := b.Winner(); winner != Empty {
		return Outcome{Status: StatusWon, Winner: winner}
	}

	if b.IsFull() {
		return Outcome{Status: StatusDraw}
	}

	return Outcome{Status: StatusInProgress}
}

func (that Outcome) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

func (that Outcome) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

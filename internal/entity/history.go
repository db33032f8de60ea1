package entity

// Move is a single placement: the cell index and the mark written there.
type Move struct {
	Cell int  `json:"cell"`
	Mark Mark `json:"mark"`
}

// HistoryEntry is a frozen snapshot of the board after Move. Move is nil for the opening entry.
type HistoryEntry struct {
	Board Board `json:"board"`
	Move  *Move `json:"move,omitempty"`
}

// History is append-only. History[0] is always the empty board.
type History []HistoryEntry

func NewHistory() History {
	return History{{Board: Board{}}}
}

func (that History) Latest() HistoryEntry {
	return that[len(that)-1]
}

// Moves - number of moves recorded after the opening entry.
func (that History) Moves() int {
	return len(that) - 1
}

// Append - returns a new history extended by one snapshot with move applied to the latest board.
// The receiver's backing array is never written, so sibling appends don't see each other.
func (that History) Append(move Move) History {
	entry := HistoryEntry{
		Board: that.Latest().Board.With(move.Cell, move.Mark),
		Move:  &move,
	}

	out := make(History, len(that), len(that)+1)
	copy(out, that)

	return append(out, entry)
}

// Clone - deep copy; callers outside the engine only ever get clones.
func (that History) Clone() History {
	out := make(History, len(that))
	for i, entry := range that {
		out[i].Board = entry.Board
		if entry.Move != nil {
			move := *entry.Move
			out[i].Move = &move
		}
	}
	return out
}

// TurnAt - X moves on an even number of prior moves, O on odd.
func TurnAt(step int) Mark {
	if step%2 == 0 {
		return MarkX
	}
	return MarkO
}

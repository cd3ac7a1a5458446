package game

import "strings"

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Board boundaries
	CellMin   = 0
	CellMax   = 8
	CellCount = 9
)

// Opponent returns the other mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// Valid reports whether m is one of the two player marks.
func (m PlayerMark) Valid() bool {
	return m == PlayerX || m == PlayerO
}

// ParseMark converts a wire value into a player mark.
func ParseMark(s string) (PlayerMark, error) {
	m := PlayerMark(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return None, ErrInvalidMark
	}
	return m, nil
}

// Line is one of the eight index triples that win the game.
type Line [3]int

// WinningLines lists rows, columns and diagonals in the order used to pick the
// reported winning line.
var WinningLines = [8]Line{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is the 3x3 grid stored row-major.
type Board [CellCount]PlayerMark

// InRange reports whether cell is a valid board index.
func InRange(cell int) bool {
	return cell >= CellMin && cell <= CellMax
}

// WinningLine returns the first line fully held by mark.
func WinningLine(b Board, mark PlayerMark) (Line, bool) {
	if mark == None {
		return Line{}, false
	}
	for _, ln := range WinningLines {
		if b[ln[0]] == mark && b[ln[1]] == mark && b[ln[2]] == mark {
			return ln, true
		}
	}
	return Line{}, false
}

// HasWon reports whether mark holds any winning line.
func HasWon(b Board, mark PlayerMark) bool {
	_, ok := WinningLine(b, mark)
	return ok
}

// IsBoardFull checks if every cell is taken.
func IsBoardFull(b Board) bool {
	for _, c := range b {
		if c == None {
			return false
		}
	}
	return true
}

// EmptyCells returns the free indices in ascending order.
func EmptyCells(b Board) []int {
	cells := make([]int, 0, CellCount)
	for i, c := range b {
		if c == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// Count returns the number of cells holding mark.
func Count(b Board, mark PlayerMark) int {
	n := 0
	for _, c := range b {
		if c == mark {
			n++
		}
	}
	return n
}

// Strings converts the board to its wire form.
func (b Board) Strings() [CellCount]string {
	var out [CellCount]string
	for i, c := range b {
		out[i] = string(c)
	}
	return out
}

func (b Board) String() string {
	var s strings.Builder
	for r := range 3 {
		for c := range 3 {
			m := b[r*3+c]
			if m == None {
				s.WriteByte('_')
			} else {
				s.WriteString(string(m))
			}
		}
		if r < 2 {
			s.WriteByte('/')
		}
	}
	return s.String()
}

// ParseBoard builds a board from the String form ("X_O/___/__X"). It is
// mostly useful in tests.
func ParseBoard(s string) (Board, error) {
	var b Board
	s = strings.ReplaceAll(s, "/", "")
	if len(s) != CellCount {
		return b, ErrMalformedBoard
	}
	for i, r := range s {
		switch r {
		case 'X', 'x':
			b[i] = PlayerX
		case 'O', 'o':
			b[i] = PlayerO
		case '_', '.', ' ':
			b[i] = None
		default:
			return Board{}, ErrMalformedBoard
		}
	}
	return b, nil
}

// internal/board/board.go
//
// Accumulating game board for a single strategy-driven game.
// Responsibilities:
//   - Hold the letters grid and the parallel status grid (rows x cols).
//   - Accept exactly one fully-formed row per completed attempt.
//   - Hand out deep-copied snapshots to strategies and presentation layers.
//
// Invariants:
//   - A cell's status is non-empty iff its letter has been written.
//   - Rows fill in increasing order; a row is either fully written or fully empty.
//   - Written cells are never cleared or overwritten.

package board

import (
	"errors"
	"fmt"
	"unicode"
)

const (
	DefaultRows = 6
	DefaultCols = 5
)

// Status is the per-cell classification. The integer values are the codes
// strategies see in the status grid, so they must not be renumbered.
type Status int

const (
	Empty     Status = 0 // cell not written yet
	Absent    Status = 1 // letter not in word
	Misplaced Status = 2 // letter in word, wrong position
	Correct   Status = 3 // letter in correct position
)

func (s Status) String() string {
	switch s {
	case Empty:
		return "empty"
	case Absent:
		return "absent"
	case Misplaced:
		return "misplaced"
	case Correct:
		return "correct"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Cell is one letter of feedback to be written into a row.
type Cell struct {
	Letter rune
	Status Status
}

var (
	ErrRowOutOfRange = errors.New("board: row out of range")
	ErrRowWritten    = errors.New("board: row already written")
	ErrRowOrder      = errors.New("board: rows must be written in order")
	ErrRowLength     = errors.New("board: feedback length does not match word length")
	ErrBadCell       = errors.New("board: cell must carry a letter and a non-empty status")
)

// Board is the single source of truth for a game's history.
// It is not safe for concurrent writes; the orchestrator owns it.
type Board struct {
	rows, cols int
	letters    [][]rune
	status     [][]Status
	written    int // number of rows written so far
}

// New creates an all-empty board. Non-positive dimensions fall back to 6x5.
func New(rows, cols int) *Board {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	b := &Board{rows: rows, cols: cols}
	b.letters = make([][]rune, rows)
	b.status = make([][]Status, rows)
	for r := 0; r < rows; r++ {
		b.letters[r] = make([]rune, cols)
		b.status[r] = make([]Status, cols)
	}
	return b
}

func (b *Board) Rows() int        { return b.rows }
func (b *Board) Cols() int        { return b.cols }
func (b *Board) RowsWritten() int { return b.written }

// IsRowEmpty reports whether row i has not been written.
func (b *Board) IsRowEmpty(i int) bool {
	if i < 0 || i >= b.rows {
		return true
	}
	return i >= b.written
}

// Row returns a copy of row i as cells.
func (b *Board) Row(i int) []Cell {
	if i < 0 || i >= b.rows {
		return nil
	}
	out := make([]Cell, b.cols)
	for c := 0; c < b.cols; c++ {
		out[c] = Cell{Letter: b.letters[i][c], Status: b.status[i][c]}
	}
	return out
}

// WriteRow writes one attempt's feedback at row. The write is all-or-nothing:
// every check runs before the grids are touched.
//
// Validation rules:
//   - row must be inside the board and be the next unwritten row.
//   - len(cells) must equal the word length.
//   - every cell needs a letter and a status other than Empty.
func (b *Board) WriteRow(row int, cells []Cell) error {
	if row < 0 || row >= b.rows {
		return fmt.Errorf("%w: %d (rows=%d)", ErrRowOutOfRange, row, b.rows)
	}
	if row < b.written {
		return fmt.Errorf("%w: %d", ErrRowWritten, row)
	}
	if row != b.written {
		return fmt.Errorf("%w: next row is %d, got %d", ErrRowOrder, b.written, row)
	}
	if len(cells) != b.cols {
		return fmt.Errorf("%w: got %d, want %d", ErrRowLength, len(cells), b.cols)
	}
	for i, c := range cells {
		if c.Letter == 0 || c.Status <= Empty || c.Status > Correct {
			return fmt.Errorf("%w: position %d", ErrBadCell, i)
		}
	}

	for i, c := range cells {
		b.letters[row][i] = unicode.ToUpper(c.Letter)
		b.status[row][i] = c.Status
	}
	b.written++
	return nil
}

// Snapshot is a detached copy of the board. Letters are one-character strings
// ("" for empty cells); Status holds the integer codes 0..3.
type Snapshot struct {
	Letters [][]string `json:"letters"`
	Status  [][]int    `json:"status"`
}

// Snapshot deep-copies the current grids.
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Letters: make([][]string, b.rows),
		Status:  make([][]int, b.rows),
	}
	for r := 0; r < b.rows; r++ {
		s.Letters[r] = make([]string, b.cols)
		s.Status[r] = make([]int, b.cols)
		for c := 0; c < b.cols; c++ {
			if l := b.letters[r][c]; l != 0 {
				s.Letters[r][c] = string(l)
			}
			s.Status[r][c] = int(b.status[r][c])
		}
	}
	return s
}

// Rows/Cols helpers on snapshots, used by callers that only see the copy.
func (s Snapshot) Rows() int { return len(s.Status) }

func (s Snapshot) Cols() int {
	if len(s.Status) == 0 {
		return 0
	}
	return len(s.Status[0])
}

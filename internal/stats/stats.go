// internal/stats/stats.go
//
// Turn- and game-level statistics derived from a board snapshot.
// Pure functions: safe to recompute at any point of the loop.

package stats

import "github.com/robalobadob/wordle-arena/internal/board"

// Stats summarises the letter statuses on a board.
type Stats struct {
	Filled          int `json:"filled"`
	Correct         int `json:"correct"`
	Misplaced       int `json:"misplaced"`
	Absent          int `json:"absent"`
	RowsWritten     int `json:"rowsWritten"`
	AccuracyPercent int `json:"accuracyPercent"` // floor(correct/filled*100), 0 on an empty board
}

// Summarize counts statuses in snap.
// AccuracyPercent uses integer truncation, never rounding.
func Summarize(snap board.Snapshot) Stats {
	var s Stats
	for _, row := range snap.Status {
		rowFilled := false
		for _, v := range row {
			switch board.Status(v) {
			case board.Correct:
				s.Correct++
			case board.Misplaced:
				s.Misplaced++
			case board.Absent:
				s.Absent++
			default:
				continue
			}
			s.Filled++
			rowFilled = true
		}
		if rowFilled {
			s.RowsWritten++
		}
	}
	if s.Filled > 0 {
		s.AccuracyPercent = s.Correct * 100 / s.Filled
	}
	return s
}

package puzzle

import (
	"math/rand/v2"
	"strings"
)

const (
	minxLines       = 7
	minxMovesPerRow = 10
)

var minxFaces = []string{"U", "BL", "BR", "R", "F", "L", "D", "DR", "DBR", "B", "DBL", "DL"}

// NewMegaminx returns the Pochmann-style Megaminx scrambler: each line
// alternates R and D double turns and finishes with a U turn whose direction
// follows the last D.
func NewMegaminx() (Scrambler, error) {
	return newBasePuzzle("minx", "Megaminx", minxFaces,
		[]Color{White, Gray, Yellow, Green, Red, Purple, Beige, Pink, Blue, Orange, Navy, Lime},
		minxScramble,
	)
}

func minxScramble(r *rand.Rand) string {
	lines := make([]string, 0, minxLines)
	for range minxLines {
		moves := make([]string, 0, minxMovesPerRow+1)
		clockwise := false
		for i := range minxMovesPerRow {
			face := "R"
			if i%2 == 1 {
				face = "D"
			}
			clockwise = r.IntN(2) == 0
			if clockwise {
				moves = append(moves, face+"++")
			} else {
				moves = append(moves, face+"--")
			}
		}
		if clockwise {
			moves = append(moves, "U")
		} else {
			moves = append(moves, "U'")
		}
		lines = append(lines, strings.Join(moves, " "))
	}
	return strings.Join(lines, " ")
}

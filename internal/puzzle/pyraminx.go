package puzzle

import (
	"math/rand/v2"
	"strings"
)

var (
	pyraminxTips  = []string{"u", "l", "r", "b"}
	cornerTurns   = []string{"U", "L", "R", "B"}
	cornerSuffix  = [2]string{"", "'"}
	skewbTurns    = []string{"R", "U", "L", "B"}
	cornerLength  = 11
	pyraminxFaces = []string{"F", "D", "L", "R"}
	skewbFaces    = []string{"U", "F", "R", "D", "L", "B"}
)

// NewPyraminx returns a random-move Pyraminx scrambler followed by random
// tip turns.
func NewPyraminx() (Scrambler, error) {
	return newBasePuzzle("pyram", "Pyraminx", pyraminxFaces,
		[]Color{Green, Yellow, Red, Blue},
		func(r *rand.Rand) string {
			moves := cornerScramble(r, cornerTurns, cornerLength)
			for _, tip := range pyraminxTips {
				switch r.IntN(3) {
				case 1:
					moves = append(moves, tip)
				case 2:
					moves = append(moves, tip+"'")
				}
			}
			return strings.Join(moves, " ")
		})
}

// NewSkewb returns a random-move Skewb scrambler.
func NewSkewb() (Scrambler, error) {
	return newBasePuzzle("skewb", "Skewb", skewbFaces, cubeColors,
		func(r *rand.Rand) string {
			return strings.Join(cornerScramble(r, skewbTurns, cornerLength), " ")
		})
}

// cornerScramble draws length turns of 120 degrees, never turning the same
// corner twice in a row.
func cornerScramble(r *rand.Rand, turns []string, length int) []string {
	moves := make([]string, 0, length)
	last := -1
	for len(moves) < length {
		i := r.IntN(len(turns))
		if i == last {
			continue
		}
		last = i
		moves = append(moves, turns[i]+cornerSuffix[r.IntN(2)])
	}
	return moves
}

package puzzle

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

var cubeSizes = []int{2, 3, 4, 5, 6, 7}

// scramble lengths indexed by cube size
var cubeLengths = map[int]int{2: 11, 3: 25, 4: 40, 5: 60, 6: 80, 7: 100}

var (
	cubeFaces  = []string{"U", "D", "L", "R", "F", "B"}
	cubeColors = []Color{White, Yellow, Orange, Red, Green, Blue}
	cubeAxis   = map[string]int{"U": 0, "D": 0, "L": 1, "R": 1, "F": 2, "B": 2}
	turnSuffix = [3]string{"", "'", "2"}
)

func cubeShortName(n int) string {
	return fmt.Sprintf("%dx%dx%d", n, n, n)
}

type cubeTurn struct {
	face  string
	width int
}

func (t cubeTurn) String() string {
	switch {
	case t.width == 1:
		return t.face
	case t.width == 2:
		return t.face + "w"
	default:
		return strconv.Itoa(t.width) + t.face + "w"
	}
}

// NewCube returns a random-move scrambler for the n-layer cube.
func NewCube(n int) (Scrambler, error) {
	length, ok := cubeLengths[n]
	if !ok {
		return nil, fmt.Errorf("puzzle: unsupported cube size %d", n)
	}

	// The 2x2x2 has no slices; turning three adjacent faces reaches every state.
	turnFaces := cubeFaces
	if n == 2 {
		turnFaces = []string{"U", "R", "F"}
	}

	var turns []cubeTurn
	for _, f := range turnFaces {
		for w := 1; w <= n/2; w++ {
			turns = append(turns, cubeTurn{face: f, width: w})
		}
	}

	return newBasePuzzle(cubeShortName(n), cubeShortName(n), cubeFaces, cubeColors,
		func(r *rand.Rand) string {
			return cubeScramble(r, turns, length)
		})
}

// cubeScramble never repeats a turn inside a run of turns on one axis, so
// no two moves in a row cancel or merge.
func cubeScramble(r *rand.Rand, turns []cubeTurn, length int) string {
	moves := make([]string, 0, length)
	axis := -1
	used := make(map[cubeTurn]bool)
	for len(moves) < length {
		t := turns[r.IntN(len(turns))]
		a := cubeAxis[t.face]
		if a == axis && used[t] {
			continue
		}
		if a != axis {
			axis = a
			clear(used)
		}
		used[t] = true
		moves = append(moves, t.String()+turnSuffix[r.IntN(3)])
	}
	return strings.Join(moves, " ")
}

package puzzle

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

var clockPins = [2]string{"U", "d"}

// NewClock returns the Rubik's Clock scrambler. A scramble is four pin
// settings turning both sides, five turning the front, one turning the back,
// then the final pin state.
func NewClock() (Scrambler, error) {
	return newBasePuzzle("clock", "Clock",
		[]string{"Front", "Back"},
		[]Color{Blue, Navy},
		clockScramble,
	)
}

func clockScramble(r *rand.Rand) string {
	var sb strings.Builder
	for range 4 {
		sb.WriteString("u=")
		sb.WriteString(clockTurn(r))
		sb.WriteString(",d=")
		sb.WriteString(clockTurn(r))
		sb.WriteString(" /")
	}
	for range 5 {
		sb.WriteString("u=")
		sb.WriteString(clockTurn(r))
		sb.WriteString(" /")
	}
	sb.WriteString("d=")
	sb.WriteString(clockTurn(r))
	sb.WriteString(" /")
	for range 4 {
		sb.WriteString(clockPins[r.IntN(2)])
	}
	return sb.String()
}

// clockTurn is a dial turn in [-5, 6].
func clockTurn(r *rand.Rand) string {
	return strconv.Itoa(r.IntN(12) - 5)
}

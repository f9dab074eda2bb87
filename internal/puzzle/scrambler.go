// Package puzzle holds the scramble-generating capabilities for each
// supported puzzle and the table they are registered from.
package puzzle

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Scrambler is the puzzle-specific capability behind a short name.
//
// Implementations must be safe for concurrent use once constructed: the
// cache refill goroutines and seeded requests call them in parallel.
type Scrambler interface {
	ShortName() string
	LongName() string

	// Faces lists the face names in the order used by color schemes.
	Faces() []string
	DefaultColorScheme() ColorScheme

	// GenerateScramble draws one scramble from r.
	GenerateScramble(r *rand.Rand) (string, error)

	// GenerateSeededScrambles returns count scrambles that depend only on seed.
	GenerateSeededScrambles(seed string, count int) ([]string, error)

	// ParseColorScheme decodes a user supplied scheme. Empty text yields
	// the default scheme.
	ParseColorScheme(text string) (ColorScheme, error)
}

// Constructor builds a Scrambler. It may be expensive and is called at most
// once per process by the registry.
type Constructor func() (Scrambler, error)

// Definition is one entry of the registration table.
type Definition struct {
	ShortName string
	LongName  string
	New       Constructor
}

var errNegativeCount = errors.New("puzzle: count must not be negative")

// generator draws a single scramble from r.
type generator func(r *rand.Rand) string

// basePuzzle implements Scrambler on top of a generator. It is never
// mutated after construction.
type basePuzzle struct {
	shortName string
	longName  string
	faces     []string
	colors    []Color
	gen       generator
}

func newBasePuzzle(shortName, longName string, faces []string, colors []Color, gen generator) (*basePuzzle, error) {
	if len(faces) != len(colors) {
		return nil, fmt.Errorf("puzzle %s: %d faces but %d default colors", shortName, len(faces), len(colors))
	}
	if gen == nil {
		return nil, fmt.Errorf("puzzle %s: no generator", shortName)
	}
	return &basePuzzle{
		shortName: shortName,
		longName:  longName,
		faces:     faces,
		colors:    colors,
		gen:       gen,
	}, nil
}

func (p *basePuzzle) ShortName() string { return p.shortName }
func (p *basePuzzle) LongName() string  { return p.longName }

func (p *basePuzzle) Faces() []string {
	out := make([]string, len(p.faces))
	copy(out, p.faces)
	return out
}

func (p *basePuzzle) DefaultColorScheme() ColorScheme {
	scheme := make(ColorScheme, len(p.faces))
	for i, face := range p.faces {
		scheme[face] = p.colors[i]
	}
	return scheme
}

func (p *basePuzzle) GenerateScramble(r *rand.Rand) (string, error) {
	if r == nil {
		return "", fmt.Errorf("puzzle %s: nil random source", p.shortName)
	}
	return p.gen(r), nil
}

func (p *basePuzzle) GenerateSeededScrambles(seed string, count int) ([]string, error) {
	if count < 0 {
		return nil, errNegativeCount
	}
	r := SeededRand(seed)
	scrambles := make([]string, count)
	for i := range scrambles {
		scrambles[i] = p.gen(r)
	}
	return scrambles, nil
}

func (p *basePuzzle) ParseColorScheme(text string) (ColorScheme, error) {
	return parseColorScheme(p.faces, p.DefaultColorScheme(), text)
}

// Builtins returns the registration table of every puzzle this server
// knows, in display order.
func Builtins() []Definition {
	defs := []Definition{
		{ShortName: "clock", LongName: "Clock", New: NewClock},
	}
	for _, n := range cubeSizes {
		n := n
		defs = append(defs, Definition{
			ShortName: cubeShortName(n),
			LongName:  fmt.Sprintf("%dx%dx%d", n, n, n),
			New:       func() (Scrambler, error) { return NewCube(n) },
		})
	}
	defs = append(defs,
		Definition{ShortName: "pyram", LongName: "Pyraminx", New: NewPyraminx},
		Definition{ShortName: "skewb", LongName: "Skewb", New: NewSkewb},
		Definition{ShortName: "minx", LongName: "Megaminx", New: NewMegaminx},
	)
	return defs
}

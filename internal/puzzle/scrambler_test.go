package puzzle

import (
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
)

func newAll(t *testing.T) []Scrambler {
	t.Helper()
	var out []Scrambler
	for _, def := range Builtins() {
		s, err := def.New()
		if err != nil {
			t.Fatalf("construct %s: %v", def.ShortName, err)
		}
		if s.ShortName() != def.ShortName {
			t.Fatalf("definition %s built scrambler named %s", def.ShortName, s.ShortName())
		}
		out = append(out, s)
	}
	return out
}

func TestBuiltinsUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Builtins() {
		if seen[def.ShortName] {
			t.Fatalf("duplicate short name %q", def.ShortName)
		}
		seen[def.ShortName] = true
	}
	for _, want := range []string{"clock", "2x2x2", "3x3x3", "7x7x7", "pyram", "skewb", "minx"} {
		if !seen[want] {
			t.Fatalf("missing builtin %q", want)
		}
	}
}

func TestSeededScramblesDeterministic(t *testing.T) {
	for _, s := range newAll(t) {
		first, err := s.GenerateSeededScrambles("Round 1seedA", 5)
		if err != nil {
			t.Fatalf("%s: %v", s.ShortName(), err)
		}
		second, err := s.GenerateSeededScrambles("Round 1seedA", 5)
		if err != nil {
			t.Fatalf("%s: %v", s.ShortName(), err)
		}
		if !slices.Equal(first, second) {
			t.Fatalf("%s: same seed produced different scrambles:\n%v\n%v", s.ShortName(), first, second)
		}
		other, err := s.GenerateSeededScrambles("Round 2seedA", 5)
		if err != nil {
			t.Fatalf("%s: %v", s.ShortName(), err)
		}
		if slices.Equal(first, other) {
			t.Fatalf("%s: different seeds produced identical scrambles", s.ShortName())
		}
	}
}

func TestSeededScramblesCount(t *testing.T) {
	s, err := NewClock()
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	got, err := s.GenerateSeededScrambles("x", 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v, %v", got, err)
	}
	if _, err := s.GenerateSeededScrambles("x", -1); err == nil {
		t.Fatalf("expected error for negative count")
	}
}

var clockPattern = regexp.MustCompile(
	`^(u=-?\d+,d=-?\d+ /){4}(u=-?\d+ /){5}d=-?\d+ /[Ud]{4}$`)

func TestClockFormat(t *testing.T) {
	s, err := NewClock()
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	scrambles, err := s.GenerateSeededScrambles("clock", 50)
	if err != nil {
		t.Fatalf("GenerateSeededScrambles: %v", err)
	}
	turn := regexp.MustCompile(`=(-?\d+)`)
	for _, sc := range scrambles {
		if !clockPattern.MatchString(sc) {
			t.Fatalf("unexpected clock scramble %q", sc)
		}
		for _, m := range turn.FindAllStringSubmatch(sc, -1) {
			switch m[1] {
			case "-5", "-4", "-3", "-2", "-1", "0", "1", "2", "3", "4", "5", "6":
			default:
				t.Fatalf("dial turn %s out of range in %q", m[1], sc)
			}
		}
	}
}

func TestCubeNoCancellingMoves(t *testing.T) {
	for _, n := range cubeSizes {
		s, err := NewCube(n)
		if err != nil {
			t.Fatalf("NewCube(%d): %v", n, err)
		}
		scrambles, err := s.GenerateSeededScrambles("cube", 20)
		if err != nil {
			t.Fatalf("GenerateSeededScrambles: %v", err)
		}
		for _, sc := range scrambles {
			moves := strings.Fields(sc)
			if len(moves) != cubeLengths[n] {
				t.Fatalf("%dx%d: %d moves, want %d", n, n, len(moves), cubeLengths[n])
			}
			for i := 1; i < len(moves); i++ {
				if strings.TrimRight(moves[i], "'2") == strings.TrimRight(moves[i-1], "'2") {
					t.Fatalf("%dx%d: consecutive turns of one layer in %q", n, n, sc)
				}
			}
		}
	}
	if _, err := NewCube(9); err == nil {
		t.Fatalf("expected error for unsupported size")
	}
}

func TestMegaminxLines(t *testing.T) {
	s, err := NewMegaminx()
	if err != nil {
		t.Fatalf("NewMegaminx: %v", err)
	}
	sc, err := s.GenerateScramble(SeededRand("minx"))
	if err != nil {
		t.Fatalf("GenerateScramble: %v", err)
	}
	moves := strings.Fields(sc)
	if len(moves) != minxLines*(minxMovesPerRow+1) {
		t.Fatalf("unexpected move count %d", len(moves))
	}
	for i := minxMovesPerRow; i < len(moves); i += minxMovesPerRow + 1 {
		d := moves[i-1]
		u := moves[i]
		if (d == "D++" && u != "U") || (d == "D--" && u != "U'") {
			t.Fatalf("line ending %s %s does not follow last D", d, u)
		}
	}
}

func TestConcurrentGenerateSharedRandom(t *testing.T) {
	s, err := NewCube(3)
	if err != nil {
		t.Fatalf("NewCube: %v", err)
	}
	r := NewRandom()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if _, err := s.GenerateScramble(r); err != nil {
					t.Errorf("GenerateScramble: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// Package registry maps puzzle short names to lazily constructed scramblers.
package registry

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tnoodle-scrambles/internal/puzzle"
)

// Info describes a registered puzzle without constructing it.
type Info struct {
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
}

type entry struct {
	def puzzle.Definition

	once      sync.Once
	scrambler puzzle.Scrambler
	err       error
}

// Registry is built once from a definition table and is safe for
// concurrent use. Each scrambler is constructed on first Resolve and kept
// for the life of the registry; a failed construction is never retried.
type Registry struct {
	entries map[string]*entry
	order   []Info
	logger  *zap.Logger
}

// New indexes defs by short name. Duplicate or empty names are a
// configuration error.
func New(defs []puzzle.Definition, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		entries: make(map[string]*entry, len(defs)),
		order:   make([]Info, 0, len(defs)),
		logger:  logger.Named("registry"),
	}
	for _, def := range defs {
		if def.ShortName == "" || def.New == nil {
			return nil, fmt.Errorf("registry: incomplete definition %+v", def)
		}
		if _, exists := r.entries[def.ShortName]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePuzzle, def.ShortName)
		}
		r.entries[def.ShortName] = &entry{def: def}
		r.order = append(r.order, Info{ShortName: def.ShortName, LongName: def.LongName})
	}
	return r, nil
}

// Resolve returns the scrambler registered under id, constructing it on
// first use.
func (r *Registry) Resolve(id string) (puzzle.Scrambler, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, &UnknownPuzzleError{ID: id}
	}

	e.once.Do(func() {
		e.scrambler, e.err = construct(e.def)
		if e.err != nil {
			e.err = &CapabilityInitError{ID: id, Err: e.err}
			r.logger.Error("puzzle construction failed",
				zap.String("puzzle", id),
				zap.Error(e.err),
			)
			return
		}
		r.logger.Info("puzzle constructed", zap.String("puzzle", id))
	})
	return e.scrambler, e.err
}

// construct runs the definition's constructor, converting a panic into an
// error so that a bad puzzle cannot leave the entry half-built.
func construct(def puzzle.Definition) (s puzzle.Scrambler, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	s, err = def.New()
	if err == nil && s == nil {
		err = fmt.Errorf("constructor returned no scrambler")
	}
	return s, err
}

// Names lists every registered short name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, info := range r.order {
		names[i] = info.ShortName
	}
	return names
}

// Puzzles lists every registered puzzle in registration order.
func (r *Registry) Puzzles() []Info {
	out := make([]Info, len(r.order))
	copy(out, r.order)
	return out
}

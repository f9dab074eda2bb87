package request

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Fields is a decoded raw request:
//
//	puzzle[*count[*copies[*colorScheme]]]
type Fields struct {
	Puzzle      string
	Count       int
	Copies      int
	ColorScheme string
}

// Parser decodes raw requests. It is stateless and safe for concurrent use.
type Parser struct {
	cfg Config
}

// NewParser returns a parser for cfg. Defaults are applied to cfg.
func NewParser(cfg Config) (*Parser, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Parser{cfg: cfg}, nil
}

// Parse splits raw on Delimiter into between one and four percent-encoded
// fields. Missing or non-numeric count and copies become 1; values above
// the maximum are clamped.
func (p *Parser) Parse(raw string) (Fields, error) {
	parts := splitFields(raw)
	if len(parts) < 1 || len(parts) > 4 {
		return Fields{}, &InvalidRequestError{Raw: raw, Err: fmt.Errorf("expected 1 to 4 fields, got %d", len(parts))}
	}

	for i, part := range parts {
		decoded, err := url.QueryUnescape(part)
		if err != nil {
			return Fields{}, &InvalidRequestError{Raw: raw, Err: fmt.Errorf("field %d: %w", i+1, err)}
		}
		parts[i] = decoded
	}

	var countStr, copiesStr, scheme string
	switch len(parts) {
	case 4:
		scheme = parts[3]
		fallthrough
	case 3:
		copiesStr = parts[2]
		fallthrough
	case 2:
		countStr = parts[1]
	}

	count, err := p.bound(intOrDefault(countStr, 1), p.cfg.MaxCount)
	if err != nil {
		return Fields{}, &InvalidRequestError{Raw: raw, Err: fmt.Errorf("count: %w", err)}
	}
	copies, err := p.bound(intOrDefault(copiesStr, 1), p.cfg.MaxCopies)
	if err != nil {
		return Fields{}, &InvalidRequestError{Raw: raw, Err: fmt.Errorf("copies: %w", err)}
	}

	return Fields{
		Puzzle:      parts[0],
		Count:       count,
		Copies:      copies,
		ColorScheme: scheme,
	}, nil
}

// splitFields drops trailing empty fields, so "3x3x3*5*2*" has three fields
// and "" has none.
func splitFields(raw string) []string {
	parts := strings.Split(raw, Delimiter)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// intOrDefault parses s as a decimal integer, returning def for empty or
// non-numeric text.
func intOrDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

var errBelowOne = errors.New("must be at least 1")

// bound clamps v into [1, limit], or rejects v < 1 under PolicyReject.
// Bounding an already bounded value returns it unchanged.
func (p *Parser) bound(v, limit int) (int, error) {
	if v < 1 {
		if p.cfg.Negative == PolicyReject {
			return 0, fmt.Errorf("%d %w", v, errBelowOne)
		}
		return 1, nil
	}
	return min(v, limit), nil
}

package request

import "fmt"

const (
	// MaxCount bounds the scrambles generated for one round.
	MaxCount = 100
	// MaxCopies bounds the printed copies of one round.
	MaxCopies = 100

	// Delimiter separates the fields of a raw request.
	Delimiter = "*"
)

// NumberPolicy decides what happens to a count or copies value below 1.
// Values above the maximum are always clamped.
type NumberPolicy string

const (
	// PolicyClamp raises values below 1 to 1.
	PolicyClamp NumberPolicy = "clamp"
	// PolicyReject fails the round on values below 1.
	PolicyReject NumberPolicy = "reject"
)

type Config struct {
	MaxCount  int          // default: MaxCount
	MaxCopies int          // default: MaxCopies
	Negative  NumberPolicy // default: PolicyClamp
}

// WithDefaults returns a copy of Config with defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = MaxCount
	}
	if cfg.MaxCopies <= 0 {
		cfg.MaxCopies = MaxCopies
	}
	if cfg.Negative == "" {
		cfg.Negative = PolicyClamp
	}
	return cfg
}

// Validate checks the number policy.
func (c *Config) Validate() error {
	switch c.Negative {
	case PolicyClamp, PolicyReject:
		return nil
	default:
		return fmt.Errorf("unknown number policy %q", c.Negative)
	}
}

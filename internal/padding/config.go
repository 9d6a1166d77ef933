package padding

import "fmt"

// RawConfig is the ordered header and footer rule lists before compilation.
// The zero value compiles to a Config that leaves every chapter unchanged.
type RawConfig struct {
	Headers []RawMatcher
	Footers []RawMatcher
}

// Config is the compiled rule set driving one padding pass. It is never
// mutated after Compile and may be shared by any number of goroutines.
type Config struct {
	headers []Matcher
	footers []Matcher
}

// Compile compiles every rule, headers first, keeping configured order.
// The first invalid pattern aborts compilation; the returned error wraps a
// *PatternCompileError.
func (rc RawConfig) Compile() (*Config, error) {
	headers, err := compileAll("headers", rc.Headers)
	if err != nil {
		return nil, err
	}
	footers, err := compileAll("footers", rc.Footers)
	if err != nil {
		return nil, err
	}
	return &Config{headers: headers, footers: footers}, nil
}

func compileAll(section string, raw []RawMatcher) ([]Matcher, error) {
	out := make([]Matcher, 0, len(raw))
	for i, r := range raw {
		m, err := r.Compile()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Headers returns the compiled header rules in configured order.
func (c *Config) Headers() []Matcher { return c.headers }

// Footers returns the compiled footer rules in configured order.
func (c *Config) Footers() []Matcher { return c.footers }

// Empty reports whether the config has no rules at all.
func (c *Config) Empty() bool {
	return len(c.headers) == 0 && len(c.footers) == 0
}

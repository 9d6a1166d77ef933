package padding

import "regexp"

// DefaultPattern matches every path. It is used when a rule omits its pattern.
const DefaultPattern = ".*"

// RawMatcher is one configured header or footer rule before compilation.
type RawMatcher struct {
	Pattern string
	Padding string
}

// Matcher is a compiled rule. It is immutable and safe for concurrent use.
type Matcher struct {
	re      *regexp.Regexp
	source  string
	padding string
}

// Compile compiles the rule's pattern. The pattern is matched anywhere in a
// chapter path; anchor it with ^ and $ to require a full match.
func (r RawMatcher) Compile() (Matcher, error) {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return Matcher{}, &PatternCompileError{Pattern: r.Pattern, Err: err}
	}
	return Matcher{re: re, source: r.Pattern, padding: r.Padding}, nil
}

// Matches reports whether the pattern matches somewhere in path.
func (m Matcher) Matches(path string) bool {
	return m.re.MatchString(path)
}

// Source returns the pattern as configured.
func (m Matcher) Source() string { return m.source }

// Padding returns the text the rule affixes.
func (m Matcher) Padding() string { return m.padding }

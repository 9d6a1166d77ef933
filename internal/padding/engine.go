package padding

import "strings"

// Match returns the indexes of the header and footer rules whose pattern
// matches path, in configured order.
func (c *Config) Match(path string) (headers, footers []int) {
	for i := range c.headers {
		if c.headers[i].Matches(path) {
			headers = append(headers, i)
		}
	}
	for i := range c.footers {
		if c.footers[i].Matches(path) {
			footers = append(footers, i)
		}
	}
	return headers, footers
}

// Outcome is the result of evaluating one chapter against a Config.
type Outcome struct {
	Body    string // Padded body, empty when Changed is false
	Changed bool   // False when no rule matched
	Headers []int  // Matching header rule indexes, in configured order
	Footers []int  // Matching footer rule indexes, in configured order
}

// Evaluate pads body with every rule matching path: all matching headers in
// configured order, then body, then all matching footers in configured
// order. No separator is inserted between pieces.
func (c *Config) Evaluate(body, path string) Outcome {
	headers, footers := c.Match(path)
	if len(headers) == 0 && len(footers) == 0 {
		return Outcome{}
	}

	size := len(body)
	for _, i := range headers {
		size += len(c.headers[i].padding)
	}
	for _, i := range footers {
		size += len(c.footers[i].padding)
	}

	var sb strings.Builder
	sb.Grow(size)
	for _, i := range headers {
		sb.WriteString(c.headers[i].padding)
	}
	sb.WriteString(body)
	for _, i := range footers {
		sb.WriteString(c.footers[i].padding)
	}
	return Outcome{Body: sb.String(), Changed: true, Headers: headers, Footers: footers}
}

// PadChapter returns the padded body for a chapter at path. The boolean is
// false when no rule matched, in which case body must be left as is.
func (c *Config) PadChapter(body, path string) (string, bool) {
	out := c.Evaluate(body, path)
	return out.Body, out.Changed
}

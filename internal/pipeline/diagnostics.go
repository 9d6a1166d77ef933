package pipeline

import (
	"context"
	"log/slog"
	"sync"
)

// Kind classifies what happened to one chapter during a pass.
type Kind string

const (
	KindPadded      Kind = "padded"       // At least one rule matched
	KindNoMatch     Kind = "no_match"     // No rule matched, body untouched
	KindNoPath      Kind = "no_path"      // Chapter has no path, skipped
	KindInvalidPath Kind = "invalid_path" // Path is not valid UTF-8, skipped
)

// Diagnostic describes the outcome for one chapter. Diagnostics never
// affect the success of a pass.
type Diagnostic struct {
	Kind    Kind     `json:"kind"`
	Chapter string   `json:"chapter"`
	Path    string   `json:"path,omitempty"`
	Headers []string `json:"headers,omitempty"` // Matching header patterns
	Footers []string `json:"footers,omitempty"` // Matching footer patterns
}

// Reporter receives diagnostics. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(Diagnostic)
}

// SlogReporter logs diagnostics: skipped chapters at warn, the rest at debug.
type SlogReporter struct {
	Log *slog.Logger
}

func (r SlogReporter) Report(d Diagnostic) {
	switch d.Kind {
	case KindNoPath:
		r.Log.Warn("chapter has no path", "chapter", d.Chapter)
	case KindInvalidPath:
		r.Log.Warn("chapter path is not valid UTF-8", "chapter", d.Chapter, "path", d.Path)
	case KindNoMatch:
		r.Log.Debug("did not pad chapter", "chapter", d.Chapter, "path", d.Path)
	case KindPadded:
		if r.Log.Enabled(context.Background(), slog.LevelDebug) {
			r.Log.Debug("padded chapter",
				"chapter", d.Chapter,
				"path", d.Path,
				"headers", d.Headers,
				"footers", d.Footers,
			)
		}
	}
}

// CollectingReporter keeps every diagnostic it receives.
type CollectingReporter struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (r *CollectingReporter) Report(d Diagnostic) {
	r.mu.Lock()
	r.items = append(r.items, d)
	r.mu.Unlock()
}

// Diagnostics returns a copy of the collected diagnostics in arrival order.
func (r *CollectingReporter) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Reporters fans a diagnostic out to several reporters.
type Reporters []Reporter

func (rs Reporters) Report(d Diagnostic) {
	for _, r := range rs {
		r.Report(d)
	}
}

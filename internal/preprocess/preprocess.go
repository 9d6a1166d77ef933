// Package preprocess implements the mdBook preprocessor protocol: mdBook
// writes a JSON array [context, book] to stdin and reads the processed book
// from stdout.
package preprocess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/mdbook-header-footer/internal/config"
	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
	"github.com/dgallion1/mdbook-header-footer/internal/padding"
	"github.com/dgallion1/mdbook-header-footer/internal/pipeline"
)

// Context is the preprocessor context mdBook sends ahead of the book.
type Context struct {
	Root          string                     `json:"root"`
	Config        map[string]json.RawMessage `json:"config"`
	Renderer      string                     `json:"renderer"`
	MdbookVersion string                     `json:"mdbook_version"`
}

// Rules extracts the [preprocessor.header-footer] table from the book
// configuration. A missing table yields an empty configuration.
func (c *Context) Rules() (padding.RawConfig, error) {
	section, ok := c.Config["preprocessor"]
	if !ok {
		return padding.RawConfig{}, nil
	}
	var tables map[string]json.RawMessage
	if err := json.Unmarshal(section, &tables); err != nil {
		return padding.RawConfig{}, fmt.Errorf("%w: decode preprocessor config: %w", config.ErrInvalidRules, err)
	}
	raw, err := config.ParseRulesJSON(tables[config.PreprocessorName])
	if err != nil {
		return padding.RawConfig{}, fmt.Errorf("preprocessor.%s: %w", config.PreprocessorName, err)
	}
	return raw, nil
}

// ParseInput decodes the [context, book] pair mdBook writes to a preprocessor.
// Input that is not valid UTF-8 is rejected with doctree.ErrInvalidUTF8.
func ParseInput(r io.Reader) (*Context, *doctree.Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read preprocessor input: %w", err)
	}
	if err := doctree.CheckUTF8(data); err != nil {
		return nil, nil, fmt.Errorf("decode preprocessor input: %w", err)
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, nil, fmt.Errorf("decode preprocessor input: %w", err)
	}
	if len(pair) != 2 {
		return nil, nil, fmt.Errorf("preprocessor input must be [context, book], got %d elements", len(pair))
	}

	var ctx Context
	if err := json.Unmarshal(pair[0], &ctx); err != nil {
		return nil, nil, fmt.Errorf("decode context: %w", err)
	}
	book, err := doctree.DecodeBook(pair[1])
	if err != nil {
		return nil, nil, fmt.Errorf("decode book: %w", err)
	}
	return &ctx, book, nil
}

// Supports reports whether the preprocessor works with a renderer. Padding
// is renderer independent, so every renderer is supported.
func Supports(renderer string) bool {
	return true
}

// Preprocessor pads books handed over by mdBook.
type Preprocessor struct {
	orch  *pipeline.Orchestrator
	rules *padding.RawConfig
}

// New creates a preprocessor. When rules is non-nil it is used instead of
// the configuration found in the mdBook context.
func New(orch *pipeline.Orchestrator, rules *padding.RawConfig) *Preprocessor {
	return &Preprocessor{orch: orch, rules: rules}
}

// Process compiles the rules for c and pads book in place. A rule with an
// invalid pattern fails before any chapter is touched.
func (p *Preprocessor) Process(ctx context.Context, c *Context, book *doctree.Book) (pipeline.Report, error) {
	var raw padding.RawConfig
	if p.rules != nil {
		raw = *p.rules
	} else {
		var err error
		if raw, err = c.Rules(); err != nil {
			return pipeline.Report{}, err
		}
	}

	cfg, err := raw.Compile()
	if err != nil {
		return pipeline.Report{}, fmt.Errorf("compile rules: %w", err)
	}
	return p.orch.PadBook(ctx, book, cfg)
}

// Run reads mdBook's input from r, pads the book and writes it to w.
func (p *Preprocessor) Run(ctx context.Context, r io.Reader, w io.Writer) (pipeline.Report, error) {
	c, book, err := ParseInput(r)
	if err != nil {
		return pipeline.Report{}, err
	}
	report, err := p.Process(ctx, c, book)
	if err != nil {
		return pipeline.Report{}, err
	}
	if err := json.NewEncoder(w).Encode(book); err != nil {
		return pipeline.Report{}, fmt.Errorf("write book: %w", err)
	}
	return report, nil
}

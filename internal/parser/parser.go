package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
)

// Parser converts a serialized book source into a Book.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Book, error)
}

// ForFile returns the appropriate parser for a filename: mdBook book JSON,
// or a SUMMARY.md outline.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}, nil
	case ".md", ".markdown":
		return &SummaryParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported book source extension: %s", ext)
	}
}

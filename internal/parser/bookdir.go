package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
)

// SummaryFile is the outline file inside a book's source directory.
const SummaryFile = "SUMMARY.md"

// ErrPathOutsideRoot is returned for chapter paths escaping their directory.
var ErrPathOutsideRoot = errors.New("chapter path is outside book directory")

// LoadBook reads srcDir/SUMMARY.md and the body of every chapter it links.
// Draft chapters (no path) get an empty body.
func LoadBook(srcDir string) (*doctree.Book, error) {
	f, err := os.Open(filepath.Join(srcDir, SummaryFile))
	if err != nil {
		return nil, fmt.Errorf("open summary: %w", err)
	}
	defer func() { _ = f.Close() }()

	book, err := (&SummaryParser{}).Parse(f, SummaryFile)
	if err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	if err := LoadContent(book, srcDir); err != nil {
		return nil, err
	}
	return book, nil
}

// LoadContent fills every chapter body from srcDir using the chapter's
// source path.
func LoadContent(book *doctree.Book, srcDir string) error {
	return loadContent(book.Sections, srcDir)
}

func loadContent(items []*doctree.BookItem, srcDir string) error {
	for _, it := range items {
		ch := it.Chapter
		if ch == nil {
			continue
		}
		if ch.SourcePath != nil {
			full, err := resolve(srcDir, *ch.SourcePath)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(full)
			if err != nil {
				return fmt.Errorf("read chapter %q: %w", ch.Name, err)
			}
			ch.Content = string(data)
		}
		if err := loadContent(ch.SubItems, srcDir); err != nil {
			return err
		}
	}
	return nil
}

// WriteChapters writes the body of every chapter with a path under outDir,
// keeping the chapter's relative path. It returns the number of files written.
func WriteChapters(book *doctree.Book, outDir string) (int, error) {
	written := 0
	for _, h := range book.Chapters() {
		if h.Path == nil {
			continue
		}
		full, err := resolve(outDir, *h.Path)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return written, fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(full, []byte(*h.Body), 0o644); err != nil {
			return written, fmt.Errorf("write chapter %q: %w", h.Name, err)
		}
		written++
	}
	return written, nil
}

func resolve(dir, rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideRoot, rel)
	}
	return filepath.Join(dir, local), nil
}

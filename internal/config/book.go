package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// BookFile is mdBook's configuration file at the book root.
	BookFile = "book.toml"
	// DefaultSourceDir is where mdBook looks for chapters unless [book] src says otherwise.
	DefaultSourceDir = "src"
)

type bookSettings struct {
	Book struct {
		Src string `toml:"src"`
	} `toml:"book"`
}

// BookSourceDir returns the chapter source directory of the book at bookDir,
// honouring [book] src. Relative values are resolved against bookDir. A
// book without book.toml uses DefaultSourceDir.
func BookSourceDir(bookDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(bookDir, BookFile))
	if errors.Is(err, fs.ErrNotExist) {
		return filepath.Join(bookDir, DefaultSourceDir), nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", BookFile, err)
	}

	var s bookSettings
	if _, err := toml.Decode(string(data), &s); err != nil {
		return "", fmt.Errorf("decode %s: %w", BookFile, err)
	}
	src := s.Book.Src
	if src == "" {
		src = DefaultSourceDir
	}
	if filepath.IsAbs(src) {
		return src, nil
	}
	return filepath.Join(bookDir, src), nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSourceDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "chapters")

	tests := []struct {
		name     string
		bookToml string // Empty means no book.toml
		want     func(bookDir string) string
	}{
		{"no book.toml", "", func(d string) string { return filepath.Join(d, "src") }},
		{"no src key", "[book]\ntitle = \"T\"\n", func(d string) string { return filepath.Join(d, "src") }},
		{"relative src", "[book]\nsrc = \"docs\"\n", func(d string) string { return filepath.Join(d, "docs") }},
		{"absolute src", "[book]\nsrc = \"" + filepath.ToSlash(abs) + "\"\n", func(string) string { return abs }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.bookToml != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, BookFile), []byte(tt.bookToml), 0o644))
			}
			got, err := BookSourceDir(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want(dir), filepath.Clean(got))
		})
	}
}

func TestBookSourceDir_BadToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, BookFile), []byte("[book\n"), 0o644))
	_, err := BookSourceDir(dir)
	assert.Error(t, err)
}

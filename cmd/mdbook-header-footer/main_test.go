package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdbook-header-footer/internal/config"
	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(config.Config{Workers: 2}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const stdinPair = `[
	{"root": "/", "config": {"preprocessor": {"header-footer": {"headers": [{"regex": "^chapter1\\.md$", "padding": "HEADER\n"}]}}}, "renderer": "html", "mdbook_version": "0.4.40"},
	{"sections": [
		{"Chapter": {"name": "One", "content": "Hello", "number": [1], "sub_items": [], "path": "chapter1.md", "source_path": "chapter1.md", "parent_names": []}},
		{"Chapter": {"name": "Two", "content": "Hello", "number": [2], "sub_items": [], "path": "chapter2.md", "source_path": "chapter2.md", "parent_names": []}}
	], "__non_exhaustive": null}
]`

func TestRoot_Preprocess(t *testing.T) {
	out, err := run(t, stdinPair)
	require.NoError(t, err)

	var book doctree.Book
	require.NoError(t, json.Unmarshal([]byte(out), &book))
	assert.Equal(t, "HEADER\nHello", book.Sections[0].Chapter.Content)
	assert.Equal(t, "Hello", book.Sections[1].Chapter.Content)
}

func TestRoot_RulesFlagOverridesContext(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	writeFile(t, rules, "footers:\n  - regex: 'chapter2'\n    padding: ' (end)'\n")

	out, err := run(t, stdinPair, "--rules", rules)
	require.NoError(t, err)

	var book doctree.Book
	require.NoError(t, json.Unmarshal([]byte(out), &book))
	assert.Equal(t, "Hello", book.Sections[0].Chapter.Content)
	assert.Equal(t, "Hello (end)", book.Sections[1].Chapter.Content)
}

func TestRoot_InvalidInput(t *testing.T) {
	_, err := run(t, "garbage")
	assert.Error(t, err)
}

func TestSupports(t *testing.T) {
	_, err := run(t, "", "supports", "html")
	assert.NoError(t, err)

	_, err = run(t, "", "supports")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	bookDir := t.TempDir()
	writeFile(t, filepath.Join(bookDir, "book.toml"), `
[book]
title = "Test"

[preprocessor.header-footer]

[[preprocessor.header-footer.headers]]
regex = "^guide/"
padding = "GUIDE\n"

[[preprocessor.header-footer.footers]]
padding = "\nEND"
`)
	writeFile(t, filepath.Join(bookDir, "src", "SUMMARY.md"), "# Summary\n\n[Intro](intro.md)\n\n- [Setup](guide/setup.md)\n- [Draft]()\n")
	writeFile(t, filepath.Join(bookDir, "src", "intro.md"), "intro")
	writeFile(t, filepath.Join(bookDir, "src", "guide", "setup.md"), "setup")

	outDir := filepath.Join(t.TempDir(), "out")
	out, err := run(t, "", "render", bookDir, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "padded 2 of 3 chapters, wrote 2 files")

	intro, err := os.ReadFile(filepath.Join(outDir, "intro.md"))
	require.NoError(t, err)
	assert.Equal(t, "intro\nEND", string(intro))

	setup, err := os.ReadFile(filepath.Join(outDir, "guide", "setup.md"))
	require.NoError(t, err)
	assert.Equal(t, "GUIDE\nsetup\nEND", string(setup))
}

func TestRender_InvalidPattern(t *testing.T) {
	bookDir := t.TempDir()
	writeFile(t, filepath.Join(bookDir, "book.toml"), "[preprocessor.header-footer]\n[[preprocessor.header-footer.headers]]\nregex = \"(\"\npadding = \"x\"\n")
	writeFile(t, filepath.Join(bookDir, "src", "SUMMARY.md"), "- [A](a.md)\n")
	writeFile(t, filepath.Join(bookDir, "src", "a.md"), "a")

	outDir := filepath.Join(t.TempDir(), "out")
	_, err := run(t, "", "render", bookDir, "--out", outDir)
	require.Error(t, err)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPad(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.json")
	writeFile(t, rules, `{"headers": [{"regex": "b$", "padding": "B"}, {"padding": "A"}]}`)
	bookPath := filepath.Join(dir, "book.json")
	writeFile(t, bookPath, `{"sections": [{"Chapter": {"name": "AB", "content": "X", "number": [1], "sub_items": [], "path": "ab", "source_path": "ab", "parent_names": []}}], "__non_exhaustive": null}`)

	out, err := run(t, "", "pad", bookPath, "--rules", rules)
	require.NoError(t, err)

	var book doctree.Book
	require.NoError(t, json.Unmarshal([]byte(out), &book))
	assert.Equal(t, "BAX", book.Sections[0].Chapter.Content)
}

func TestPad_Summary(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	writeFile(t, rules, "footers:\n  - padding: '!'\n")
	writeFile(t, filepath.Join(dir, "src", "SUMMARY.md"), "- [One](one.md)\n")
	writeFile(t, filepath.Join(dir, "src", "one.md"), "one")

	out, err := run(t, "", "pad", filepath.Join(dir, "src", "SUMMARY.md"), "--rules", rules)
	require.NoError(t, err)

	var book doctree.Book
	require.NoError(t, json.Unmarshal([]byte(out), &book))
	assert.Equal(t, "one!", book.Sections[0].Chapter.Content)
}

func TestPad_RequiresRules(t *testing.T) {
	_, err := run(t, "", "pad", "book.json")
	assert.Error(t, err)
}

func TestRender_CustomSourceDir(t *testing.T) {
	bookDir := t.TempDir()
	writeFile(t, filepath.Join(bookDir, "book.toml"), `
[book]
src = "docs"

[preprocessor.header-footer]

[[preprocessor.header-footer.footers]]
padding = "!"
`)
	writeFile(t, filepath.Join(bookDir, "docs", "SUMMARY.md"), "- [A](a.md)\n")
	writeFile(t, filepath.Join(bookDir, "docs", "a.md"), "a")

	outDir := filepath.Join(t.TempDir(), "out")
	_, err := run(t, "", "render", bookDir, "--out", outDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "a!", string(data))
}

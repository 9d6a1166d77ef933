package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
)

// SummaryParser reads an mdBook SUMMARY.md outline using goldmark. It builds
// the chapter structure only; chapter bodies are loaded separately.
//
// Outline rules:
//   - the first level-1 heading is the book title and is dropped
//   - later headings become part titles
//   - a thematic break (---) becomes a separator
//   - links in paragraphs are unnumbered prefix/suffix chapters
//   - links in list items are numbered chapters, nested lists are sub-chapters
//   - a link with an empty destination is a draft chapter without a path
//   - a list item without a link is an error
type SummaryParser struct{}

// ErrUnlinkedItem is returned for a SUMMARY.md list item that has no link.
var ErrUnlinkedItem = errors.New("summary list item has no link")

func (p *SummaryParser) Parse(r io.Reader, filename string) (*doctree.Book, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	b := &summaryBuilder{src: src}
	book := &doctree.Book{}
	seenTitle := false

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			if !seenTitle && node.Level == 1 {
				seenTitle = true
				continue
			}
			seenTitle = true
			book.Sections = append(book.Sections, doctree.NewPartTitle(title))

		case *ast.ThematicBreak:
			book.Sections = append(book.Sections, doctree.NewSeparator())

		case *ast.Paragraph:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if link, ok := c.(*ast.Link); ok {
					ch := b.chapter(link, nil, nil)
					book.Sections = append(book.Sections, doctree.NewChapter(ch))
				}
			}

		case *ast.List:
			items, err := b.list(node, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filename, err)
			}
			book.Sections = append(book.Sections, items...)
		}
	}

	return book, nil
}

type summaryBuilder struct {
	src []byte
	top int // Last top-level section number handed out
}

// list converts list items into numbered chapters under the given parent
// number and parent names.
func (b *summaryBuilder) list(list *ast.List, number []int, parents []string) ([]*doctree.BookItem, error) {
	var items []*doctree.BookItem
	child := 0
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		link := firstLink(li)
		if link == nil {
			return nil, fmt.Errorf("%w: %q (line %d)", ErrUnlinkedItem, itemText(li, b.src), b.line(li))
		}

		var num []int
		if len(number) == 0 {
			b.top++
			num = []int{b.top}
		} else {
			child++
			num = append(append([]int{}, number...), child)
		}

		ch := b.chapter(link, num, parents)
		names := append(append([]string{}, parents...), ch.Name)
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				subItems, err := b.list(sub, num, names)
				if err != nil {
					return nil, err
				}
				ch.SubItems = append(ch.SubItems, subItems...)
			}
		}
		items = append(items, doctree.NewChapter(ch))
	}
	return items, nil
}

// line returns the 1-based source line where the first block of n starts.
func (b *summaryBuilder) line(n ast.Node) int {
	block := n.FirstChild()
	if block == nil || block.Lines().Len() == 0 {
		return 0
	}
	return bytes.Count(b.src[:block.Lines().At(0).Start], []byte("\n")) + 1
}

func (b *summaryBuilder) chapter(link *ast.Link, number []int, parents []string) *doctree.Chapter {
	ch := &doctree.Chapter{
		Name:        inlineText(link, b.src),
		Number:      number,
		ParentNames: append([]string{}, parents...),
	}
	if dest := strings.TrimSpace(string(link.Destination)); dest != "" {
		path := dest
		ch.Path = &path
		source := dest
		ch.SourcePath = &source
	}
	return ch
}

// firstLink returns the link in the first block of a list item.
func firstLink(li ast.Node) *ast.Link {
	block := li.FirstChild()
	if block == nil {
		return nil
	}
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		if link, ok := c.(*ast.Link); ok {
			return link
		}
	}
	return nil
}

// itemText returns the text of the first block of a list item.
func itemText(li ast.Node, src []byte) string {
	if block := li.FirstChild(); block != nil {
		return inlineText(block, src)
	}
	return ""
}

// inlineText gets the plain text of an inline container.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

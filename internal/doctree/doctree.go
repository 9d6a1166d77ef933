package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Book is the root of an mdBook document tree.
type Book struct {
	Sections []*BookItem `json:"sections"`

	// NonExhaustive mirrors mdBook's private marker field so the tree
	// round-trips unchanged. It is always null on the wire.
	NonExhaustive json.RawMessage `json:"__non_exhaustive"`
}

// ItemKind identifies which variant a BookItem holds.
type ItemKind int

const (
	KindChapter ItemKind = iota
	KindSeparator
	KindPartTitle
)

func (k ItemKind) String() string {
	switch k {
	case KindChapter:
		return "chapter"
	case KindSeparator:
		return "separator"
	case KindPartTitle:
		return "part_title"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// BookItem is one entry of a book: a chapter, a separator, or a part title.
// Exactly one variant is set.
type BookItem struct {
	Chapter   *Chapter // Set for chapter items
	Separator bool     // Set for separator items
	PartTitle string   // Set for part title items
}

// Kind reports the variant held by the item.
func (it *BookItem) Kind() ItemKind {
	switch {
	case it.Chapter != nil:
		return KindChapter
	case it.Separator:
		return KindSeparator
	default:
		return KindPartTitle
	}
}

// Chapter is a book chapter with a body and nested sub-chapters.
type Chapter struct {
	Name        string      `json:"name"`
	Content     string      `json:"content"`
	Number      []int       `json:"number"`       // Section number, nil for prefix/suffix chapters
	SubItems    []*BookItem `json:"sub_items"`    // Nested items
	Path        *string     `json:"path"`         // Rendered path relative to src, nil for drafts
	SourcePath  *string     `json:"source_path"`  // Source file path relative to src
	ParentNames []string    `json:"parent_names"` // Names of enclosing chapters
}

// NewChapter returns a chapter item.
func NewChapter(ch *Chapter) *BookItem { return &BookItem{Chapter: ch} }

// NewSeparator returns a separator item.
func NewSeparator() *BookItem { return &BookItem{Separator: true} }

// NewPartTitle returns a part title item.
func NewPartTitle(title string) *BookItem { return &BookItem{PartTitle: title} }

// MarshalJSON encodes the item in mdBook's externally tagged enum form.
func (it BookItem) MarshalJSON() ([]byte, error) {
	switch it.Kind() {
	case KindChapter:
		return json.Marshal(map[string]*Chapter{"Chapter": it.Chapter})
	case KindSeparator:
		return []byte(`"Separator"`), nil
	default:
		return json.Marshal(map[string]string{"PartTitle": it.PartTitle})
	}
}

// UnmarshalJSON decodes an mdBook book item.
func (it *BookItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		if tag != "Separator" {
			return fmt.Errorf("unknown book item %q", tag)
		}
		*it = BookItem{Separator: true}
		return nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("book item: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("book item must have exactly one variant, got %d", len(tagged))
	}
	for tag, body := range tagged {
		switch tag {
		case "Chapter":
			var ch Chapter
			if err := json.Unmarshal(body, &ch); err != nil {
				return fmt.Errorf("chapter: %w", err)
			}
			*it = BookItem{Chapter: &ch}
		case "PartTitle":
			var title string
			if err := json.Unmarshal(body, &title); err != nil {
				return fmt.Errorf("part title: %w", err)
			}
			*it = BookItem{PartTitle: title}
		default:
			return fmt.Errorf("unknown book item %q", tag)
		}
	}
	return nil
}

// MarshalJSON writes empty lists instead of null, which mdBook rejects.
func (c Chapter) MarshalJSON() ([]byte, error) {
	type plain Chapter
	out := plain(c)
	if out.SubItems == nil {
		out.SubItems = []*BookItem{}
	}
	if out.ParentNames == nil {
		out.ParentNames = []string{}
	}
	return json.Marshal(out)
}

// MarshalJSON writes the book with a non-nil section list.
func (b Book) MarshalJSON() ([]byte, error) {
	type plain Book
	out := plain(b)
	if out.Sections == nil {
		out.Sections = []*BookItem{}
	}
	if len(out.NonExhaustive) == 0 {
		out.NonExhaustive = json.RawMessage("null")
	}
	return json.Marshal(out)
}

package doctree

// ChapterHandle is a non-owning view of one chapter used during a padding
// pass. Writes through Body are visible in the tree it was collected from.
type ChapterHandle struct {
	Name string  // Chapter name, for diagnostics only
	Body *string // Points at the chapter's Content field
	Path *string // Chapter path, nil when the chapter has none
}

// CollectChapters walks items depth-first in pre-order and returns a handle
// for every chapter: a chapter comes before its sub-items, siblings keep
// their listed order. Separators and part titles are skipped.
func CollectChapters(items []*BookItem) []ChapterHandle {
	out := make([]ChapterHandle, 0, 128)
	var walk func(items []*BookItem)
	walk = func(items []*BookItem) {
		for _, it := range items {
			if it == nil || it.Chapter == nil {
				continue
			}
			ch := it.Chapter
			out = append(out, ChapterHandle{
				Name: ch.Name,
				Body: &ch.Content,
				Path: ch.Path,
			})
			walk(ch.SubItems)
		}
	}
	walk(items)
	return out
}

// Chapters returns handles for every chapter in the book.
func (b *Book) Chapters() []ChapterHandle {
	return CollectChapters(b.Sections)
}

package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
)

// JSONParser reads a book serialized the way mdBook passes it to
// preprocessors.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read book %s: %w", filename, err)
	}
	book, err := doctree.DecodeBook(data)
	if err != nil {
		return nil, fmt.Errorf("decode book %s: %w", filename, err)
	}
	return book, nil
}

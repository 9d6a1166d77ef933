package doctree

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned for serialized input that is not valid UTF-8.
// encoding/json would replace such bytes with U+FFFD and rewrite chapter
// paths, so the input is rejected instead.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// CheckUTF8 reports the offset of the first invalid byte in data.
func CheckUTF8(data []byte) error {
	if utf8.Valid(data) {
		return nil
	}
	off := 0
	for off < len(data) {
		r, size := utf8.DecodeRune(data[off:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		off += size
	}
	return fmt.Errorf("%w: invalid byte at offset %d", ErrInvalidUTF8, off)
}

// DecodeBook decodes a book serialized as mdBook JSON.
func DecodeBook(data []byte) (*Book, error) {
	if err := CheckUTF8(data); err != nil {
		return nil, err
	}
	var book Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

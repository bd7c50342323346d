// Package document reads pre-extracted roster page dumps.
//
// A dump is JSON with one entry per page, carrying the page's plain text and
// its ruled table as produced by the upstream PDF extractor:
//
//	{"name": "marzo.pdf", "pages": [{"text": "...", "table": [["Info", "1"], ...]}]}
//
// A bundle wraps several dumps: {"documents": [ ... ]}.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"crewswap/internal/roster"
)

// Page is one extracted page. A page whose extraction failed carries Error.
type Page struct {
	Text  string     `json:"text"`
	Table [][]string `json:"table,omitempty"`
	Error string     `json:"error,omitempty"`
}

// File is a decoded page dump. It implements roster.Document.
type File struct {
	Name  string `json:"name"`
	Pages []Page `json:"pages"`
}

// Bundle is a batch of page dumps in upload order.
type Bundle struct {
	Documents []File `json:"documents"`
}

// ErrPageRange is returned for a page index outside the document.
var ErrPageRange = errors.New("page out of range")

func (f *File) PageCount() int { return len(f.Pages) }

func (f *File) PageText(page int) (string, error) {
	p, err := f.page(page)
	if err != nil {
		return "", err
	}
	return p.Text, nil
}

func (f *File) PageTable(page int) (roster.Table, error) {
	p, err := f.page(page)
	if err != nil {
		return nil, err
	}
	if p.Table == nil {
		return nil, fmt.Errorf("page %d: no table", page)
	}
	return roster.Table(p.Table), nil
}

func (f *File) page(i int) (Page, error) {
	if i < 0 || i >= len(f.Pages) {
		return Page{}, fmt.Errorf("page %d: %w", i, ErrPageRange)
	}
	p := f.Pages[i]
	if p.Error != "" {
		return Page{}, fmt.Errorf("page %d: %s", i, p.Error)
	}
	return p, nil
}

// Decode reads one page dump.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode page dump: %w", err)
	}
	return &f, nil
}

// DecodeBundle reads a batch of page dumps.
func DecodeBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}

// Load reads a page dump from disk. A missing name defaults to the file's base name.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = filepath.Base(path)
	}
	return f, nil
}

// Named converts the bundle into roster inputs, keeping order. Unnamed
// documents are called "document-N".
func (b *Bundle) Named() []roster.NamedDocument {
	out := make([]roster.NamedDocument, len(b.Documents))
	for i := range b.Documents {
		f := &b.Documents[i]
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("document-%d", i+1)
		}
		out[i] = roster.NamedDocument{Name: name, Document: f}
	}
	return out
}

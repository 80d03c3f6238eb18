// Package pagination splits ordered collections into 1-indexed pages.
// Out-of-range or malformed page numbers clamp to the nearest valid page.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultPerPage is used when a non-positive page size is supplied.
const DefaultPerPage = 10

// Paginator describes a collection of Count items split into pages of PerPage.
type Paginator struct {
	Count   int64 `json:"count"`
	PerPage int   `json:"per_page"`
}

// Window is the resolved slice of the collection for one page.
type Window struct {
	Number int
	Offset int
	Limit  int
}

// New returns a paginator; perPage <= 0 falls back to DefaultPerPage.
func New(count int64, perPage int) Paginator {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PerPage: perPage}
}

// NumPages is at least 1: an empty collection still has one empty page.
func (p Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return int((p.Count + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Clamp maps any integer onto [1, NumPages].
func (p Paginator) Clamp(number int) int {
	if number < 1 {
		return 1
	}
	if last := p.NumPages(); number > last {
		return last
	}
	return number
}

// Resolve parses a raw page parameter and returns the window to fetch.
func (p Paginator) Resolve(raw string) Window {
	number := p.Clamp(ParseNumber(raw))
	return Window{
		Number: number,
		Offset: (number - 1) * p.PerPage,
		Limit:  p.PerPage,
	}
}

// ParseNumber reads a page parameter; anything non-numeric is page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

// Page is one page of T plus navigation metadata.
type Page[T any] struct {
	Items              []T   `json:"items"`
	Number             int   `json:"number"`
	Count              int64 `json:"count"`
	NumPages           int   `json:"num_pages"`
	PerPage            int   `json:"per_page"`
	HasPrevious        bool  `json:"has_previous"`
	HasNext            bool  `json:"has_next"`
	PreviousPageNumber int   `json:"previous_page_number,omitempty"`
	NextPageNumber     int   `json:"next_page_number,omitempty"`
}

// NewPage assembles a page from the items already fetched for w.
func NewPage[T any](p Paginator, w Window, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	numPages := p.NumPages()
	page := Page[T]{
		Items:       items,
		Number:      w.Number,
		Count:       p.Count,
		NumPages:    numPages,
		PerPage:     p.PerPage,
		HasPrevious: w.Number > 1,
		HasNext:     w.Number < numPages,
	}
	if page.HasPrevious {
		page.PreviousPageNumber = w.Number - 1
	}
	if page.HasNext {
		page.NextPageNumber = w.Number + 1
	}
	return page
}

// Paginate slices an in-memory ordered collection.
func Paginate[T any](items []T, raw string, perPage int) Page[T] {
	p := New(int64(len(items)), perPage)
	w := p.Resolve(raw)

	end := w.Offset + w.Limit
	if end > len(items) {
		end = len(items)
	}
	var slice []T
	if w.Offset < len(items) {
		slice = append(slice, items[w.Offset:end]...)
	}
	return NewPage(p, w, slice)
}

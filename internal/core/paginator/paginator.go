// Package paginator splits an ordered collection into fixed-size pages.
//
// Page numbers are 1-based. A missing or malformed number selects the first
// page and a number past the end selects the last one, so a request never
// fails because of its page parameter. An empty collection still has one
// (empty) page.
package paginator

import (
	"strconv"

	"gorm.io/gorm"
)

type Page struct {
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

// New resolves the raw page parameter against count items split perPage at a time.
func New(count int64, perPage int, raw string) Page {
	if perPage <= 0 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	numPages := int((count + int64(perPage) - 1) / int64(perPage))
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(raw)
	switch {
	case err != nil, number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}

	return Page{Number: number, NumPages: numPages, Count: count, PerPage: perPage}
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// Len is the number of items on this page.
func (p Page) Len() int {
	rest := p.Count - int64(p.Offset())
	if rest <= 0 {
		return 0
	}
	if rest > int64(p.PerPage) {
		return p.PerPage
	}
	return int(rest)
}

func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return 0
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return 0
	}
	return p.Number - 1
}

// Scope limits a query to the rows of p.
func (p Page) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

// Package view derives the visible page of labs from a cached snapshot, the
// search text and the requested page. Everything here is pure.
package view

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/labctl/labctl/internal/labapi"
)

// PageSize is the number of rows per page.
const PageSize = 10

// Page is the derived view of one snapshot.
type Page struct {
	Rows       []labapi.Lab
	Page       int // effective 1-based page after clamping
	TotalPages int // zero when nothing matches
	Total      int // matches across all pages
	Empty      bool
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Range returns the 1-based index of the first and last visible row.
func (p Page) Range() (first, last int) {
	if p.Empty {
		return 0, 0
	}
	first = (p.Page-1)*PageSize + 1
	return first, first + len(p.Rows) - 1
}

// Filter keeps the labs whose name or description contains search,
// compared case-insensitively. Empty search keeps everything. Order is
// preserved and the input slice is never modified.
func Filter(labs []labapi.Lab, search string) []labapi.Lab {
	// Casers are stateful; one per call keeps Filter safe for concurrent use.
	folder := cases.Fold()
	needle := folder.String(search)
	out := make([]labapi.Lab, 0, len(labs))
	for _, lab := range labs {
		if needle == "" ||
			strings.Contains(folder.String(lab.Name), needle) ||
			strings.Contains(folder.String(lab.Description), needle) {
			out = append(out, lab)
		}
	}
	return out
}

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// ClampPage bounds page to [1, total], or 1 when there are no pages.
func ClampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the window of labs for page, clamped to the valid range.
func Paginate(labs []labapi.Lab, page int) []labapi.Lab {
	page = ClampPage(page, TotalPages(len(labs)))
	start := (page - 1) * PageSize
	if start >= len(labs) {
		return []labapi.Lab{}
	}
	end := min(start+PageSize, len(labs))
	return labs[start:end:end]
}

// Derive filters labs by search and returns the requested page.
func Derive(labs []labapi.Lab, search string, page int) Page {
	filtered := Filter(labs, search)
	total := TotalPages(len(filtered))
	effective := ClampPage(page, total)
	return Page{
		Rows:       Paginate(filtered, effective),
		Page:       effective,
		TotalPages: total,
		Total:      len(filtered),
		Empty:      len(filtered) == 0,
	}
}

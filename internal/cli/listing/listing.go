// Package listing filters, sorts and pages resource lists on the client. The API returns whole
// collections for most resources, so every list page narrows them locally.
package listing

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Contains reports whether needle occurs in haystack, ignoring case. An empty needle matches.
func Contains(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Filter returns the items keep accepts, preserving order
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Page is one page of a filtered list
type Page[T any] struct {
	Items    []T
	Total    int // items after filtering, before paging
	Page     int
	PageSize int
	Pages    int
}

// Paginate returns the 1-based page of items. Out of range pages are empty; a page size below
// one returns everything.
func Paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	if size < 1 {
		return Page[T]{Items: items, Total: total, Page: 1, PageSize: total, Pages: 1}
	}
	if page < 1 {
		page = 1
	}

	pages := total / size
	if total%size != 0 {
		pages++
	}
	// Compare pages before multiplying so huge page numbers cannot overflow
	if page > pages {
		return Page[T]{Items: []T{}, Total: total, Page: page, PageSize: size, Pages: pages}
	}
	start := (page - 1) * size
	end := start + min(size, total-start)

	return Page[T]{Items: items[start:end], Total: total, Page: page, PageSize: size, Pages: pages}
}

// SortBy stably sorts a copy of items by key, descending when desc is set
func SortBy[T any, K cmp.Ordered](items []T, key func(T) K, desc bool) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		c := cmp.Compare(key(a), key(b))
		if desc {
			return -c
		}
		return c
	})
	return out
}

// SortByFold is SortBy for strings, ignoring case
func SortByFold[T any](items []T, key func(T) string, desc bool) []T {
	return SortBy(items, func(it T) string { return strings.ToLower(key(it)) }, desc)
}

// DayRange is an inclusive range of whole days. Zero ends are open.
type DayRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range has no bounds
func (r DayRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls on or between the range's days
func (r DayRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(StartOfDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && !t.Before(StartOfDay(r.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

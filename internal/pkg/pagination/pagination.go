package pagination

import (
	"strconv"

	"gorm.io/gorm"
)

// DefaultLimit is applied when the caller passes no limit.
const DefaultLimit = 25

// MaxLimit caps the page size.
const MaxLimit = 100

// Page is one page of items plus the cursor for the next one. NextCursor is
// nil when the collection is exhausted.
type Page[T any] struct {
	Items       []T     `json:"items"`
	NextCursor  *string `json:"next_cursor"`
	HasNextPage bool    `json:"has_next_page"`
}

// ParseCursor decodes an opaque cursor into the id boundary. Empty means
// first page. Malformed cursors behave like no cursor rather than erroring.
func ParseCursor(raw string) *uint {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

// ClampLimit normalizes a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Scope restricts a query to rows before the cursor, newest first. Callers
// must Limit(limit+1): the over-fetch is how Collect detects a next page.
func Scope(cursor *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor != nil {
			db = db.Where("id < ?", *cursor)
		}
		return db.Order("id DESC")
	}
}

// Collect turns an over-fetched (limit+1) slice into a Page: trim back to
// limit, flag the extra row as a next page, and derive the cursor from the
// last retained item. Paging this way yields no duplicates and no gaps.
func Collect[T any](items []T, limit int, idOf func(T) uint) Page[T] {
	page := Page[T]{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasNextPage = true
	}
	if page.HasNextPage && len(page.Items) > 0 {
		cur := strconv.FormatUint(uint64(idOf(page.Items[len(page.Items)-1])), 10)
		page.NextCursor = &cur
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}

// Reverse flips a page's items in place; message listings return newest-first
// pages re-ordered to chronological.
func Reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

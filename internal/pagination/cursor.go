// Package pagination provides opaque offset cursors for long result lists
// such as the transactions of a block.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCursor is returned for cursors that do not decode or that belong
// to a different list.
var ErrInvalidCursor = errors.New("pagination: invalid cursor")

// Cursor is a position in a list identified by scope.
type Cursor struct {
	Scope  string
	Offset int
}

// Encode returns an opaque cursor for offset within scope.
func Encode(scope string, offset int) string {
	raw := fmt.Sprintf("%d|%s", offset, scope)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// Decode parses an opaque cursor string. Returns nil for empty input.
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCursor
	}
	offset, err := strconv.Atoi(parts[0])
	if err != nil || offset < 0 {
		return nil, ErrInvalidCursor
	}
	return &Cursor{Scope: parts[1], Offset: offset}, nil
}

// Page holds one page of items and the cursor for the next one.
type Page[T any] struct {
	Items      []T    `json:"items"`
	Total      int    `json:"total"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// Slice returns the page of items starting at cursor. The cursor must have
// been issued for scope; an empty cursor starts at the beginning.
func Slice[T any](items []T, scope, cursor string, limit int) (Page[T], error) {
	c, err := Decode(cursor)
	if err != nil {
		return Page[T]{}, err
	}
	offset := 0
	if c != nil {
		if c.Scope != scope {
			return Page[T]{}, ErrInvalidCursor
		}
		offset = c.Offset
	}
	if limit <= 0 {
		limit = len(items)
	}

	page := Page[T]{Total: len(items)}
	if offset >= len(items) {
		page.Items = []T{}
		return page, nil
	}
	end := min(offset+limit, len(items))
	page.Items = items[offset:end]
	if end < len(items) {
		page.HasMore = true
		page.NextCursor = Encode(scope, end)
	}
	return page, nil
}

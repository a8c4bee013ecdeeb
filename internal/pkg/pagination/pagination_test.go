package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ ID uint }

func idOf(r row) uint { return r.ID }

func TestParseCursor(t *testing.T) {
	assert.Nil(t, ParseCursor(""))
	assert.Nil(t, ParseCursor("not-a-number"))
	assert.Nil(t, ParseCursor("0"))

	c := ParseCursor("42")
	require.NotNil(t, c)
	assert.Equal(t, uint(42), *c)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-5))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, MaxLimit, ClampLimit(1000))
}

func TestCollect_NoNextPage(t *testing.T) {
	page := Collect([]row{{3}, {2}, {1}}, 3, idOf)
	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasNextPage)
	assert.Nil(t, page.NextCursor)
}

func TestCollect_TrimsOverfetch(t *testing.T) {
	page := Collect([]row{{5}, {4}, {3}, {2}}, 3, idOf)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasNextPage)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "3", *page.NextCursor)
}

func TestCollect_EmptyIsNotNil(t *testing.T) {
	page := Collect(nil, 3, idOf)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextCursor)
}

// Paging through the whole set must yield each item exactly once.
func TestCollect_FullWalkNoDuplicatesNoGaps(t *testing.T) {
	const total, limit = 23, 5
	all := make([]row, total)
	for i := range all {
		all[i] = row{ID: uint(total - i)} // 23..1, newest first
	}

	fetch := func(cursor *uint) []row {
		var out []row
		for _, r := range all {
			if cursor != nil && r.ID >= *cursor {
				continue
			}
			out = append(out, r)
			if len(out) == limit+1 {
				break
			}
		}
		return out
	}

	seen := map[uint]int{}
	var cursor *uint
	for {
		page := Collect(fetch(cursor), limit, idOf)
		for _, r := range page.Items {
			seen[r.ID]++
		}
		if page.NextCursor == nil {
			break
		}
		cursor = ParseCursor(*page.NextCursor)
		require.NotNil(t, cursor)
	}

	assert.Len(t, seen, total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %d seen %d times", id, n)
	}
}

func TestReverse(t *testing.T) {
	items := []row{{3}, {2}, {1}}
	Reverse(items)
	assert.Equal(t, []row{{1}, {2}, {3}}, items)
}

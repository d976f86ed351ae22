package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testTable() UsageTable {
	return UsageTable{
		{Project: "nano01", User: "bob", Date: day(2022, 2, 10), SBUUsed: 50},
		{Project: "bio02", User: "carol", Date: day(2022, 1, 3), SBUUsed: 10},
		{Project: "nano01", User: "alice", Date: day(2022, 2, 10), SBUUsed: 20},
		{Project: "nano01", User: "alice", Date: day(2022, 1, 15), SBUUsed: 30},
	}
}

func TestSortByDate(t *testing.T) {
	table := testTable()
	table.SortByDate()

	assert.Equal(t, day(2022, 1, 3), table[0].Date)
	assert.Equal(t, day(2022, 1, 15), table[1].Date)

	// Same-date rows break ties by project, then user.
	assert.Equal(t, "alice", table[2].User)
	assert.Equal(t, "bob", table[3].User)
}

func TestFilterRange(t *testing.T) {
	table := testTable()

	filtered := table.FilterRange(day(2022, 1, 10), day(2022, 1, 31))
	require.Len(t, filtered, 1)
	assert.Equal(t, day(2022, 1, 15), filtered[0].Date)

	// Bounds are inclusive.
	filtered = table.FilterRange(day(2022, 1, 3), day(2022, 2, 10))
	assert.Len(t, filtered, 4)

	// The receiver keeps its original rows.
	assert.Len(t, table, 4)
}

func TestDateRange(t *testing.T) {
	start, end, ok := testTable().DateRange()
	require.True(t, ok)
	assert.Equal(t, day(2022, 1, 3), start)
	assert.Equal(t, day(2022, 2, 10), end)

	_, _, ok = UsageTable{}.DateRange()
	assert.False(t, ok)
}

func TestProjectsAndUsers(t *testing.T) {
	table := testTable()
	assert.Equal(t, []string{"bio02", "nano01"}, table.Projects())
	assert.Equal(t, []string{"alice", "bob", "carol"}, table.Users())
}

func TestValidationSet(t *testing.T) {
	set := NewValidationSet([]string{"bob", "alice", "alice"})

	assert.True(t, set.Contains("alice"))
	assert.False(t, set.Contains("mallory"))
	assert.Equal(t, []string{"alice", "bob"}, set.Sorted())
}

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityCalendar(t *testing.T) {
	cal := NewActivityCalendar()
	day := time.Date(2024, time.March, 2, 18, 0, 0, 0, time.UTC)
	cal.Increment(day)
	cal.Increment(day.Add(time.Hour))
	cal.Increment(time.Date(2023, time.December, 31, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, 2, cal.Count(day))

	year := cal.Year(2024, time.UTC)
	require.Len(t, year, 366)
	assert.Equal(t, 2, year[31+29+1]) // Jan 31 + Feb 29 + Mar 1

	rolling := cal.Rolling(day)
	require.Len(t, rolling, 365)
	assert.Equal(t, 2, rolling[len(rolling)-1])
	assert.Equal(t, 1, rolling[len(rolling)-1-62]) // Dec 31 is 62 days before Mar 2

	assert.Equal(t, []int{2023, 2024}, cal.Years())
}

func TestDefaultSnapshotRoundTrip(t *testing.T) {
	snap := DefaultSnapshot(time.UnixMilli(1_700_000_000_000))
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap, &decoded)
}

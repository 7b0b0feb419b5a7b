package model

import (
	"sort"
	"time"
)

const activityDayLayout = "2006-01-02"

// ActivityCalendar counts completed tests per calendar day.
type ActivityCalendar struct {
	Days map[string]int `json:"days"`
}

// NewActivityCalendar returns an empty calendar.
func NewActivityCalendar() *ActivityCalendar {
	return &ActivityCalendar{Days: map[string]int{}}
}

// Increment adds one test on the day of t, in t's location.
func (c *ActivityCalendar) Increment(t time.Time) {
	if c.Days == nil {
		c.Days = map[string]int{}
	}
	c.Days[t.Format(activityDayLayout)]++
}

// Count returns the number of tests on the day of t.
func (c *ActivityCalendar) Count(t time.Time) int {
	return c.Days[t.Format(activityDayLayout)]
}

// Year returns per-day counts for a calendar year, January 1st first.
func (c *ActivityCalendar) Year(year int, loc *time.Location) []int {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0)
	return c.span(start, end)
}

// Rolling returns per-day counts for the 365 days ending on the day of now.
func (c *ActivityCalendar) Rolling(now time.Time) []int {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return c.span(end.AddDate(0, 0, -365), end)
}

func (c *ActivityCalendar) span(start, end time.Time) []int {
	var out []int
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, c.Days[d.Format(activityDayLayout)])
	}
	return out
}

// Years lists the years that have at least one test, ascending.
func (c *ActivityCalendar) Years() []int {
	seen := map[int]struct{}{}
	for day, n := range c.Days {
		if n == 0 {
			continue
		}
		t, err := time.Parse(activityDayLayout, day)
		if err != nil {
			continue
		}
		seen[t.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

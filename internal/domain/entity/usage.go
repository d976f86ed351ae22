package entity

import (
	"sort"
	"time"
)

// UsageRecord is a single accounting row: the SBU requested and consumed by
// one user of one project on one date. Records are immutable once parsed.
type UsageRecord struct {
	Project      string    `json:"project"`
	User         string    `json:"user"`
	Date         time.Time `json:"date"`
	SBURequested float64   `json:"sbu_requested"`
	SBUUsed      float64   `json:"sbu_used"`
}

// UsageTable is an ordered collection of usage records.
type UsageTable []UsageRecord

// SortByDate orders the table chronologically, breaking ties by project and
// user so repeated runs over the same input produce identical output.
func (t UsageTable) SortByDate() {
	sort.SliceStable(t, func(i, j int) bool {
		if !t[i].Date.Equal(t[j].Date) {
			return t[i].Date.Before(t[j].Date)
		}
		if t[i].Project != t[j].Project {
			return t[i].Project < t[j].Project
		}
		return t[i].User < t[j].User
	})
}

// FilterRange returns a new table holding only the records whose date falls
// within [start, end]. The receiver is left untouched.
func (t UsageTable) FilterRange(start, end time.Time) UsageTable {
	filtered := UsageTable{}
	for _, rec := range t {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// DateRange reports the oldest and newest record dates. ok is false for an
// empty table.
func (t UsageTable) DateRange() (start, end time.Time, ok bool) {
	if len(t) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = t[0].Date, t[0].Date
	for _, rec := range t[1:] {
		if rec.Date.Before(start) {
			start = rec.Date
		}
		if rec.Date.After(end) {
			end = rec.Date
		}
	}
	return start, end, true
}

// Projects returns the distinct project names, sorted.
func (t UsageTable) Projects() []string {
	seen := map[string]bool{}
	names := []string{}
	for _, rec := range t {
		if !seen[rec.Project] {
			seen[rec.Project] = true
			names = append(names, rec.Project)
		}
	}
	sort.Strings(names)
	return names
}

// Users returns the distinct usernames, sorted.
func (t UsageTable) Users() []string {
	seen := map[string]bool{}
	names := []string{}
	for _, rec := range t {
		if !seen[rec.User] {
			seen[rec.User] = true
			names = append(names, rec.User)
		}
	}
	sort.Strings(names)
	return names
}

// ValidationSet is the allow-list of known usernames. It is loaded once per
// report run and read-only thereafter.
type ValidationSet map[string]struct{}

// NewValidationSet builds a set from a list of usernames.
func NewValidationSet(users []string) ValidationSet {
	set := make(ValidationSet, len(users))
	for _, u := range users {
		set[u] = struct{}{}
	}
	return set
}

// Contains reports whether the username is part of the allow-list.
func (s ValidationSet) Contains(user string) bool {
	_, ok := s[user]
	return ok
}

// Sorted returns the members of the set in lexicographic order.
func (s ValidationSet) Sorted() []string {
	users := make([]string, 0, len(s))
	for u := range s {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

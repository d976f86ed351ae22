package entity

import "time"

// MonthlyUsage represents the SBU consumption for a specific month, used for trend analysis.
type MonthlyUsage struct {
	Month string  `json:"month"`
	SBU   float64 `json:"sbu"`
}

// ProjectSummary is one aggregated report row: the summed SBU figures for a
// single project over the report period.
type ProjectSummary struct {
	Project          string         `json:"project"`
	Users            []string       `json:"users"`
	SBURequested     float64        `json:"sbu_requested"`
	SBUUsed          float64        `json:"sbu_used"`
	SBUAllocated     float64        `json:"sbu_allocated,omitempty"`
	PercentUsed      *float64       `json:"percent_used,omitempty"`
	MonthlyUsage     []MonthlyUsage `json:"monthly_usage,omitempty"`
	PeriodStart      time.Time      `json:"period_start"`
	PeriodEnd        time.Time      `json:"period_end"`
	RecordCount      int            `json:"record_count"`
	UsageFormatted   []string       `json:"-"`
	UnknownUsers     []string       `json:"unknown_users,omitempty"`
	AllocationSource string         `json:"allocation_source,omitempty"`
}

// ValidationReport lists the usernames of a usage table that are missing
// from the validation set.
type ValidationReport struct {
	UnknownUsers []string            `json:"unknown_users"`
	KnownUsers   []string            `json:"known_users"`
	ByProject    map[string][]string `json:"by_project,omitempty"`
}

// Clean reports whether every username was found in the validation set.
func (r ValidationReport) Clean() bool {
	return len(r.UnknownUsers) == 0
}

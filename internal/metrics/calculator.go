/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package metrics

import (
    "fmt"
    "strings"

    "github.com/redhat-ai-tools/jira-dashboard/internal/jiratime"
)

// PriorityCalculator computes fix counts for a single priority tier, e.g.
// blocker-only or critical-only bug reports. The priority ID set and its
// display label are parameters so one implementation serves every tier.
type PriorityCalculator struct {
    PriorityIDs  []string
    PriorityName string
    BugTypeIDs   []string
}

// NewPriorityCalculator returns a calculator for the given priority codes.
// Issue type "1" (bug) is the only type counted as a bug.
func NewPriorityCalculator(priorityIDs []string, priorityName string) *PriorityCalculator {
    return &PriorityCalculator{PriorityIDs: priorityIDs, PriorityName: priorityName, BugTypeIDs: []string{"1"}}
}

// IsTargetPriority reports whether the record's priority code is one of the
// calculator's target codes.
func (c *PriorityCalculator) IsTargetPriority(priority any) bool {
    return matchCode(priority, c.PriorityIDs)
}

// IsBugType reports whether the record's issue type code denotes a bug.
func (c *PriorityCalculator) IsBugType(issueType any) bool {
    return matchCode(issueType, c.BugTypeIDs)
}

// IsResolved mirrors the package-level resolution rule.
func (c *PriorityCalculator) IsResolved(resolutionDate any) bool {
    return IsResolved(resolutionDate)
}

// WithinWindow reports whether the timestamp falls inside the last n days.
// This shares the ISO-aware parser with the generic aggregation; the
// per-tier and generic paths intentionally use one window rule.
func (c *PriorityCalculator) WithinWindow(ts any, days int) bool {
    return jiratime.WithinDays(ts, days)
}

func matchCode(v any, codes []string) bool {
    if v == nil { return false }
    s := strings.TrimSpace(fmt.Sprintf("%v", v))
    if s == "" { return false }
    for _, c := range codes {
        if s == c { return true }
    }
    return false
}

// TierStats is the count bundle for a single-tier analysis.
type TierStats struct {
    TotalIssues        int `json:"total_issues"`
    TotalBugs          int `json:"total_bugs"`
    TargetPriority     int `json:"target_priority_issues"`
    ResolvedIssues     int `json:"resolved_issues"`
    RecentResolved     int `json:"recent_resolved"`
    FixedWithinWindow  int `json:"fixed_within_window"`
}

// FixedBug is one resolved bug from the target tier, trimmed for listing.
type FixedBug struct {
    Key            string `json:"key"`
    Summary        string `json:"summary"`
    Priority       string `json:"priority"`
    Status         string `json:"status"`
    Resolution     string `json:"resolution,omitempty"`
    ResolutionDate string `json:"resolution_date"`
    IssueType      string `json:"issue_type"`
}

// Calculate walks the records and returns tier stats plus the bugs of the
// target priority resolved within the window. Records missing fields count
// with defaults; nothing here returns an error.
func (c *PriorityCalculator) Calculate(issues []map[string]any, windowDays int) (TierStats, []FixedBug) {
    stats := TierStats{TotalIssues: len(issues)}
    var fixed []FixedBug

    for _, issue := range issues {
        issueType := issue["issue_type"]
        priority := issue["priority"]
        resolutionDate := issue["resolution_date"]

        if c.IsBugType(issueType) { stats.TotalBugs++ }
        if c.IsTargetPriority(priority) { stats.TargetPriority++ }

        resolved := c.IsResolved(resolutionDate)
        if resolved {
            stats.ResolvedIssues++
            if c.WithinWindow(resolutionDate, windowDays) { stats.RecentResolved++ }
        }

        if c.IsBugType(issueType) && c.IsTargetPriority(priority) && resolved && c.WithinWindow(resolutionDate, windowDays) {
            stats.FixedWithinWindow++
            fixed = append(fixed, FixedBug{
                Key:            getStr(issue, "key", "N/A"),
                Summary:        truncate(getStr(issue, "summary", "N/A"), 100),
                Priority:       fmt.Sprintf("%v", priority),
                Status:         getStr(issue, "status", ""),
                Resolution:     getStr(issue, "resolution", ""),
                ResolutionDate: jiratime.Format(resolutionDate),
                IssueType:      fmt.Sprintf("%v", issueType),
            })
        }
    }
    return stats, fixed
}

func truncate(s string, max int) string {
    if len(s) <= max { return s }
    return s[:max]
}

/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */

// Package metrics aggregates flat Jira issue records into the counts the
// reports publish. Records arrive as loosely-typed maps straight from the
// MCP export; a record missing fields degrades to defaults and never aborts
// an aggregation.
package metrics

import (
    "fmt"
    "strings"

    "github.com/redhat-ai-tools/jira-dashboard/internal/jiratime"
)

// ItemDigest is the per-issue line rendered into report listings.
type ItemDigest struct {
    Key            string `json:"key"`
    Summary        string `json:"summary"`
    Priority       string `json:"priority"`
    Status         string `json:"status,omitempty"`
    Updated        string `json:"updated,omitempty"`
    Created        string `json:"created,omitempty"`
    ResolutionDate string `json:"resolution_date,omitempty"`
}

// Summary holds the aggregate counts for one item type plus the categorized
// listings. PriorityBreakdown is populated for non-bug item types only.
type Summary struct {
    Metrics           map[string]int `json:"metrics"`
    PriorityBreakdown map[string]int `json:"priority_breakdown,omitempty"`
    RecentActivity    []ItemDigest   `json:"recent_activity_items"`
    RecentlyCreated   []ItemDigest   `json:"recently_created_items"`
    RecentlyResolved  []ItemDigest   `json:"recently_resolved_items"`
}

// Priority codes as exported by the source system.
const (
    PriorityBlocker  = "1"
    PriorityCritical = "2"
)

// CalculateItemMetrics computes counts for a list of issue records over the
// given recent-activity window. itemType "bug" uses blocker/critical buckets;
// any other type gets generic totals plus a raw-priority histogram.
//
// Every input record lands in RecentActivity: the query that produced the
// records already applied the activity window, so that list is not
// re-filtered here. "Created recently" and "resolved recently" are separate
// facts re-derived from the record's own timestamps.
func CalculateItemMetrics(items []map[string]any, windowDays int, itemType string) Summary {
    isBug := strings.EqualFold(itemType, "bug")

    out := Summary{Metrics: map[string]int{}}
    if isBug {
        for _, k := range []string{
            "total_blocker_bugs", "total_critical_bugs",
            "total_blocker_bugs_resolved", "total_critical_bugs_resolved",
            "blocker_bugs_recent_activity", "critical_bugs_recent_activity",
            "blocker_bugs_created_recently", "critical_bugs_created_recently",
            "blocker_bugs_resolved_recently", "critical_bugs_resolved_recently",
        } {
            out.Metrics[k] = 0
        }
    } else {
        for _, k := range []string{
            "total_items", "total_resolved_items", "items_recent_activity",
            "items_created_recently", "items_resolved_recently",
        } {
            out.Metrics[k] = 0
        }
        out.PriorityBreakdown = map[string]int{}
    }
    out.RecentActivity = []ItemDigest{}
    out.RecentlyCreated = []ItemDigest{}
    out.RecentlyResolved = []ItemDigest{}

    for _, item := range items {
        priority := getStr(item, "priority", "Unknown")
        created := item["created"]
        updated := item["updated"]
        resolutionDate := item["resolution_date"]

        resolved := IsResolved(resolutionDate)
        blocker := priority == PriorityBlocker
        critical := priority == PriorityCritical

        if isBug {
            if blocker {
                out.Metrics["total_blocker_bugs"]++
                if resolved { out.Metrics["total_blocker_bugs_resolved"]++ }
            } else if critical {
                out.Metrics["total_critical_bugs"]++
                if resolved { out.Metrics["total_critical_bugs_resolved"]++ }
            }
        } else {
            out.Metrics["total_items"]++
            if resolved { out.Metrics["total_resolved_items"]++ }
            out.PriorityBreakdown[priority]++
        }

        out.RecentActivity = append(out.RecentActivity, ItemDigest{
            Key:            getStr(item, "key", "Unknown"),
            Summary:        getStr(item, "summary", "No summary"),
            Priority:       priority,
            Status:         getStr(item, "status", "Unknown"),
            Updated:        jiratime.Format(updated),
            Created:        jiratime.Format(created),
            ResolutionDate: jiratime.Format(resolutionDate),
        })
        if isBug {
            if blocker {
                out.Metrics["blocker_bugs_recent_activity"]++
            } else if critical {
                out.Metrics["critical_bugs_recent_activity"]++
            }
        } else {
            out.Metrics["items_recent_activity"]++
        }

        if jiratime.WithinDays(created, windowDays) {
            out.RecentlyCreated = append(out.RecentlyCreated, ItemDigest{
                Key:      getStr(item, "key", "Unknown"),
                Summary:  getStr(item, "summary", "No summary"),
                Priority: priority,
                Created:  jiratime.Format(created),
            })
            if isBug {
                if blocker {
                    out.Metrics["blocker_bugs_created_recently"]++
                } else if critical {
                    out.Metrics["critical_bugs_created_recently"]++
                }
            } else {
                out.Metrics["items_created_recently"]++
            }
        }

        if resolved && jiratime.WithinDays(resolutionDate, windowDays) {
            out.RecentlyResolved = append(out.RecentlyResolved, ItemDigest{
                Key:            getStr(item, "key", "Unknown"),
                Summary:        getStr(item, "summary", "No summary"),
                Priority:       priority,
                ResolutionDate: jiratime.Format(resolutionDate),
            })
            if isBug {
                if blocker {
                    out.Metrics["blocker_bugs_resolved_recently"]++
                } else if critical {
                    out.Metrics["critical_bugs_resolved_recently"]++
                }
            } else {
                out.Metrics["items_resolved_recently"]++
            }
        }
    }

    return out
}

// IsResolved infers resolution from the resolution_date field alone: the
// export sets it to a usable timestamp only once the issue is resolved.
// Status codes are deliberately not consulted.
func IsResolved(resolutionDate any) bool {
    if resolutionDate == nil { return false }
    s := strings.TrimSpace(fmt.Sprintf("%v", resolutionDate))
    switch strings.ToLower(s) {
    case "", "none", "null", "unknown", "invalid":
        return false
    }
    return true
}

func getStr(item map[string]any, key, def string) string {
    v, ok := item[key]
    if !ok || v == nil { return def }
    if s, isStr := v.(string); isStr {
        if s == "" { return def }
        return s
    }
    return fmt.Sprintf("%v", v)
}

// CalculateTotalIssues counts issues, tolerating a nil slice.
func CalculateTotalIssues(issues []map[string]any) int { return len(issues) }

// FilterTestIssues drops records whose summary is the literal placeholder
// "test", which the source project uses for throwaway issues.
func FilterTestIssues(issues []map[string]any) []map[string]any {
    filtered := make([]map[string]any, 0, len(issues))
    for _, is := range issues {
        if strings.EqualFold(strings.TrimSpace(getStr(is, "summary", "")), "test") { continue }
        filtered = append(filtered, is)
    }
    return filtered
}

var priorityLabels = map[string]string{
    "10200": "Normal",
    "3":     "Major",
    "1":     "Blocker",
    "2":     "Critical",
}

var statusLabels = map[string]string{
    "6":     "Resolved/Closed",
    "10018": "In Progress",
    "10016": "New",
    "12422": "Review",
}

var issueTypeLabels = map[string]string{
    "10700": "Feature",
    "1":     "Bug",
    "16":    "Epic",
    "17":    "Story",
    "3":     "Task",
}

// MapPriority converts a numeric priority code to its label, falling back to
// the raw code for anything unmapped.
func MapPriority(id any) string { return mapCode(priorityLabels, id) }

// MapStatus converts a numeric status code to its label.
func MapStatus(id any) string { return mapCode(statusLabels, id) }

// MapIssueType converts a numeric issue type code to its label.
func MapIssueType(id any) string { return mapCode(issueTypeLabels, id) }

func mapCode(table map[string]string, id any) string {
    s := fmt.Sprintf("%v", id)
    if label, ok := table[s]; ok { return label }
    return s
}

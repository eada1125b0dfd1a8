/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package domain

import "time"

// Issue is the flat record the MCP export yields after normalization. All
// codes stay string-encoded exactly as exported; timestamps are heterogeneous
// and go through jiratime before display.
type Issue struct {
    Key            string `json:"key"`
    Summary        string `json:"summary"`
    Project        string `json:"project"`
    IssueType      string `json:"issue_type"`
    Priority       string `json:"priority"`
    Status         string `json:"status"`
    Resolution     string `json:"resolution,omitempty"`
    Component      string `json:"component,omitempty"`
    Created        string `json:"created"`
    Updated        string `json:"updated"`
    ResolutionDate string `json:"resolution_date"`
}

// ReportRun is one archived execution of a report pipeline.
type ReportRun struct {
    ID         int64
    Report     string
    Project    string
    StartedAt  time.Time
    FinishedAt *time.Time
    Issues     int
    OutputPath string
    Success    bool
    Error      string
}

// EpicSummary is one parsed block from an epic summary document.
type EpicSummary struct {
    Key     string
    Title   string
    Status  string
    Summary string
}

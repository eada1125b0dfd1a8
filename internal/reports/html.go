/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package reports

import (
    "bytes"
    "fmt"
    "html/template"
    "time"

    "github.com/redhat-ai-tools/jira-dashboard/internal/metrics"
)

// ProjectSection is one project's slice of the weekly report.
type ProjectSection struct {
    Project     string
    Bugs        metrics.Summary
    Stories     metrics.Summary
    Deltas      map[string]int // change vs the previous archived run, nil on the first run
    SummaryHTML template.HTML  // LLM prose, already converted to HTML
    Err         string         // non-empty when the project's pipeline failed
}

// WeeklyData feeds the weekly accomplishments template.
type WeeklyData struct {
    Title     string
    Timeframe string
    Projects  []ProjectSection
    Epics     []EpicCard
}

type EpicCard struct {
    Key     string
    Summary template.HTML
}

// DashboardData feeds the executive dashboard template.
type DashboardData struct {
    Project           string
    Timeframe         string
    Cards             []MetricCard
    PriorityBreakdown map[string]int
    FixedBugs         []metrics.FixedBug
    RecentActivity    []metrics.ItemDigest
    SummaryHTML       template.HTML
}

type MetricCard struct {
    Label string
    Value int
    Class string
}

// GenerateWeeklyHTML renders the multi-project weekly accomplishments report.
func GenerateWeeklyHTML(data WeeklyData) (string, error) {
    tmpl, err := template.New("weekly").Parse(weeklyTemplate)
    if err != nil { return "", fmt.Errorf("reports: parse weekly template: %w", err) }
    td := struct {
        WeeklyData
        Timestamp string
    }{data, time.Now().Format("2006-01-02 15:04:05")}
    var buf bytes.Buffer
    if err := tmpl.Execute(&buf, td); err != nil { return "", fmt.Errorf("reports: execute weekly template: %w", err) }
    return buf.String(), nil
}

// GenerateDashboardHTML renders the executive dashboard for one project.
func GenerateDashboardHTML(data DashboardData) (string, error) {
    tmpl, err := template.New("dashboard").Parse(dashboardTemplate)
    if err != nil { return "", fmt.Errorf("reports: parse dashboard template: %w", err) }
    td := struct {
        DashboardData
        Timestamp string
    }{data, time.Now().Format("2006-01-02 15:04:05")}
    var buf bytes.Buffer
    if err := tmpl.Execute(&buf, td); err != nil { return "", fmt.Errorf("reports: execute dashboard template: %w", err) }
    return buf.String(), nil
}

// BugCards builds the standard metric cards for a bug summary.
func BugCards(s metrics.Summary) []MetricCard {
    return []MetricCard{
        {Label: "Blocker Bugs", Value: s.Metrics["total_blocker_bugs"], Class: "fail"},
        {Label: "Blockers Resolved", Value: s.Metrics["total_blocker_bugs_resolved"], Class: "pass"},
        {Label: "Critical Bugs", Value: s.Metrics["total_critical_bugs"], Class: "warn"},
        {Label: "Criticals Resolved", Value: s.Metrics["total_critical_bugs_resolved"], Class: "pass"},
        {Label: "Resolved Recently", Value: s.Metrics["blocker_bugs_resolved_recently"] + s.Metrics["critical_bugs_resolved_recently"], Class: "info"},
    }
}

const weeklyTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --pass-color: #4caf50;
            --fail-color: #f44336;
            --warn-color: #ff9800;
            --info-color: #2196f3;
            --dark-bg: #2d3748;
            --light-bg: #f8f9fa;
            --text-color: #333;
            --border-color: #ddd;
        }
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: var(--text-color); margin: 0; background-color: var(--light-bg); }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        header { background-color: var(--dark-bg); color: var(--light-bg); padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        h1, h2, h3 { margin-top: 0; }
        .project { background: white; margin: 20px 0; padding: 20px; border-radius: 5px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
        .error { color: var(--fail-color); font-weight: bold; }
        table { width: 100%; border-collapse: collapse; margin: 10px 0; }
        th, td { border: 1px solid var(--border-color); padding: 8px; text-align: left; }
        th { background-color: var(--dark-bg); color: white; }
        .epic { background: white; margin: 10px 0; padding: 15px; border-left: 4px solid var(--info-color); }
        footer { text-align: center; color: #888; padding: 10px; }
    </style>
</head>
<body>
<div class="container">
    <header>
        <h1>{{.Title}}</h1>
        <p>Timeframe: {{.Timeframe}}</p>
    </header>
    {{range .Projects}}
    <div class="project">
        <h2>{{.Project}}</h2>
        {{if .Err}}<p class="error">Report unavailable: {{.Err}}</p>{{else}}
        <h3>Bugs</h3>
        <table>
            <tr><th>Metric</th><th>Count</th></tr>
            <tr><td>Blocker bugs</td><td>{{index .Bugs.Metrics "total_blocker_bugs"}}</td></tr>
            <tr><td>Blocker bugs resolved</td><td>{{index .Bugs.Metrics "total_blocker_bugs_resolved"}}</td></tr>
            <tr><td>Critical bugs</td><td>{{index .Bugs.Metrics "total_critical_bugs"}}</td></tr>
            <tr><td>Critical bugs resolved</td><td>{{index .Bugs.Metrics "total_critical_bugs_resolved"}}</td></tr>
        </table>
        <h3>Stories &amp; Tasks</h3>
        <table>
            <tr><th>Metric</th><th>Count</th></tr>
            <tr><td>Total items</td><td>{{index .Stories.Metrics "total_items"}}</td></tr>
            <tr><td>Resolved items</td><td>{{index .Stories.Metrics "total_resolved_items"}}</td></tr>
            <tr><td>Created recently</td><td>{{index .Stories.Metrics "items_created_recently"}}</td></tr>
            <tr><td>Resolved recently</td><td>{{index .Stories.Metrics "items_resolved_recently"}}</td></tr>
        </table>
        {{if .Deltas}}
        <h3>Change vs previous report</h3>
        <table>
            <tr><th>Metric</th><th>Delta</th></tr>
            {{range $k, $v := .Deltas}}<tr><td>{{$k}}</td><td>{{printf "%+d" $v}}</td></tr>{{end}}
        </table>
        {{end}}
        {{if .SummaryHTML}}<h3>Summary</h3><div>{{.SummaryHTML}}</div>{{end}}
        {{end}}
    </div>
    {{end}}
    {{if .Epics}}
    <h2>Epic Progress</h2>
    {{range .Epics}}
    <div class="epic">
        <h3>{{.Key}}</h3>
        <div>{{.Summary}}</div>
    </div>
    {{end}}
    {{end}}
    <footer>Generated {{.Timestamp}}</footer>
</div>
</body>
</html>
`

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Project}} Executive Dashboard</title>
    <style>
        :root {
            --pass-color: #4caf50;
            --fail-color: #f44336;
            --warn-color: #ff9800;
            --info-color: #2196f3;
            --dark-bg: #2d3748;
            --light-bg: #f8f9fa;
            --text-color: #333;
            --border-color: #ddd;
        }
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: var(--text-color); margin: 0; background-color: var(--light-bg); }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        header { background-color: var(--dark-bg); color: var(--light-bg); padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .summary { display: flex; justify-content: space-between; margin: 20px 0; flex-wrap: wrap; }
        .summary-card { flex: 1; min-width: 160px; margin: 10px; padding: 20px; border-radius: 5px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); text-align: center; color: white; }
        .summary-card h2 { font-size: 2.2em; margin: 0; }
        .pass { background-color: var(--pass-color); }
        .fail { background-color: var(--fail-color); }
        .warn { background-color: var(--warn-color); }
        .info { background-color: var(--info-color); }
        table { width: 100%; border-collapse: collapse; margin: 10px 0; background: white; }
        th, td { border: 1px solid var(--border-color); padding: 8px; text-align: left; }
        th { background-color: var(--dark-bg); color: white; }
        .section { background: white; margin: 20px 0; padding: 20px; border-radius: 5px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
        footer { text-align: center; color: #888; padding: 10px; }
    </style>
</head>
<body>
<div class="container">
    <header>
        <h1>{{.Project}} Executive Dashboard</h1>
        <p>Timeframe: {{.Timeframe}}</p>
    </header>
    <div class="summary">
        {{range .Cards}}
        <div class="summary-card {{.Class}}"><h2>{{.Value}}</h2><p>{{.Label}}</p></div>
        {{end}}
    </div>
    {{if .PriorityBreakdown}}
    <div class="section">
        <h2>Priority Breakdown</h2>
        <table>
            <tr><th>Priority</th><th>Count</th></tr>
            {{range $p, $c := .PriorityBreakdown}}<tr><td>{{$p}}</td><td>{{$c}}</td></tr>{{end}}
        </table>
    </div>
    {{end}}
    {{if .FixedBugs}}
    <div class="section">
        <h2>Recently Fixed Bugs</h2>
        <table>
            <tr><th>Key</th><th>Summary</th><th>Status</th><th>Resolved</th></tr>
            {{range .FixedBugs}}<tr><td>{{.Key}}</td><td>{{.Summary}}</td><td>{{.Status}}</td><td>{{.ResolutionDate}}</td></tr>{{end}}
        </table>
    </div>
    {{end}}
    {{if .RecentActivity}}
    <div class="section">
        <h2>Recent Activity</h2>
        <table>
            <tr><th>Key</th><th>Summary</th><th>Priority</th><th>Status</th><th>Updated</th></tr>
            {{range .RecentActivity}}<tr><td>{{.Key}}</td><td>{{.Summary}}</td><td>{{.Priority}}</td><td>{{.Status}}</td><td>{{.Updated}}</td></tr>{{end}}
        </table>
    </div>
    {{end}}
    {{if .SummaryHTML}}
    <div class="section">
        <h2>Summary</h2>
        <div>{{.SummaryHTML}}</div>
    </div>
    {{end}}
    <footer>Generated {{.Timestamp}}</footer>
</div>
</body>
</html>
`

package services

import (
    "context"
    "encoding/json"
    "os"
    "strings"
    "testing"

    "github.com/redhat-ai-tools/jira-dashboard/internal/adapters/mcp"
    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    "github.com/rs/zerolog"
)

type fakeFetcher struct {
    byType map[string]string
    err    error
}

func (f *fakeFetcher) ListJiraIssues(ctx context.Context, p mcp.ListIssuesParams) (string, error) {
    if f.err != nil { return "", f.err }
    if out, ok := f.byType[p.IssueType]; ok { return out, nil }
    return `{"issues": []}`, nil
}

func testConfig(t *testing.T) config.Config {
    t.Helper()
    dir := t.TempDir()
    return config.Config{
        Projects:       []string{"KONFLUX"},
        MainProject:    "KONFLUX",
        AnalysisDays:   14,
        IssueLimit:     50,
        ReportDir:      dir,
        EpicSummaryDir: dir,
        JiraBaseURL:    "https://issues.redhat.com",
        MaxConcurrency: 2,
    }
}

func TestIssuesFromPayload(t *testing.T) {
    obj := map[string]any{"issues": []any{map[string]any{"key": "KONFLUX-1"}, "garbage"}}
    got := issuesFromPayload(obj)
    if len(got) != 1 || got[0]["key"] != "KONFLUX-1" {
        t.Fatalf("unexpected issues from object payload: %#v", got)
    }

    list := []any{map[string]any{"key": "KONFLUX-2"}}
    got = issuesFromPayload(list)
    if len(got) != 1 || got[0]["key"] != "KONFLUX-2" {
        t.Fatalf("unexpected issues from list payload: %#v", got)
    }

    if got := issuesFromPayload("not json-shaped"); len(got) != 0 {
        t.Fatalf("expected no issues, got %#v", got)
    }
}

func TestScrubSecrets(t *testing.T) {
    in := "contact dev@example.com, token: abcdEFGH1234, filed by JIRAUSER12345"
    out := scrubSecrets(in)
    if strings.Contains(out, "dev@example.com") { t.Fatalf("email not scrubbed: %s", out) }
    if strings.Contains(out, "abcdEFGH1234") { t.Fatalf("token not scrubbed: %s", out) }
    if strings.Contains(out, "JIRAUSER12345") { t.Fatalf("user id not scrubbed: %s", out) }
    if !strings.Contains(out, "<email>") || !strings.Contains(out, "<secret>") || !strings.Contains(out, "<user>") {
        t.Fatalf("placeholders missing: %s", out)
    }
}

func TestRunBugAnalysis_NoisyToolOutput(t *testing.T) {
    payload := `Here is the data you asked for:
{"issues": [
  {"key": "KONFLUX-1", "summary": "crash", "priority": "1", "issue_type": "1", "resolution_date": "1700000000"},
  {"key": "KONFLUX-2", "summary": "slow", "priority": "2", "issue_type": "1", "resolution_date": ""},
  {"key": "KONFLUX-3", "summary": "test", "priority": "1", "issue_type": "1"}
]} Let me know if you need anything else.`
    f := &fakeFetcher{byType: map[string]string{"1": payload}}
    svc := New(testConfig(t), zerolog.Nop(), nil, f, nil, nil)

    sum, err := svc.RunBugAnalysis(context.Background(), "KONFLUX")
    if err != nil { t.Fatalf("RunBugAnalysis: %v", err) }
    if sum.Metrics["total_blocker_bugs"] != 1 { t.Fatalf("blockers = %d, want 1", sum.Metrics["total_blocker_bugs"]) }
    if sum.Metrics["total_blocker_bugs_resolved"] != 1 { t.Fatalf("blockers resolved = %d, want 1", sum.Metrics["total_blocker_bugs_resolved"]) }
    if sum.Metrics["total_critical_bugs"] != 1 { t.Fatalf("criticals = %d, want 1", sum.Metrics["total_critical_bugs"]) }
    if sum.Metrics["total_critical_bugs_resolved"] != 0 { t.Fatalf("criticals resolved = %d, want 0", sum.Metrics["total_critical_bugs_resolved"]) }
    // The "test" placeholder issue is filtered before aggregation.
    if len(sum.RecentActivity) != 2 { t.Fatalf("activity = %d, want 2", len(sum.RecentActivity)) }
}

func TestRunBugAnalysis_GarbledOutput(t *testing.T) {
    f := &fakeFetcher{byType: map[string]string{"1": "the agent produced no structured data"}}
    svc := New(testConfig(t), zerolog.Nop(), nil, f, nil, nil)
    if _, err := svc.RunBugAnalysis(context.Background(), "KONFLUX"); err == nil {
        t.Fatal("expected error for garbled tool output")
    }
}

func TestRunExecutiveDashboard_WritesReport(t *testing.T) {
    issues := []map[string]any{
        {"key": "KONFLUX-1", "summary": "crash", "priority": "1", "issue_type": "1", "resolution_date": "2025-08-25 10:00:00"},
        {"key": "KONFLUX-2", "summary": "slow", "priority": "2", "issue_type": "1"},
    }
    b, _ := json.Marshal(map[string]any{"issues": issues})
    f := &fakeFetcher{byType: map[string]string{"1": string(b)}}
    cfg := testConfig(t)
    svc := New(cfg, zerolog.Nop(), nil, f, nil, nil)

    path, err := svc.RunExecutiveDashboard(context.Background(), "")
    if err != nil { t.Fatalf("RunExecutiveDashboard: %v", err) }
    data, err := os.ReadFile(path)
    if err != nil { t.Fatalf("read report: %v", err) }
    html := string(data)
    if !strings.Contains(html, "KONFLUX Executive Dashboard") { t.Fatalf("missing title in %s", path) }
    if !strings.Contains(html, "KONFLUX-1") { t.Fatalf("missing issue row in %s", path) }
}

func TestRunWeeklyReport_FailedProjectDegrades(t *testing.T) {
    f := &fakeFetcher{byType: map[string]string{"1": "no data"}}
    cfg := testConfig(t)
    cfg.Projects = []string{"KONFLUX"}
    svc := New(cfg, zerolog.Nop(), nil, f, nil, nil)

    path, err := svc.RunWeeklyReport(context.Background())
    if err != nil { t.Fatalf("RunWeeklyReport: %v", err) }
    data, _ := os.ReadFile(path)
    if !strings.Contains(string(data), "Report unavailable") {
        t.Fatalf("expected degraded section in report")
    }
}

func TestRunWeeklyReport_FullPipeline(t *testing.T) {
    bugs, _ := json.Marshal(map[string]any{"issues": []any{
        map[string]any{"key": "KONFLUX-1", "summary": "crash", "priority": "1", "issue_type": "1", "resolution_date": "1700000000"},
    }})
    stories, _ := json.Marshal(map[string]any{"issues": []any{
        map[string]any{"key": "KONFLUX-10", "summary": "new feature", "priority": "3", "issue_type": "17"},
    }})
    epics, _ := json.Marshal(map[string]any{"issues": []any{
        map[string]any{"key": "KONFLUX-100", "summary": "big epic", "issue_type": "16", "status": "10018", "updated": "1700000000"},
    }})
    f := &fakeFetcher{byType: map[string]string{
        "1":  string(bugs),
        "17": string(stories),
        "3":  `{"issues": []}`,
        "16": string(epics),
    }}
    svc := New(testConfig(t), zerolog.Nop(), nil, f, nil, nil)

    path, err := svc.RunWeeklyReport(context.Background())
    if err != nil { t.Fatalf("RunWeeklyReport: %v", err) }
    data, err := os.ReadFile(path)
    if err != nil { t.Fatalf("read report: %v", err) }
    html := string(data)
    if !strings.Contains(html, "KONFLUX Weekly Report") { t.Fatal("missing title") }
    if !strings.Contains(html, "KONFLUX-100") { t.Fatal("missing epic section") }
}

func TestMetricsDelta(t *testing.T) {
    if got := metricsDelta(nil, map[string]int{"total_blocker_bugs": 2}); got != nil {
        t.Fatalf("expected nil delta without a previous run, got %#v", got)
    }
    prev := map[string]int{"total_blocker_bugs": 3, "total_items": 10}
    cur := map[string]int{"total_blocker_bugs": 1, "total_items": 12, "total_critical_bugs": 2}
    got := metricsDelta(prev, cur)
    if got["total_blocker_bugs"] != -2 { t.Fatalf("blocker delta = %d, want -2", got["total_blocker_bugs"]) }
    if got["total_items"] != 2 { t.Fatalf("items delta = %d, want 2", got["total_items"]) }
    // A metric with no previous value reads as all-new.
    if got["total_critical_bugs"] != 2 { t.Fatalf("critical delta = %d, want 2", got["total_critical_bugs"]) }
}

func TestTimeframeLabel(t *testing.T) {
    if got := timeframeLabel(14); got != "last 14 days" { t.Fatalf("got %q", got) }
    if got := timeframeLabel(0); got != "last 14 days" { t.Fatalf("got %q", got) }
}

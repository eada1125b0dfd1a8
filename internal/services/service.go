/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package services

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "html/template"
    "os"
    "path/filepath"
    "regexp"
    "strings"
    "sync"
    "time"

    "github.com/redhat-ai-tools/jira-dashboard/internal/adapters/mcp"
    "github.com/redhat-ai-tools/jira-dashboard/internal/agents"
    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    "github.com/redhat-ai-tools/jira-dashboard/internal/domain"
    "github.com/redhat-ai-tools/jira-dashboard/internal/jiratime"
    "github.com/redhat-ai-tools/jira-dashboard/internal/metrics"
    "github.com/redhat-ai-tools/jira-dashboard/internal/repo"
    "github.com/redhat-ai-tools/jira-dashboard/internal/reports"
    "github.com/redhat-ai-tools/jira-dashboard/internal/result"
    "github.com/rs/zerolog"
)

// Jira issue type codes as exported by the source system.
const (
    typeBug   = "1"
    typeEpic  = "16"
    typeStory = "17"
    typeTask  = "3"
)

type Fetcher interface {
    ListJiraIssues(ctx context.Context, p mcp.ListIssuesParams) (string, error)
}

type LLM interface {
    Enabled() bool
    RunTask(ctx context.Context, agent agents.Agent, task agents.Task, data string) (string, error)
    Summarize(ctx context.Context, prompt string) (string, error)
}

type Service struct {
    cfg  config.Config
    log  zerolog.Logger
    repo *repo.Repository
    mcp  Fetcher
    llm  LLM
    reg  *agents.Registry
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, fetcher Fetcher, llm LLM, reg *agents.Registry) *Service {
    return &Service{cfg: cfg, log: log, repo: r, mcp: fetcher, llm: llm, reg: reg}
}

// fetchItems pulls one issue-type slice of a project from the MCP server and
// normalizes it into flat records. The raw tool output is LLM-shaped text, so
// it goes through the result normalizer before anything trusts it.
func (s *Service) fetchItems(ctx context.Context, project, issueType, priority string) ([]map[string]any, error) {
    raw, err := s.mcp.ListJiraIssues(ctx, mcp.ListIssuesParams{
        Project:       project,
        IssueType:     issueType,
        Priority:      priority,
        Limit:         s.cfg.IssueLimit,
        TimeframeDays: s.cfg.AnalysisDays,
    })
    if err != nil { return nil, err }
    payload := result.ExtractJSON(raw)
    if payload == nil { return nil, fmt.Errorf("services: no JSON in tool output for %s type=%s", project, issueType) }
    items := issuesFromPayload(payload)
    items = metrics.FilterTestIssues(items)
    s.snapshotItems(ctx, project, items)
    return items, nil
}

// snapshotItems archives the fetched records. Persistence failures are
// logged, never fatal: reports still render without the archive.
func (s *Service) snapshotItems(ctx context.Context, project string, items []map[string]any) {
    if s.repo == nil || len(items) == 0 { return }
    issues := make([]domain.Issue, 0, len(items))
    for _, it := range items {
        key := str(it["key"])
        if key == "" { continue }
        issues = append(issues, domain.Issue{
            Key:            key,
            Summary:        str(it["summary"]),
            Project:        project,
            IssueType:      str(it["issue_type"]),
            Priority:       str(it["priority"]),
            Status:         str(it["status"]),
            Resolution:     str(it["resolution"]),
            Component:      str(it["component"]),
            Created:        str(it["created"]),
            Updated:        str(it["updated"]),
            ResolutionDate: str(it["resolution_date"]),
        })
    }
    if err := s.repo.BulkUpsertIssueSnapshots(ctx, issues); err != nil {
        s.log.Error().Err(err).Str("project", project).Msg("snapshot upsert failed")
    }
}

// RunBugAnalysis computes the blocker/critical bug summary for one project.
func (s *Service) RunBugAnalysis(ctx context.Context, project string) (metrics.Summary, error) {
    items, err := s.fetchItems(ctx, project, typeBug, "")
    if err != nil { return metrics.Summary{}, err }
    sum := metrics.CalculateItemMetrics(items, s.cfg.AnalysisDays, "bug")
    s.log.Info().Str("project", project).Int("issues", len(items)).
        Int("blockers", sum.Metrics["total_blocker_bugs"]).
        Int("criticals", sum.Metrics["total_critical_bugs"]).Msg("bug analysis done")
    return sum, nil
}

// RunItemAnalysis computes the generic summary for stories plus tasks.
func (s *Service) RunItemAnalysis(ctx context.Context, project string) (metrics.Summary, error) {
    stories, err := s.fetchItems(ctx, project, typeStory, "")
    if err != nil { return metrics.Summary{}, err }
    tasks, err := s.fetchItems(ctx, project, typeTask, "")
    if err != nil {
        // Stories alone still make a report.
        s.log.Error().Err(err).Str("project", project).Msg("task fetch failed")
    }
    sum := metrics.CalculateItemMetrics(append(stories, tasks...), s.cfg.AnalysisDays, "story")
    s.log.Info().Str("project", project).Int("items", sum.Metrics["total_items"]).Msg("item analysis done")
    return sum, nil
}

// RunEpicSummaries fetches recently updated epics for the main project, asks
// the LLM for per-epic narratives, and writes the epic summary document the
// weekly report embeds. Without an LLM key it falls back to status one-liners.
func (s *Service) RunEpicSummaries(ctx context.Context) (string, error) {
    project := s.cfg.MainProject
    items, err := s.fetchItems(ctx, project, typeEpic, "")
    if err != nil { return "", err }
    var summaries []domain.EpicSummary
    if s.llm != nil && s.llm.Enabled() && s.reg != nil {
        summaries = s.summarizeEpicsLLM(ctx, project, items)
    }
    if len(summaries) == 0 {
        for _, it := range items {
            key := str(it["key"])
            if key == "" { continue }
            summaries = append(summaries, domain.EpicSummary{
                Key:     key,
                Title:   str(it["summary"]),
                Summary: fmt.Sprintf("Status %s, last updated %s.", metrics.MapStatus(it["status"]), jiratime.Format(it["updated"])),
            })
        }
    }
    path := filepath.Join(s.cfg.EpicSummaryDir, "recently_updated_epics_summary.txt")
    if err := writeFile(path, reports.RenderEpicSummaries(summaries)); err != nil { return "", err }
    s.log.Info().Int("epics", len(summaries)).Str("path", path).Msg("epic summaries written")
    return path, nil
}

func (s *Service) summarizeEpicsLLM(ctx context.Context, project string, items []map[string]any) []domain.EpicSummary {
    agent, err := s.reg.Agent("report_writer")
    if err != nil { s.log.Error().Err(err).Msg("epic agent missing"); return nil }
    vars := agents.DefaultVars(project, timeframeLabel(s.cfg.AnalysisDays), s.cfg.Components)
    task, err := s.reg.Task("epic_summaries", vars)
    if err != nil { s.log.Error().Err(err).Msg("epic task missing"); return nil }
    data, _ := json.Marshal(items)
    raw, err := s.llm.RunTask(ctx, agent, task, scrubSecrets(string(data)))
    if err != nil { s.log.Error().Err(err).Msg("epic summary call failed"); return nil }
    payload := result.ExtractJSON(raw)
    arr, _ := payload.([]any)
    var out []domain.EpicSummary
    for _, e0 := range arr {
        if em, _ := e0.(map[string]any); em != nil {
            key := str(em["epic_key"])
            if key == "" { key = str(em["key"]) }
            sum := jiratime.ReplaceEpochTokens(str(em["summary"]))
            if key != "" && sum != "" { out = append(out, domain.EpicSummary{Key: key, Summary: sum}) }
        }
    }
    return out
}

// RunWeeklyReport builds the multi-project accomplishments report. A failed
// project becomes an error section; the report itself always renders.
func (s *Service) RunWeeklyReport(ctx context.Context) (string, error) {
    runID := s.startRun(ctx, "weekly", "")
    sections := make([]reports.ProjectSection, len(s.cfg.Projects))
    workers := s.cfg.MaxConcurrency
    if workers <= 0 { workers = 4 }
    sem := make(chan struct{}, workers)
    var wg sync.WaitGroup
    for i, project := range s.cfg.Projects {
        wg.Add(1)
        go func(i int, project string) {
            defer wg.Done()
            sem <- struct{}{}
            defer func(){ <-sem }()
            sections[i] = s.projectSection(ctx, project)
        }(i, project)
    }
    wg.Wait()
    s.attachDeltas(ctx, sections)

    totalIssues := 0
    for _, sec := range sections {
        totalIssues += sec.Bugs.Metrics["total_blocker_bugs"] + sec.Bugs.Metrics["total_critical_bugs"] + sec.Stories.Metrics["total_items"]
    }

    var epics []reports.EpicCard
    if path, err := s.RunEpicSummaries(ctx); err != nil {
        s.log.Error().Err(err).Msg("epic summaries failed")
    } else {
        for _, e := range reports.ParseEpicSummaries(path) {
            htmlSum := reports.ConvertMarkdownToHTML(e.Summary)
            htmlSum = reports.AddJiraLinks(htmlSum, s.cfg.MainProject, s.cfg.JiraBaseURL)
            epics = append(epics, reports.EpicCard{Key: e.Key, Summary: asHTML(htmlSum)})
        }
    }

    html, err := reports.GenerateWeeklyHTML(reports.WeeklyData{
        Title:     fmt.Sprintf("%s Weekly Report", s.cfg.MainProject),
        Timeframe: timeframeLabel(s.cfg.AnalysisDays),
        Projects:  sections,
        Epics:     epics,
    })
    if err != nil { s.finishRun(ctx, runID, totalIssues, "", err); return "", err }
    path := filepath.Join(s.cfg.ReportDir, fmt.Sprintf("weekly_report_%s.html", time.Now().Format("2006-01-02")))
    if err := writeFile(path, html); err != nil { s.finishRun(ctx, runID, totalIssues, "", err); return "", err }

    s.archiveMetrics(ctx, "weekly", sections)
    s.finishRun(ctx, runID, totalIssues, path, nil)
    s.log.Info().Str("path", path).Int("projects", len(sections)).Msg("weekly report written")
    return path, nil
}

func (s *Service) projectSection(ctx context.Context, project string) reports.ProjectSection {
    sec := reports.ProjectSection{Project: project}
    bugs, err := s.RunBugAnalysis(ctx, project)
    if err != nil { sec.Err = err.Error(); return sec }
    sec.Bugs = bugs
    stories, err := s.RunItemAnalysis(ctx, project)
    if err != nil { sec.Err = err.Error(); return sec }
    sec.Stories = stories
    if s.llm != nil && s.llm.Enabled() {
        if prose := s.summarizeProject(ctx, project, bugs, stories); prose != "" {
            htmlSum := reports.ConvertMarkdownToHTML(jiratime.ReplaceEpochTokens(prose))
            sec.SummaryHTML = asHTML(reports.AddJiraLinks(htmlSum, project, s.cfg.JiraBaseURL))
        }
    }
    return sec
}

func (s *Service) summarizeProject(ctx context.Context, project string, bugs, stories metrics.Summary) string {
    payload, _ := json.Marshal(map[string]any{"project": project, "bugs": bugs, "stories": stories})
    prose, err := s.llm.Summarize(ctx, scrubSecrets(string(payload)))
    if err != nil {
        s.log.Error().Err(err).Str("project", project).Msg("llm summarize failed")
        return ""
    }
    return prose
}

// RunExecutiveDashboard builds the per-tier dashboard for one project.
func (s *Service) RunExecutiveDashboard(ctx context.Context, project string) (string, error) {
    if project == "" { project = s.cfg.MainProject }
    runID := s.startRun(ctx, "dashboard", project)
    items, err := s.fetchItems(ctx, project, typeBug, "")
    if err != nil { s.finishRun(ctx, runID, 0, "", err); return "", err }

    blockers := metrics.NewPriorityCalculator([]string{metrics.PriorityBlocker}, "Blocker")
    criticals := metrics.NewPriorityCalculator([]string{metrics.PriorityCritical}, "Critical")
    _, blockerFixed := blockers.Calculate(items, s.cfg.AnalysisDays)
    _, criticalFixed := criticals.Calculate(items, s.cfg.AnalysisDays)
    sum := metrics.CalculateItemMetrics(items, s.cfg.AnalysisDays, "bug")

    data := reports.DashboardData{
        Project:        project,
        Timeframe:      timeframeLabel(s.cfg.AnalysisDays),
        Cards:          reports.BugCards(sum),
        FixedBugs:      append(blockerFixed, criticalFixed...),
        RecentActivity: sum.RecentActivity,
    }
    if s.llm != nil && s.llm.Enabled() {
        if prose := s.summarizeProject(ctx, project, sum, metrics.Summary{}); prose != "" {
            htmlSum := reports.ConvertMarkdownToHTML(jiratime.ReplaceEpochTokens(prose))
            data.SummaryHTML = asHTML(reports.AddJiraLinks(htmlSum, project, s.cfg.JiraBaseURL))
        }
    }
    html, err := reports.GenerateDashboardHTML(data)
    if err != nil { s.finishRun(ctx, runID, len(items), "", err); return "", err }
    path := filepath.Join(s.cfg.ReportDir, fmt.Sprintf("%s_dashboard_%s.html", strings.ToLower(project), time.Now().Format("2006-01-02")))
    if err := writeFile(path, html); err != nil { s.finishRun(ctx, runID, len(items), "", err); return "", err }
    if s.repo != nil {
        _ = s.repo.SaveMetrics(ctx, "dashboard", project, time.Now(), sum.Metrics)
    }
    s.finishRun(ctx, runID, len(items), path, nil)
    s.log.Info().Str("path", path).Str("project", project).Msg("dashboard written")
    return path, nil
}

func (s *Service) GetLastRun(ctx context.Context) (any, error) {
    if s.repo == nil { return nil, errors.New("services: no database configured") }
    return s.repo.GetLastRun(ctx)
}

func (s *Service) ListRecentRuns(ctx context.Context, n int) (any, error) {
    if s.repo == nil { return nil, errors.New("services: no database configured") }
    return s.repo.ListRecentRuns(ctx, n)
}

// attachDeltas compares each healthy section against the last archived counts
// so the weekly report can show week-over-week movement. No archive, no delta
// row; the report renders either way.
func (s *Service) attachDeltas(ctx context.Context, sections []reports.ProjectSection) {
    if s.repo == nil { return }
    now := time.Now()
    for i := range sections {
        if sections[i].Err != "" { continue }
        prev, err := s.repo.GetLatestMetrics(ctx, "weekly", sections[i].Project, now)
        if err != nil {
            s.log.Error().Err(err).Str("project", sections[i].Project).Msg("previous metrics lookup failed")
            continue
        }
        sections[i].Deltas = metricsDelta(prev, combinedMetrics(sections[i]))
    }
}

// ---- run bookkeeping ----
func (s *Service) startRun(ctx context.Context, report, project string) int64 {
    if s.repo == nil { return 0 }
    id, err := s.repo.StartReportRun(ctx, report, project)
    if err != nil { s.log.Error().Err(err).Str("report", report).Msg("start run failed") }
    return id
}

func (s *Service) finishRun(ctx context.Context, id int64, issues int, path string, runErr error) {
    if s.repo == nil || id == 0 { return }
    errStr := ""
    if runErr != nil { errStr = runErr.Error() }
    if err := s.repo.FinishReportRun(ctx, id, issues, path, runErr == nil, errStr); err != nil {
        s.log.Error().Err(err).Int64("run", id).Msg("finish run failed")
    }
}

func (s *Service) archiveMetrics(ctx context.Context, report string, sections []reports.ProjectSection) {
    if s.repo == nil { return }
    now := time.Now()
    for _, sec := range sections {
        if sec.Err != "" { continue }
        if err := s.repo.SaveMetrics(ctx, report, sec.Project, now, combinedMetrics(sec)); err != nil {
            s.log.Error().Err(err).Str("project", sec.Project).Msg("metric archive failed")
        }
    }
}

// ---- helpers ----

func combinedMetrics(sec reports.ProjectSection) map[string]int {
    combined := map[string]int{}
    for k, v := range sec.Bugs.Metrics { combined[k] = v }
    for k, v := range sec.Stories.Metrics { combined[k] = v }
    return combined
}

// metricsDelta is current minus previous per metric. Nil when there is no
// previous run to compare against.
func metricsDelta(prev, cur map[string]int) map[string]int {
    if len(prev) == 0 { return nil }
    out := make(map[string]int, len(cur))
    for k, v := range cur { out[k] = v - prev[k] }
    return out
}

// issuesFromPayload accepts the two shapes the tool output takes: an object
// with an "issues" list, or a bare list of records.
func issuesFromPayload(payload any) []map[string]any {
    var arr []any
    switch v := payload.(type) {
    case map[string]any:
        arr, _ = v["issues"].([]any)
    case []any:
        arr = v
    }
    out := make([]map[string]any, 0, len(arr))
    for _, it := range arr {
        if im, _ := it.(map[string]any); im != nil { out = append(out, im) }
    }
    return out
}

var (
    emailRe  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+`)
    secretRe = regexp.MustCompile(`(?i)\b(?:token|secret|password|apikey|api_key|bearer)[:=\s]+[A-Za-z0-9\-\._~+/]{8,}\b`)
    userRe   = regexp.MustCompile(`\bJIRAUSER\d+\b`)
)

// scrubSecrets masks emails, credential-looking strings, and raw tracker user
// IDs before any payload leaves for the model endpoint.
func scrubSecrets(text string) string {
    text = emailRe.ReplaceAllString(text, "<email>")
    text = secretRe.ReplaceAllString(text, "<secret>")
    text = userRe.ReplaceAllString(text, "<user>")
    return text
}

func timeframeLabel(days int) string {
    if days <= 0 { days = 14 }
    return fmt.Sprintf("last %d days", days)
}

func asHTML(s string) template.HTML { return template.HTML(s) }

func str(v any) string {
    if v == nil { return "" }
    if s, ok := v.(string); ok { return s }
    return fmt.Sprintf("%v", v)
}

func writeFile(path, content string) error {
    if dir := filepath.Dir(path); dir != "." {
        if err := os.MkdirAll(dir, 0o755); err != nil { return err }
    }
    return os.WriteFile(path, []byte(content), 0o644)
}

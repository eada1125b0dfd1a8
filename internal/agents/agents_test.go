package agents

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const agentsYAML = `
data_collector:
  role: Jira Data Collector
  goal: Fetch raw issue data for {project}
  backstory: You pull structured issue exports from the tracker.
  requires_tools: [list_jira_issues]
report_writer:
  role: Report Writer
  goal: Summarize findings
  backstory: You turn metrics into prose.
  verbose: true
`

const tasksYAML = `
fetch_bugs:
  description: "Fetch bugs for {project} over the last {timeframe}. Components: {components}"
  expected_output: JSON with an issues list
  agent: data_collector
write_summary:
  description: Write the weekly summary for {project}
  expected_output: Markdown summary
  agent: report_writer
  output_file: "{project_lower}_summary.md"
`

func writeConfigs(t *testing.T, agents, tasks string) (string, string) {
    t.Helper()
    dir := t.TempDir()
    ap := filepath.Join(dir, "agents.yaml")
    tp := filepath.Join(dir, "tasks.yaml")
    require.NoError(t, os.WriteFile(ap, []byte(agents), 0o644))
    require.NoError(t, os.WriteFile(tp, []byte(tasks), 0o644))
    return ap, tp
}

func TestLoad(t *testing.T) {
    ap, tp := writeConfigs(t, agentsYAML, tasksYAML)
    r, err := Load(ap, tp)
    require.NoError(t, err)
    assert.Len(t, r.Agents, 2)
    assert.Len(t, r.Tasks, 2)

    a, err := r.Agent("data_collector")
    require.NoError(t, err)
    assert.Equal(t, "Jira Data Collector", a.Role)
    assert.Equal(t, []string{"list_jira_issues"}, a.RequiresTools)
}

func TestLoad_UndefinedAgentRef(t *testing.T) {
    bad := `
orphan:
  description: does something
  expected_output: nothing
  agent: nobody
`
    ap, tp := writeConfigs(t, agentsYAML, bad)
    _, err := Load(ap, tp)
    require.Error(t, err)
    assert.Contains(t, err.Error(), "nobody")
}

func TestTask_Substitution(t *testing.T) {
    ap, tp := writeConfigs(t, agentsYAML, tasksYAML)
    r, err := Load(ap, tp)
    require.NoError(t, err)

    vars := DefaultVars("KONFLUX", "14 days", []string{"build", "release"})
    task, err := r.Task("fetch_bugs", vars)
    require.NoError(t, err)
    assert.Equal(t, "Fetch bugs for KONFLUX over the last 14 days. Components: build, release", task.Description)

    task, err = r.Task("write_summary", vars)
    require.NoError(t, err)
    assert.Equal(t, "konflux_summary.md", task.OutputFile)
}

func TestSubstitute_UnknownPlaceholderStays(t *testing.T) {
    got := Substitute("report for {project} at {nonexistent}", map[string]string{"project": "KONFLUX"})
    assert.Equal(t, "report for KONFLUX at {nonexistent}", got)
}

func TestTask_UnknownName(t *testing.T) {
    ap, tp := writeConfigs(t, agentsYAML, tasksYAML)
    r, err := Load(ap, tp)
    require.NoError(t, err)
    _, err = r.Task("missing", nil)
    assert.Error(t, err)
}

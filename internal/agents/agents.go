/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */

// Package agents loads the YAML agent and task definitions that drive the
// LLM-backed report pipelines. An agent is a persona (role/goal/backstory);
// a task is a prompt template bound to an agent, with {placeholder} slots
// substituted per run.
package agents

import (
    "fmt"
    "os"
    "strings"

    "gopkg.in/yaml.v3"
)

type Agent struct {
    Role          string   `yaml:"role"`
    Goal          string   `yaml:"goal"`
    Backstory     string   `yaml:"backstory"`
    RequiresTools []string `yaml:"requires_tools,omitempty"`
    Verbose       bool     `yaml:"verbose,omitempty"`
}

type Task struct {
    Description    string `yaml:"description"`
    ExpectedOutput string `yaml:"expected_output"`
    Agent          string `yaml:"agent"`
    OutputFile     string `yaml:"output_file,omitempty"`
}

// Registry holds every agent and task parsed from the config files.
type Registry struct {
    Agents map[string]Agent
    Tasks  map[string]Task
}

// Load reads both YAML files. Missing files are an error; a task referencing
// an undefined agent is an error so the wiring breaks at startup, not mid-run.
func Load(agentsPath, tasksPath string) (*Registry, error) {
    r := &Registry{}
    ab, err := os.ReadFile(agentsPath)
    if err != nil { return nil, fmt.Errorf("agents: read %s: %w", agentsPath, err) }
    if err := yaml.Unmarshal(ab, &r.Agents); err != nil { return nil, fmt.Errorf("agents: parse %s: %w", agentsPath, err) }
    tb, err := os.ReadFile(tasksPath)
    if err != nil { return nil, fmt.Errorf("agents: read %s: %w", tasksPath, err) }
    if err := yaml.Unmarshal(tb, &r.Tasks); err != nil { return nil, fmt.Errorf("agents: parse %s: %w", tasksPath, err) }
    for name, t := range r.Tasks {
        if _, ok := r.Agents[t.Agent]; !ok {
            return nil, fmt.Errorf("agents: task %q references undefined agent %q", name, t.Agent)
        }
    }
    return r, nil
}

// Agent returns the named agent.
func (r *Registry) Agent(name string) (Agent, error) {
    a, ok := r.Agents[name]
    if !ok { return Agent{}, fmt.Errorf("agents: unknown agent %q", name) }
    return a, nil
}

// Task returns the named task with {placeholder} slots filled from vars.
// Unknown placeholders stay as-is so a template typo is visible in the output
// rather than silently blanked.
func (r *Registry) Task(name string, vars map[string]string) (Task, error) {
    t, ok := r.Tasks[name]
    if !ok { return Task{}, fmt.Errorf("agents: unknown task %q", name) }
    t.Description = Substitute(t.Description, vars)
    t.ExpectedOutput = Substitute(t.ExpectedOutput, vars)
    t.OutputFile = Substitute(t.OutputFile, vars)
    return t, nil
}

// Substitute replaces {key} occurrences with their values.
func Substitute(s string, vars map[string]string) string {
    if len(vars) == 0 { return s }
    pairs := make([]string, 0, len(vars)*2)
    for k, v := range vars {
        pairs = append(pairs, "{"+k+"}", v)
    }
    return strings.NewReplacer(pairs...).Replace(s)
}

// DefaultVars builds the standard substitution set for a project run.
func DefaultVars(project, timeframe string, components []string) map[string]string {
    return map[string]string{
        "project":       project,
        "project_lower": strings.ToLower(project),
        "timeframe":     timeframe,
        "components":    strings.Join(components, ", "),
    }
}

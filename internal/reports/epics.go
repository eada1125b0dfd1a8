/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package reports

import (
    "fmt"
    "os"
    "regexp"
    "strings"

    "github.com/redhat-ai-tools/jira-dashboard/internal/domain"
)

var epicSectionRe = regexp.MustCompile(`\n\d+\. EPIC: `)

// ParseEpicSummaries extracts epic-level summaries from an epic activity
// document. Each block starts with "N. EPIC: KEY" and carries an
// "EPIC-LEVEL SUMMARY" section terminated by an 80-char "=" rule. A missing
// file yields an empty slice, not an error: the weekly report degrades to a
// note instead of failing.
func ParseEpicSummaries(filename string) []domain.EpicSummary {
    content, err := os.ReadFile(filename)
    if err != nil { return nil }

    var out []domain.EpicSummary
    sections := epicSectionRe.Split("\n"+string(content), -1)
    for _, section := range sections[1:] {
        lines := strings.Split(section, "\n")
        if len(lines) == 0 { continue }
        key := strings.TrimSpace(lines[0])
        var summary strings.Builder
        inSummary := false
        for _, line := range lines {
            switch {
            case strings.Contains(line, "EPIC-LEVEL SUMMARY"):
                inSummary = true
            case inSummary && strings.HasPrefix(line, strings.Repeat("=", 80)):
                inSummary = false
            case inSummary && strings.TrimSpace(line) != "":
                if strings.HasPrefix(line, strings.Repeat("-", 40)) { continue }
                summary.WriteString(line)
                summary.WriteString("\n")
            }
        }
        if s := strings.TrimSpace(summary.String()); s != "" {
            out = append(out, domain.EpicSummary{Key: key, Summary: s})
        }
    }
    return out
}

// RenderEpicSummaries writes the text document ParseEpicSummaries reads back.
func RenderEpicSummaries(summaries []domain.EpicSummary) string {
    var b strings.Builder
    for i, e := range summaries {
        fmt.Fprintf(&b, "%d. EPIC: %s\n", i+1, e.Key)
        if e.Title != "" { fmt.Fprintf(&b, "   %s\n", e.Title) }
        b.WriteString(strings.Repeat("-", 40) + "\n")
        b.WriteString("EPIC-LEVEL SUMMARY\n")
        b.WriteString(e.Summary + "\n")
        b.WriteString(strings.Repeat("=", 80) + "\n\n")
    }
    return b.String()
}

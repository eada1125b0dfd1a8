/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */

// Package reports renders the generated analyses into HTML and text files:
// the weekly accomplishments report, the executive dashboard, and epic
// summary documents. LLM prose passes through the markdown converter and the
// issue-key linker before embedding.
package reports

import (
    "regexp"
    "strings"
)

var (
    boldStarRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
    boldUnderRe  = regexp.MustCompile(`__([^_]+)__`)
    h3Re         = regexp.MustCompile(`(?m)^###\s*(.+)$`)
    h2Re         = regexp.MustCompile(`(?m)^##\s*(.+)$`)
    h1Re         = regexp.MustCompile(`(?m)^#\s*(.+)$`)
    bulletRe     = regexp.MustCompile(`(?m)^[*\-•]\s*(.+)$`)
    numberedRe   = regexp.MustCompile(`(?m)^\d+\.\s*(.+)$`)
    liRunRe      = regexp.MustCompile(`(?s)(<li>.*?</li>)(\s*<li>.*?</li>)*`)
    multiBreakRe = regexp.MustCompile(`(<br>){3,}`)
)

// ConvertMarkdownToHTML converts the markdown subset LLM summaries actually
// use: bold markers stripped, headings, bullet and numbered lists, newlines
// to <br>. Anything else passes through untouched.
func ConvertMarkdownToHTML(text string) string {
    s := boldStarRe.ReplaceAllString(text, "$1")
    s = boldUnderRe.ReplaceAllString(s, "$1")
    s = h3Re.ReplaceAllString(s, "<h3>$1</h3>")
    s = h2Re.ReplaceAllString(s, "<h2>$1</h2>")
    s = h1Re.ReplaceAllString(s, "<h1>$1</h1>")
    s = bulletRe.ReplaceAllStringFunc(s, func(m string) string {
        content := strings.TrimSpace(bulletRe.FindStringSubmatch(m)[1])
        // Drop placeholder-only bullets the model sometimes emits.
        if len(content) <= 2 { return "" }
        return "<li>" + content + "</li>"
    })
    s = numberedRe.ReplaceAllString(s, "<li>$1</li>")
    s = liRunRe.ReplaceAllStringFunc(s, func(m string) string {
        if !strings.HasPrefix(strings.TrimSpace(m), "<li>") { return m }
        return "<ul>" + m + "</ul>"
    })
    s = strings.ReplaceAll(s, "\n", "<br>")
    s = multiBreakRe.ReplaceAllString(s, "<br><br>")
    return s
}

// AddJiraLinks turns bare PROJECT-123 keys into anchors pointing at the
// tracker. Keys already inside an anchor or an href stay untouched; with no
// base URL configured the content comes back unchanged.
func AddJiraLinks(htmlContent, projectKey, jiraBaseURL string) string {
    base := strings.TrimSpace(jiraBaseURL)
    if base == "" || projectKey == "" { return htmlContent }
    if !strings.HasSuffix(base, "/") { base += "/browse/" } else { base += "browse/" }

    keyRe := regexp.MustCompile(`\b(` + regexp.QuoteMeta(projectKey) + `-\d+)\b`)
    var b strings.Builder
    last := 0
    for _, loc := range keyRe.FindAllStringIndex(htmlContent, -1) {
        start, end := loc[0], loc[1]
        b.WriteString(htmlContent[last:start])
        key := htmlContent[start:end]
        if insideAnchor(htmlContent, start) {
            b.WriteString(key)
        } else {
            b.WriteString(`<a href="` + base + key + `" target="_blank">` + key + `</a>`)
        }
        last = end
    }
    b.WriteString(htmlContent[last:])
    return b.String()
}

// insideAnchor reports whether pos sits inside an <a> element or an href
// attribute, scanning a bounded window backwards.
func insideAnchor(s string, pos int) bool {
    winStart := pos - 200
    if winStart < 0 { winStart = 0 }
    before := s[winStart:pos]
    if i := strings.LastIndex(before, `href="`); i != -1 {
        if !strings.Contains(before[i+6:], `"`) { return true }
    }
    lastOpen := strings.LastIndex(before, "<a ")
    lastClose := strings.LastIndex(before, "</a>")
    if lastOpen > lastClose {
        after := s[pos:]
        if len(after) > 200 { after = after[:200] }
        if strings.Contains(after, "</a>") { return true }
    }
    return false
}

/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */

// Package result recovers structured payloads from LLM agent output.
// Agent results are adversarially messy: valid JSON may arrive wrapped in
// markdown fences, prefixed with chatter, or followed by trailing prose.
// Nothing in this package returns an error; absence of data is a nil (or
// passthrough) return so a single garbled response never aborts a report run.
package result

import (
    "encoding/json"
    "fmt"
    "regexp"
    "strings"
)

// Rawer is implemented by agent result containers that carry their payload
// in a raw field rather than being the payload themselves.
type Rawer interface {
    Raw() any
}

// ExtractJSON returns the JSON value embedded in an agent result, or nil if
// none can be recovered. Mappings and slices are returned as-is; Rawer
// containers are unwrapped; everything else is coerced to a string and
// scraped.
func ExtractJSON(result any) any {
    switch v := result.(type) {
    case nil:
        return nil
    case map[string]any:
        return v
    case []any:
        return v
    }

    if r, ok := result.(Rawer); ok {
        switch raw := r.Raw().(type) {
        case map[string]any:
            return raw
        case []any:
            return raw
        case string:
            return extractJSONFromString(raw)
        }
    }

    s, ok := result.(string)
    if !ok { s = fmt.Sprintf("%v", result) }
    return extractJSONFromString(s)
}

func extractJSONFromString(text string) any {
    text = strings.TrimSpace(text)
    if text == "" { return nil }

    // Fast path: the whole string is valid JSON.
    if v, ok := tryUnmarshal(text); ok { return v }

    // Markdown code fences (```json ... ``` or ``` ... ```).
    if strings.HasPrefix(text, "```") {
        inner := stripFence(text)
        if v, ok := tryUnmarshal(inner); ok { return v }
        text = strings.TrimSpace(inner)
    }

    // Surrounding prose: scan from the first open brace for its matching
    // close, ignoring braces inside string literals and escaped quotes.
    if i := strings.Index(text, "{"); i >= 0 {
        sub := text[i:]
        if end := scanObjectEnd(sub); end > 0 {
            if v, ok := tryUnmarshal(sub[:end]); ok { return v }
        }
    }

    return nil
}

func tryUnmarshal(s string) (any, bool) {
    var v any
    if err := json.Unmarshal([]byte(s), &v); err != nil { return nil, false }
    return v, true
}

// stripFence removes the opening and closing ``` delimiters, tolerating a
// language tag on the opening line and missing closers.
func stripFence(text string) string {
    lines := strings.Split(text, "\n")
    start := 0
    head := strings.TrimSpace(lines[0])
    if head == "```json" || head == "```" || head == "```html" { start = 1 }
    end := len(lines)
    for i := start; i < len(lines); i++ {
        if strings.TrimSpace(lines[i]) == "```" { end = i; break }
    }
    return strings.Join(lines[start:end], "\n")
}

// scanObjectEnd returns the offset one past the close of the top-level JSON
// object starting at text[0], or -1 when depth never returns to zero. Braces
// inside quoted strings do not affect depth and an escaped quote does not
// toggle string mode.
func scanObjectEnd(text string) int {
    depth := 0
    inString := false
    escaped := false
    for i := 0; i < len(text); i++ {
        c := text[i]
        if escaped { escaped = false; continue }
        if c == '\\' && inString { escaped = true; continue }
        if c == '"' { inString = !inString; continue }
        if inString { continue }
        switch c {
        case '{':
            depth++
        case '}':
            depth--
            if depth == 0 { return i + 1 }
        }
    }
    return -1
}

var htmlPatterns = []*regexp.Regexp{
    regexp.MustCompile("(?is)```html\\s*(<!DOCTYPE.*?)```"),
    regexp.MustCompile("(?is)(<!DOCTYPE html.*?)(?:```|\\z)"),
    regexp.MustCompile("(?is)(<!DOCTYPE.*)"),
}

// ExtractHTML returns the HTML document embedded in an agent result. When no
// document marker is found the raw string form is returned so the caller can
// decide whether it is usable.
func ExtractHTML(result any) string {
    s, ok := result.(string)
    if !ok {
        if r, isRaw := result.(Rawer); isRaw {
            if rs, isStr := r.Raw().(string); isStr { s = rs } else { s = fmt.Sprintf("%v", result) }
        } else {
            s = fmt.Sprintf("%v", result)
        }
    }
    for _, re := range htmlPatterns {
        if m := re.FindStringSubmatch(s); m != nil {
            html := strings.TrimSpace(m[1])
            html = strings.TrimPrefix(html, "```html")
            html = strings.TrimSuffix(html, "```")
            return strings.TrimSpace(html)
        }
    }
    return s
}

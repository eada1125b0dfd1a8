/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */

// Package jiratime normalizes the timestamp representations the Jira MCP
// export produces. A single field may arrive as an ISO-8601 string, a Unix
// epoch string with an ignored trailing minutes-offset token (e.g.
// "1753460716.477000000 1440"), a bare number, or an already-formatted
// display string. Display formatting and recency checks both live here so
// the two cannot drift apart.
package jiratime

import (
    "fmt"
    "math"
    "regexp"
    "strconv"
    "strings"
    "time"
)

const displayLayout = "2006-01-02 15:04:05"

// isoLayouts covers the zoned calendar forms seen in MCP payloads. Offsets
// both with and without a colon occur in the wild.
var isoLayouts = []string{
    time.RFC3339Nano,
    time.RFC3339,
    "2006-01-02T15:04:05.000000-07:00",
    "2006-01-02T15:04:05.000-0700",
    "2006-01-02T15:04:05-0700",
}

// naiveLayouts carry no zone. They are read in local time so a string Format
// produced round-trips through WithinDays without a zone shift.
var naiveLayouts = []string{
    "2006-01-02T15:04:05",
    "2006-01-02 15:04:05",
    "2006-01-02",
}

// Format renders any supported timestamp representation as
// "YYYY-MM-DD HH:MM:SS" in local time. It never panics and never returns an
// error: report rendering must survive whatever the upstream emits.
//
// Formatting an already-formatted string is a no-op, so Format(Format(x))
// is stable. Unrecognized strings come back unchanged; only an epoch that
// cannot be represented as a calendar time yields the "Invalid (<type>)"
// sentinel.
func Format(ts any) string {
    if ts == nil { return "Not Set" }
    switch v := ts.(type) {
    case string:
        s := strings.TrimSpace(v)
        if s == "" || s == "None" { return "Not Set" }
        // Already readable (contains a date hyphen and is longer than a bare day).
        if strings.Contains(s, "-") && len(s) > 10 { return v }
        epoch, ok := firstEpochToken(s)
        if !ok { return v }
        return formatEpoch(epoch, v)
    case int:
        return formatEpoch(float64(v), v)
    case int64:
        return formatEpoch(float64(v), v)
    case float64:
        return formatEpoch(v, v)
    case float32:
        return formatEpoch(float64(v), v)
    default:
        return "Unknown Format"
    }
}

// firstEpochToken extracts the leading whitespace-delimited token and parses
// it as a fractional Unix epoch. The trailing integer suffix the source
// system appends is discarded.
func firstEpochToken(s string) (float64, bool) {
    parts := strings.Fields(s)
    if len(parts) == 0 { return 0, false }
    f, err := strconv.ParseFloat(parts[0], 64)
    if err != nil { return 0, false }
    return f, true
}

func formatEpoch(epoch float64, orig any) string {
    if math.IsNaN(epoch) || math.IsInf(epoch, 0) || math.Abs(epoch) > 1e11 {
        return fmt.Sprintf("Invalid (%s)", typeName(orig))
    }
    sec := int64(epoch)
    nsec := int64((epoch - float64(sec)) * 1e9)
    return time.Unix(sec, nsec).Format(displayLayout)
}

func typeName(v any) string {
    switch v.(type) {
    case string:
        return "str"
    case int, int64:
        return "int"
    case float32, float64:
        return "float"
    default:
        return fmt.Sprintf("%T", v)
    }
}

// WithinDays reports whether ts falls within the last n days. ISO-8601
// parsing is preferred for calendar-looking strings; the epoch-token form is
// the fallback. Anything unparseable is conservatively not recent.
func WithinDays(ts any, days int) bool {
    if ts == nil { return false }
    var t time.Time
    switch v := ts.(type) {
    case string:
        s := strings.TrimSpace(v)
        if s == "" || s == "None" { return false }
        if looksCalendar(s) {
            if parsed, ok := parseISO(s); ok { t = parsed; break }
        }
        epoch, ok := firstEpochToken(s)
        if !ok { return false }
        parsed, ok := epochTime(epoch)
        if !ok { return false }
        t = parsed
    case int:
        parsed, ok := epochTime(float64(v)); if !ok { return false }; t = parsed
    case int64:
        parsed, ok := epochTime(float64(v)); if !ok { return false }; t = parsed
    case float64:
        parsed, ok := epochTime(v); if !ok { return false }; t = parsed
    case float32:
        parsed, ok := epochTime(float64(v)); if !ok { return false }; t = parsed
    default:
        return false
    }
    cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
    return !t.Before(cutoff)
}

func looksCalendar(s string) bool {
    if strings.Contains(s, "T") && strings.Contains(s, "-") { return true }
    return strings.Contains(s, "-") && strings.Contains(s, ":")
}

func parseISO(s string) (time.Time, bool) {
    // Python-style "Z" handling plus offset forms.
    norm := strings.Replace(s, "Z", "+00:00", 1)
    for _, l := range isoLayouts {
        if t, err := time.Parse(l, norm); err == nil { return t, true }
        if t, err := time.Parse(l, s); err == nil { return t, true }
    }
    for _, l := range naiveLayouts {
        if t, err := time.ParseInLocation(l, s, time.Local); err == nil { return t, true }
    }
    return time.Time{}, false
}

func epochTime(epoch float64) (time.Time, bool) {
    if math.IsNaN(epoch) || math.IsInf(epoch, 0) || math.Abs(epoch) > 1e11 { return time.Time{}, false }
    sec := int64(epoch)
    nsec := int64((epoch - float64(sec)) * 1e9)
    return time.Unix(sec, nsec), true
}

// epochTokenRe matches raw epoch tokens LLM summaries sometimes echo back
// verbatim, e.g. "1752850611.021000000 1440" or "1752850611".
var epochTokenRe = regexp.MustCompile(`\b(1\d{9}(?:\.\d+)?)(?: \d+)?\b`)

// ReplaceEpochTokens rewrites raw epoch tokens embedded in prose with their
// formatted calendar form, leaving anything unconvertible untouched.
func ReplaceEpochTokens(text string) string {
    return epochTokenRe.ReplaceAllStringFunc(text, func(m string) string {
        sub := epochTokenRe.FindStringSubmatch(m)
        if sub == nil { return m }
        f, err := strconv.ParseFloat(sub[1], 64)
        if err != nil { return m }
        t, ok := epochTime(f)
        if !ok { return m }
        return t.Format(displayLayout)
    })
}

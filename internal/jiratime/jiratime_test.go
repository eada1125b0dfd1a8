package jiratime

import (
    "fmt"
    "regexp"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

var displayRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

func TestFormat_EmptyValues(t *testing.T) {
    assert.Equal(t, "Not Set", Format(nil))
    assert.Equal(t, "Not Set", Format(""))
    assert.Equal(t, "Not Set", Format("None"))
    assert.Equal(t, "Not Set", Format("  "))
}

func TestFormat_AlreadyFormattedIsNoop(t *testing.T) {
    assert.Equal(t, "2025-07-29 08:38:53", Format("2025-07-29 08:38:53"))
    assert.Equal(t, "2025-08-07T14:16:52.866000+00:00", Format("2025-08-07T14:16:52.866000+00:00"))
}

func TestFormat_EpochWithSuffix(t *testing.T) {
    got := Format("1753460716.477000000 1440")
    assert.Regexp(t, displayRe, got)
    // 1753460716 is July 2025 in every timezone.
    assert.Regexp(t, `^2025-`, got)
}

func TestFormat_BareEpochString(t *testing.T) {
    assert.Regexp(t, displayRe, Format("1700000000"))
}

func TestFormat_NumericEpoch(t *testing.T) {
    assert.Regexp(t, displayRe, Format(1700000000))
    assert.Regexp(t, displayRe, Format(1700000000.25))
}

func TestFormat_Idempotent(t *testing.T) {
    once := Format("1753460716.477000000 1440")
    assert.Equal(t, once, Format(once))
}

func TestFormat_NonNumericStringUnchanged(t *testing.T) {
    // Strings the source never should have produced pass through untouched
    // rather than crashing a report run.
    assert.Equal(t, "Unknown", Format("Unknown"))
}

func TestFormat_OutOfRangeEpoch(t *testing.T) {
    assert.Equal(t, "Invalid (str)", Format("999999999999999"))
    assert.Equal(t, "Invalid (float)", Format(1e15))
}

func TestFormat_UnsupportedType(t *testing.T) {
    assert.Equal(t, "Unknown Format", Format([]string{"x"}))
    assert.Equal(t, "Unknown Format", Format(map[string]any{}))
}

func TestWithinDays_Empty(t *testing.T) {
    assert.False(t, WithinDays(nil, 14))
    assert.False(t, WithinDays("", 14))
    assert.False(t, WithinDays("None", 14))
}

func TestWithinDays_EpochToken(t *testing.T) {
    recent := fmt.Sprintf("%d.477000000 1440", time.Now().Add(-24*time.Hour).Unix())
    assert.True(t, WithinDays(recent, 14))

    old := fmt.Sprintf("%d.000000000 1440", time.Now().Add(-100*24*time.Hour).Unix())
    assert.False(t, WithinDays(old, 14))
}

func TestWithinDays_ISO(t *testing.T) {
    assert.True(t, WithinDays(time.Now().UTC().Format(time.RFC3339), 14))
    assert.True(t, WithinDays(time.Now().UTC().Format("2006-01-02T15:04:05")+"Z", 14))
    assert.False(t, WithinDays("2020-01-01T00:00:00+00:00", 14))
}

func TestWithinDays_FormattedRoundTripHonorsLocalZone(t *testing.T) {
    oldLocal := time.Local
    time.Local = time.FixedZone("UTC+9", 9*3600)
    defer func() { time.Local = oldLocal }()

    inside := Format(time.Now().Add(-6 * 24 * time.Hour).Unix())
    assert.True(t, WithinDays(inside, 7))

    // Four hours past the window must not drift back inside via a zone shift.
    outside := Format(time.Now().Add(-7*24*time.Hour - 4*time.Hour).Unix())
    assert.False(t, WithinDays(outside, 7))
}

func TestWithinDays_NumericEpoch(t *testing.T) {
    assert.True(t, WithinDays(time.Now().Unix(), 1))
    assert.False(t, WithinDays(time.Now().Add(-50*24*time.Hour).Unix(), 14))
}

func TestWithinDays_Garbage(t *testing.T) {
    assert.False(t, WithinDays("not a timestamp", 14))
    assert.False(t, WithinDays("2025-99-99T99:99:99", 14))
    assert.False(t, WithinDays([]int{1}, 14))
}

func TestReplaceEpochTokens(t *testing.T) {
    in := "KONFLUX-42 was resolved at 1753460716.477000000 1440 by the team"
    out := ReplaceEpochTokens(in)
    assert.NotContains(t, out, "1753460716")
    assert.NotContains(t, out, " 1440 ")
    assert.Regexp(t, `resolved at 2025-\d{2}-\d{2} \d{2}:\d{2}:\d{2} by the team`, out)
}

func TestReplaceEpochTokens_LeavesProseAlone(t *testing.T) {
    in := "fixed 3 bugs in sprint 12"
    assert.Equal(t, in, ReplaceEpochTokens(in))
}

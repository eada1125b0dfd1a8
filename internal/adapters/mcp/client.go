/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package mcp

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    "github.com/rs/zerolog"
)

// Client talks to the jira-mcp-snowflake tool server. Tool invocations use a
// JSON-RPC style envelope; the tool result arrives as text content the caller
// scrapes with the result normalizer.
type Client struct {
    baseURL string
    token   string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: strings.TrimRight(cfg.MCPServerURL, "/"),
        token:   cfg.SnowflakeToken,
        http:    &http.Client{ Timeout: cfg.MCPTimeout },
        log:     log,
    }
}

// ListIssuesParams filters the list_jira_issues tool. Zero values are omitted
// from the call.
type ListIssuesParams struct {
    Project       string
    Priority      string
    IssueType     string
    Component     string
    Limit         int
    TimeframeDays int
}

// ListJiraIssues invokes the list_jira_issues tool and returns the raw text
// payload of the first content block.
func (c *Client) ListJiraIssues(ctx context.Context, p ListIssuesParams) (string, error) {
    if p.Project == "" { return "", errors.New("mcp: empty project") }
    args := map[string]any{"project": p.Project}
    if p.Priority != "" { args["priority"] = p.Priority }
    if p.IssueType != "" { args["issue_type"] = p.IssueType }
    if p.Component != "" { args["component"] = p.Component }
    if p.Limit > 0 { args["limit"] = p.Limit }
    if p.TimeframeDays > 0 { args["timeframe"] = p.TimeframeDays }
    return c.CallTool(ctx, "list_jira_issues", args)
}

// CallTool posts a tools/call request and unwraps the text content.
func (c *Client) CallTool(ctx context.Context, tool string, args map[string]any) (string, error) {
    if tool == "" { return "", errors.New("mcp: empty tool name") }
    body := map[string]any{
        "jsonrpc": "2.0",
        "id":      1,
        "method":  "tools/call",
        "params":  map[string]any{"name": tool, "arguments": args},
    }
    out, err := c.doJSON(ctx, body)
    if err != nil { return "", err }
    if errObj, ok := out["error"].(map[string]any); ok {
        return "", fmt.Errorf("mcp: tool %s: %v", tool, errObj["message"])
    }
    res, _ := out["result"].(map[string]any)
    if res == nil { return "", fmt.Errorf("mcp: tool %s: empty result", tool) }
    if contents, ok := res["content"].([]any); ok {
        for _, c0 := range contents {
            if cm, _ := c0.(map[string]any); cm != nil {
                if txt, ok := cm["text"].(string); ok { return txt, nil }
            }
        }
    }
    // Some servers inline the payload instead of wrapping it in content blocks.
    b, _ := json.Marshal(res)
    return string(b), nil
}

func (c *Client) doJSON(ctx context.Context, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("mcp: empty baseURL") }
    b, err := json.Marshal(body)
    if err != nil { return nil, err }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(string(b)))
        if err != nil { return nil, err }
        req.Header.Set("Content-Type", "application/json")
        req.Header.Set("Accept", "application/json")
        if c.token != "" { req.Header.Set("X-Snowflake-Token", c.token) }
        resp, err := c.http.Do(req)
        if err != nil { lastErr = err } else {
            defer resp.Body.Close()
            if resp.StatusCode >= 300 {
                rb, _ := io.ReadAll(resp.Body)
                // retry on 429/5xx
                if resp.StatusCode == 429 || resp.StatusCode >= 500 {
                    lastErr = fmt.Errorf("mcp status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(rb)))
                } else {
                    return nil, fmt.Errorf("mcp status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(rb)))
                }
            } else {
                var out map[string]any
                if err := json.NewDecoder(resp.Body).Decode(&out); err != nil { return nil, err }
                return out, nil
            }
        }
        // backoff
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return nil, lastErr
}

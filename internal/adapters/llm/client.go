/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package llm

import (
    "context"
    "errors"
    "strings"

    openai "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/openai/openai-go/v2/shared"
    "github.com/redhat-ai-tools/jira-dashboard/internal/agents"
    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    "github.com/rs/zerolog"
)

// Client runs agent/task pairs against an OpenAI-compatible endpoint. The
// base URL is configurable so Gemini-compatible gateways work unchanged.
type Client struct {
    key   string
    model string
    cli   openai.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    model := cfg.ModelName
    if strings.TrimSpace(model) == "" { model = "gemini-2.0-flash" }
    opts := []option.RequestOption{option.WithAPIKey(cfg.ModelAPIKey)}
    if strings.TrimSpace(cfg.ModelBaseURL) != "" { opts = append(opts, option.WithBaseURL(cfg.ModelBaseURL)) }
    cli := openai.NewClient(opts...)
    return &Client{ key: cfg.ModelAPIKey, model: model, cli: cli, log: log }
}

// Enabled reports whether a model key is configured. Pipelines fall back to
// template-only rendering when it is not.
func (c *Client) Enabled() bool { return strings.TrimSpace(c.key) != "" }

// RunTask executes one agent/task pair. The agent persona becomes the system
// prompt; the task description plus the fetched data becomes the user prompt.
// The raw completion text is returned for the result normalizer to scrape.
func (c *Client) RunTask(ctx context.Context, agent agents.Agent, task agents.Task, data string) (string, error) {
    if !c.Enabled() { return "", errors.New("llm: missing key") }
    sys := agent.Role
    if agent.Goal != "" { sys += "\n\nGoal: " + agent.Goal }
    if agent.Backstory != "" { sys += "\n\n" + agent.Backstory }
    user := task.Description
    if task.ExpectedOutput != "" { user += "\n\nExpected output: " + task.ExpectedOutput }
    if data != "" { user += "\n\nData:\n" + data }
    c.log.Info().Str("model", c.model).Str("agent", agent.Role).Msg("llm task call")
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage(sys),
            openai.UserMessage(user),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("llm: no choices") }
    return resp.Choices[0].Message.Content, nil
}

// Summarize produces narrative prose from a pre-rendered metrics block.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
    if !c.Enabled() { return "", errors.New("llm: missing key") }
    c.log.Info().Str("model", c.model).Msg("llm summarize call")
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage("You are a program manager. Given Jira metrics and issue listings, write a concise weekly summary of accomplishments and risks in markdown."),
            openai.UserMessage(prompt),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("llm: no choices") }
    return resp.Choices[0].Message.Content, nil
}

/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/redhat-ai-tools/jira-dashboard/internal/adapters/llm"
    "github.com/redhat-ai-tools/jira-dashboard/internal/adapters/mcp"
    "github.com/redhat-ai-tools/jira-dashboard/internal/agents"
    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    httpx "github.com/redhat-ai-tools/jira-dashboard/internal/http"
    "github.com/redhat-ai-tools/jira-dashboard/internal/jobs"
    "github.com/redhat-ai-tools/jira-dashboard/internal/logger"
    "github.com/redhat-ai-tools/jira-dashboard/internal/repo"
    "github.com/redhat-ai-tools/jira-dashboard/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB
    db := repo.MustOpen(ctx, cfg, log)
    defer db.Close()

    // Agent/task definitions
    reg, err := agents.Load(cfg.AgentsFile, cfg.TasksFile)
    if err != nil {
        log.Error().Err(err).Msg("agent config load failed; LLM summarization disabled")
        reg = nil
    }

    // Adapters
    fetcher := mcp.NewClient(cfg, log)
    model := llm.NewClient(cfg, log)

    // Services
    repository := repo.NewRepository(db, log)
    svc := services.New(cfg, log, repository, fetcher, model, reg)

    // HTTP server (Gin)
    router := httpx.NewRouter(cfg, log, svc)

    // Cron
    cron := jobs.NewCron(cfg, log, svc, repository)
    cron.Start()
    defer cron.Stop()

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()
    log.Info().Str("addr", cfg.HTTPAddr).Str("project", cfg.MainProject).Msg("jira-dashboard up")

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}

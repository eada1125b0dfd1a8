/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package http

import (
    "context"
    "net/http"
    "strconv"

    "github.com/gin-gonic/gin"
    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    "github.com/rs/zerolog"
)

type service interface {
    RunWeeklyReport(ctx context.Context) (string, error)
    RunExecutiveDashboard(ctx context.Context, project string) (string, error)
    RunEpicSummaries(ctx context.Context) (string, error)
    GetLastRun(ctx context.Context) (any, error)
    ListRecentRuns(ctx context.Context, n int) (any, error)
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RecentRuns(c *gin.Context) {
    n, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
    runs, err := h.svc.ListRecentRuns(c.Request.Context(), n)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// RunReport triggers a report pipeline in the background, detached from the
// request so client disconnects cannot cancel a half-written report.
func (h *Handlers) RunReport(c *gin.Context) {
    report := c.Param("report")
    project := c.Query("project")
    switch report {
    case "weekly":
        go func() {
            if _, err := h.svc.RunWeeklyReport(context.Background()); err != nil {
                h.log.Error().Err(err).Msg("weekly report failed")
            }
        }()
    case "dashboard":
        go func() {
            if _, err := h.svc.RunExecutiveDashboard(context.Background(), project); err != nil {
                h.log.Error().Err(err).Msg("dashboard failed")
            }
        }()
    case "epics":
        go func() {
            if _, err := h.svc.RunEpicSummaries(context.Background()); err != nil {
                h.log.Error().Err(err).Msg("epic summaries failed")
            }
        }()
    default:
        c.JSON(http.StatusNotFound, gin.H{"error": "unknown report: " + report})
        return
    }
    c.JSON(http.StatusAccepted, gin.H{"status": "queued", "report": report})
}

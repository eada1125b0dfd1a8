/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package http

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    "github.com/rs/zerolog"
)

type stubService struct {
    gotLimit int
}

func (s *stubService) RunWeeklyReport(ctx context.Context) (string, error)                      { return "", nil }
func (s *stubService) RunExecutiveDashboard(ctx context.Context, project string) (string, error) { return "", nil }
func (s *stubService) RunEpicSummaries(ctx context.Context) (string, error)                     { return "", nil }
func (s *stubService) GetLastRun(ctx context.Context) (any, error) {
    return map[string]any{"report": "weekly", "success": true}, nil
}
func (s *stubService) ListRecentRuns(ctx context.Context, n int) (any, error) {
    s.gotLimit = n
    return []map[string]any{{"report": "weekly"}, {"report": "dashboard"}}, nil
}

func testRouter(t *testing.T) (*stubService, http.Handler) {
    t.Helper()
    svc := &stubService{}
    cfg := config.Config{ReportDir: t.TempDir()}
    return svc, NewRouter(cfg, zerolog.Nop(), svc)
}

func TestHealthz(t *testing.T) {
    _, r := testRouter(t)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    if w.Code != http.StatusOK { t.Fatalf("status = %d, want 200", w.Code) }
}

func TestRecentRuns(t *testing.T) {
    svc, r := testRouter(t)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/runs?limit=5", nil))
    if w.Code != http.StatusOK { t.Fatalf("status = %d, want 200", w.Code) }
    if svc.gotLimit != 5 { t.Fatalf("limit = %d, want 5", svc.gotLimit) }
    if !strings.Contains(w.Body.String(), `"dashboard"`) { t.Fatalf("runs missing from body: %s", w.Body.String()) }
}

func TestRecentRuns_DefaultLimit(t *testing.T) {
    svc, r := testRouter(t)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/runs", nil))
    if w.Code != http.StatusOK { t.Fatalf("status = %d, want 200", w.Code) }
    if svc.gotLimit != 20 { t.Fatalf("limit = %d, want 20", svc.gotLimit) }
}

func TestLastRun(t *testing.T) {
    _, r := testRouter(t)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/last-run", nil))
    if w.Code != http.StatusOK { t.Fatalf("status = %d, want 200", w.Code) }
    if !strings.Contains(w.Body.String(), `"weekly"`) { t.Fatalf("unexpected body: %s", w.Body.String()) }
}

func TestRunReport_UnknownName(t *testing.T) {
    _, r := testRouter(t)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/run/nonsense", nil))
    if w.Code != http.StatusNotFound { t.Fatalf("status = %d, want 404", w.Code) }
}

func TestRunReport_Queued(t *testing.T) {
    _, r := testRouter(t)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/run/weekly", nil))
    if w.Code != http.StatusAccepted { t.Fatalf("status = %d, want 202", w.Code) }
}

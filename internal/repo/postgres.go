/* Copyright (c) 2025 Red Hat, Inc.
 * SPDX-License-Identifier: Apache-2.0 */
package repo

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    "github.com/redhat-ai-tools/jira-dashboard/internal/domain"
    "github.com/rs/zerolog"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

const upsertSnapshotSQL = `
    INSERT INTO issue_snapshots(key, summary, project, issue_type, priority, status,
        resolution, component, created, updated, resolution_date, seen_at)
    VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
    ON CONFLICT(key) DO UPDATE SET
        summary=EXCLUDED.summary,
        project=EXCLUDED.project,
        issue_type=EXCLUDED.issue_type,
        priority=EXCLUDED.priority,
        status=EXCLUDED.status,
        resolution=EXCLUDED.resolution,
        component=EXCLUDED.component,
        created=EXCLUDED.created,
        updated=EXCLUDED.updated,
        resolution_date=EXCLUDED.resolution_date,
        seen_at=now()`

// UpsertIssueSnapshot stores the latest known state of an issue as fetched
// for a report run. Codes stay strings exactly as exported.
func (r *Repository) UpsertIssueSnapshot(ctx context.Context, i domain.Issue) error {
    _, err := r.db.Pool.Exec(ctx, upsertSnapshotSQL, i.Key, i.Summary, i.Project, i.IssueType, i.Priority, i.Status,
        i.Resolution, i.Component, i.Created, i.Updated, i.ResolutionDate)
    return err
}

// BulkUpsertIssueSnapshots batches the per-issue upserts for one fetch. A
// single row skips the batch round trip.
func (r *Repository) BulkUpsertIssueSnapshots(ctx context.Context, issues []domain.Issue) error {
    if len(issues) == 0 { return nil }
    if len(issues) == 1 { return r.UpsertIssueSnapshot(ctx, issues[0]) }
    batch := &pgx.Batch{}
    for _, i := range issues {
        batch.Queue(upsertSnapshotSQL, i.Key, i.Summary, i.Project, i.IssueType, i.Priority, i.Status,
            i.Resolution, i.Component, i.Created, i.Updated, i.ResolutionDate)
    }
    br := r.db.Pool.SendBatch(ctx, batch)
    defer br.Close()
    for range issues { if _, err := br.Exec(); err != nil { return err } }
    return nil
}

// SaveMetrics archives the counts a report computed so week-over-week deltas
// can be derived later.
func (r *Repository) SaveMetrics(ctx context.Context, report, project string, at time.Time, metrics map[string]int) error {
    if len(metrics) == 0 { return nil }
    batch := &pgx.Batch{}
    const q = `INSERT INTO report_metrics(report, project, at, metric, value) VALUES($1,$2,$3,$4,$5)
        ON CONFLICT (report, project, at, metric) DO UPDATE SET value=EXCLUDED.value`
    for k, v := range metrics { batch.Queue(q, report, project, at, k, v) }
    br := r.db.Pool.SendBatch(ctx, batch)
    defer br.Close()
    for range metrics { if _, err := br.Exec(); err != nil { return err } }
    return nil
}

// GetLatestMetrics returns the most recent archived counts for a report and
// project prior to the given time.
func (r *Repository) GetLatestMetrics(ctx context.Context, report, project string, before time.Time) (map[string]int, error) {
    rows, err := r.db.Pool.Query(ctx, `
        SELECT metric, value FROM report_metrics
        WHERE report=$1 AND project=$2 AND at = (
            SELECT MAX(at) FROM report_metrics WHERE report=$1 AND project=$2 AND at < $3)`,
        report, project, before)
    if err != nil { return nil, err }
    defer rows.Close()
    out := map[string]int{}
    for rows.Next() { var k string; var v int; if err := rows.Scan(&k, &v); err != nil { return nil, err }; out[k] = v }
    return out, nil
}

// Report runs
func (r *Repository) StartReportRun(ctx context.Context, report, project string) (int64, error) {
    const q = `INSERT INTO report_runs(report, project, started_at, success) VALUES($1,$2,now(),false) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q, report, project).Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishReportRun(ctx context.Context, id int64, issues int, outputPath string, success bool, errStr string) error {
    const q = `UPDATE report_runs SET finished_at=now(), issues=$2, output_path=$3, success=$4, error=$5 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, issues, strings.TrimSpace(outputPath), success, errStr)
    return err
}

type LastRun struct {
    Report     string     `json:"report"`
    Project    string     `json:"project"`
    StartedAt  time.Time  `json:"started_at"`
    FinishedAt *time.Time `json:"finished_at"`
    Issues     int        `json:"issues"`
    OutputPath string     `json:"output_path"`
    Success    bool       `json:"success"`
    Error      string     `json:"error"`
}

func (r *Repository) GetLastRun(ctx context.Context) (*LastRun, error) {
    const q = `SELECT report, COALESCE(project,''), started_at, finished_at,
        COALESCE(issues,0), COALESCE(output_path,''), COALESCE(success,false), COALESCE(error,'')
        FROM report_runs ORDER BY id DESC LIMIT 1`
    row := r.db.Pool.QueryRow(ctx, q)
    lr := &LastRun{}
    if err := row.Scan(&lr.Report, &lr.Project, &lr.StartedAt, &lr.FinishedAt, &lr.Issues, &lr.OutputPath, &lr.Success, &lr.Error); err != nil {
        return nil, err
    }
    return lr, nil
}

// ListRecentRuns returns the newest n runs, served on /admin/runs.
func (r *Repository) ListRecentRuns(ctx context.Context, n int) ([]LastRun, error) {
    if n <= 0 { n = 20 }
    rows, err := r.db.Pool.Query(ctx, `SELECT report, COALESCE(project,''), started_at, finished_at,
        COALESCE(issues,0), COALESCE(output_path,''), COALESCE(success,false), COALESCE(error,'')
        FROM report_runs ORDER BY id DESC LIMIT $1`, n)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []LastRun
    for rows.Next() {
        var lr LastRun
        if err := rows.Scan(&lr.Report, &lr.Project, &lr.StartedAt, &lr.FinishedAt, &lr.Issues, &lr.OutputPath, &lr.Success, &lr.Error); err != nil { return nil, err }
        out = append(out, lr)
    }
    return out, nil
}

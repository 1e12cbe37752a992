package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tracker_server/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// AnalyticsAdapter implements out.AnalyticsRepository on the pgx pool.
type AnalyticsAdapter struct {
	pool *pgxpool.Pool
}

// NewAnalyticsAdapter creates a new AnalyticsAdapter.
func NewAnalyticsAdapter(pool *pgxpool.Pool) *AnalyticsAdapter {
	return &AnalyticsAdapter{pool: pool}
}

// dimensionColumns is the whitelist of groupable expressions.
var dimensionColumns = map[domain.CountDimension]string{
	domain.DimensionStatus:   "uj.status",
	domain.DimensionTitle:    "j.job_title",
	domain.DimensionMonth:    "TO_CHAR(uj.date_applied, 'YYYY-MM')",
	domain.DimensionType:     "j.job_type",
	domain.DimensionCompany:  "j.company_name",
	domain.DimensionLocation: "j.job_location",
}

type countRow struct {
	Key   *string `db:"key"`
	Count int64   `db:"count"`
}

func (a *AnalyticsAdapter) CountBy(ctx context.Context, q domain.CountQuery) ([]domain.GroupCount, error) {
	query, args, err := buildCountQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", q.Dimension, err)
	}
	counted, err := pgx.CollectRows(rows, pgx.RowToStructByName[countRow])
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", q.Dimension, err)
	}

	groups := make([]domain.GroupCount, len(counted))
	for i, r := range counted {
		groups[i] = domain.GroupCount{Key: r.Key, Count: int(r.Count)}
	}
	return groups, nil
}

func buildCountQuery(q domain.CountQuery) (string, []any, error) {
	column, ok := dimensionColumns[q.Dimension]
	if !ok {
		return "", nil, fmt.Errorf("count by: unknown dimension %q", q.Dimension)
	}

	var (
		where []string
		args  []any
	)
	if q.UserID != nil {
		args = append(args, *q.UserID)
		where = append(where, "uj.user_id = $"+strconv.Itoa(len(args)))
	}
	if len(q.Statuses) > 0 {
		args = append(args, pq.StringArray(q.Statuses))
		where = append(where, "uj.status = ANY($"+strconv.Itoa(len(args))+"::text[])")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(column)
	sb.WriteString(" AS key, COUNT(*) AS count FROM users_jobs uj JOIN jobs j ON uj.job_id = j.jobs_id")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" GROUP BY 1 ORDER BY count DESC, key")
	return sb.String(), args, nil
}

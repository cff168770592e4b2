package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/nelson-ong-97/trending-repos/internal/models"
)

const snapshotColumns = `id, repository_id, period, period_start_date, stars_at_start, stars_at_end,
	forks_at_start, forks_at_end, trending_score, snapshot_date`

// GetSnapshot retrieves the snapshot for a (repository, period, window
// start) triple. Returns nil without error when no row exists.
func (s *PostgresStore) GetSnapshot(ctx context.Context, repoID int64, period models.TimeRange, periodStart time.Time) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM repository_snapshots
		WHERE repository_id = $1 AND period = $2 AND period_start_date = $3
	`, repoID, string(period), periodStart).Scan(
		&snap.ID,
		&snap.RepositoryID,
		&snap.Period,
		&snap.PeriodStartDate,
		&snap.StarsAtStart,
		&snap.StarsAtEnd,
		&snap.ForksAtStart,
		&snap.ForksAtEnd,
		&snap.TrendingScore,
		&snap.SnapshotDate,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &snap, nil
}

// UpsertSnapshot inserts a snapshot or refreshes the one already covering
// the (repository, period, period_start_date) triple. The start anchors are
// written only on insert; a conflicting update leaves them untouched so the
// growth measurement stays anchored for the life of the window. The
// uniqueness constraint makes the write atomic under concurrent syncs.
func (s *PostgresStore) UpsertSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO repository_snapshots (
			repository_id, period, period_start_date,
			stars_at_start, stars_at_end, forks_at_start, forks_at_end,
			trending_score, snapshot_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (repository_id, period, period_start_date) DO UPDATE SET
			stars_at_end = EXCLUDED.stars_at_end,
			forks_at_end = EXCLUDED.forks_at_end,
			trending_score = EXCLUDED.trending_score,
			snapshot_date = EXCLUDED.snapshot_date
		RETURNING id
	`,
		snapshot.RepositoryID,
		string(snapshot.Period),
		snapshot.PeriodStartDate,
		snapshot.StarsAtStart,
		snapshot.StarsAtEnd,
		snapshot.ForksAtStart,
		snapshot.ForksAtEnd,
		snapshot.TrendingScore,
		snapshot.SnapshotDate,
	).Scan(&snapshot.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// ListSnapshotsForPeriod returns every snapshot of the period whose owning
// repository matches the filter, most recently refreshed first, with the
// repository row joined in. Deduplication happens in the query service.
func (s *PostgresStore) ListSnapshotsForPeriod(ctx context.Context, period models.TimeRange, filter *RepositoryFilter) ([]*models.SnapshotWithRepository, error) {
	query := `
		SELECT ` + prefixColumns("s", snapshotColumns) + `,
			` + prefixColumns("r", repositoryColumns) + `
		FROM repository_snapshots s
		JOIN repositories r ON r.id = s.repository_id
		WHERE s.period = $1`

	args := []interface{}{string(period)}
	if clause, clauseArgs := filter.Clause("r", 2); clause != "" {
		query += " AND " + clause
		args = append(args, clauseArgs...)
	}
	query += " ORDER BY s.snapshot_date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.SnapshotWithRepository
	for rows.Next() {
		var snap models.SnapshotWithRepository
		var description, language sql.NullString
		var openIssues sql.NullInt64
		var topics pq.StringArray

		if err := rows.Scan(
			&snap.ID,
			&snap.RepositoryID,
			&snap.Period,
			&snap.PeriodStartDate,
			&snap.StarsAtStart,
			&snap.StarsAtEnd,
			&snap.ForksAtStart,
			&snap.ForksAtEnd,
			&snap.TrendingScore,
			&snap.SnapshotDate,
			&snap.Repository.ID,
			&snap.Repository.GithubID,
			&snap.Repository.Owner,
			&snap.Repository.Name,
			&snap.Repository.FullName,
			&snap.Repository.URL,
			&description,
			&language,
			&snap.Repository.StargazersCount,
			&snap.Repository.ForksCount,
			&openIssues,
			&topics,
			&snap.Repository.CreatedAt,
			&snap.Repository.UpdatedAt,
			&snap.Repository.LastSyncedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		snap.Repository.Description = fromNullString(description)
		snap.Repository.Language = fromNullString(language)
		snap.Repository.OpenIssuesCount = fromNullInt(openIssues)
		snap.Repository.Topics = topics
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRepository(row rowScanner) (*models.Repository, error) {
	var repo models.Repository
	var description, language sql.NullString
	var openIssues sql.NullInt64
	var topics pq.StringArray

	if err := row.Scan(
		&repo.ID,
		&repo.GithubID,
		&repo.Owner,
		&repo.Name,
		&repo.FullName,
		&repo.URL,
		&description,
		&language,
		&repo.StargazersCount,
		&repo.ForksCount,
		&openIssues,
		&topics,
		&repo.CreatedAt,
		&repo.UpdatedAt,
		&repo.LastSyncedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan repository row: %w", err)
	}

	repo.Description = fromNullString(description)
	repo.Language = fromNullString(language)
	repo.OpenIssuesCount = fromNullInt(openIssues)
	repo.Topics = topics
	return &repo, nil
}

func scanRepositoryRow(row *sql.Row) (*models.Repository, error) {
	repo, err := scanRepository(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return repo, nil
}

// prefixColumns qualifies each column of a comma-separated list with alias.
func prefixColumns(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func fromNullInt(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}

func topicsArray(topics []string) interface{} {
	if topics == nil {
		topics = []string{}
	}
	return pq.Array(topics)
}

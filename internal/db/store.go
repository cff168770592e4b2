package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nelson-ong-97/trending-repos/internal/models"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

type PostgresStore struct {
	db *sql.DB
}

// Store defines the interface for database operations
type Store interface {
	// Repository operations
	GetRepositoryByGithubID(ctx context.Context, githubID int64) (*models.Repository, error)
	GetRepositoryByFullName(ctx context.Context, fullName string) (*models.Repository, error)
	UpsertRepository(ctx context.Context, repo *models.Repository) error
	ListRepositoriesByStars(ctx context.Context, filter *RepositoryFilter, limit, offset int) ([]*models.Repository, error)
	CountRepositories(ctx context.Context, filter *RepositoryFilter) (int, error)
	LatestSyncTime(ctx context.Context) (*time.Time, error)

	// Snapshot operations
	GetSnapshot(ctx context.Context, repoID int64, period models.TimeRange, periodStart time.Time) (*models.Snapshot, error)
	UpsertSnapshot(ctx context.Context, snapshot *models.Snapshot) error
	ListSnapshotsForPeriod(ctx context.Context, period models.TimeRange, filter *RepositoryFilter) ([]*models.SnapshotWithRepository, error)
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Migrate() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "internal/db/migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const repositoryColumns = `id, github_id, owner, name, full_name, url, description, language,
	stargazers_count, forks_count, open_issues_count, topics, created_at, updated_at, last_synced_at`

// GetRepositoryByGithubID retrieves a repository by its external GitHub id.
// Returns nil without error when no row exists.
func (s *PostgresStore) GetRepositoryByGithubID(ctx context.Context, githubID int64) (*models.Repository, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+repositoryColumns+`
		FROM repositories
		WHERE github_id = $1
	`, githubID)
	return scanRepositoryRow(row)
}

// GetRepositoryByFullName retrieves a repository by its "owner/name" key.
// Returns nil without error when no row exists.
func (s *PostgresStore) GetRepositoryByFullName(ctx context.Context, fullName string) (*models.Repository, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+repositoryColumns+`
		FROM repositories
		WHERE full_name = $1
	`, fullName)
	return scanRepositoryRow(row)
}

// UpsertRepository inserts the repository or, when the github_id already
// exists, replaces every mutable field. The generated row id is written
// back into repo.ID.
func (s *PostgresStore) UpsertRepository(ctx context.Context, repo *models.Repository) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO repositories (
			github_id, owner, name, full_name, url, description, language,
			stargazers_count, forks_count, open_issues_count, topics,
			created_at, updated_at, last_synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (github_id) DO UPDATE SET
			owner = EXCLUDED.owner,
			name = EXCLUDED.name,
			full_name = EXCLUDED.full_name,
			url = EXCLUDED.url,
			description = EXCLUDED.description,
			language = EXCLUDED.language,
			stargazers_count = EXCLUDED.stargazers_count,
			forks_count = EXCLUDED.forks_count,
			open_issues_count = EXCLUDED.open_issues_count,
			topics = EXCLUDED.topics,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			last_synced_at = EXCLUDED.last_synced_at
		RETURNING id
	`,
		repo.GithubID,
		repo.Owner,
		repo.Name,
		repo.FullName,
		repo.URL,
		nullString(repo.Description),
		nullString(repo.Language),
		repo.StargazersCount,
		repo.ForksCount,
		nullInt(repo.OpenIssuesCount),
		topicsArray(repo.Topics),
		repo.CreatedAt,
		repo.UpdatedAt,
		repo.LastSyncedAt,
	).Scan(&repo.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert repository %s: %w", repo.FullName, err)
	}
	return nil
}

// ListRepositoriesByStars lists repositories matching the filter ordered by
// star count descending, windowed by limit and offset. Used by the ranking
// fallback when no snapshots exist yet.
func (s *PostgresStore) ListRepositoriesByStars(ctx context.Context, filter *RepositoryFilter, limit, offset int) ([]*models.Repository, error) {
	query := `
		SELECT ` + prefixColumns("r", repositoryColumns) + `
		FROM repositories r`

	var args []interface{}
	if clause, clauseArgs := filter.Clause("r", 1); clause != "" {
		query += " WHERE " + clause
		args = clauseArgs
	}
	query += fmt.Sprintf(" ORDER BY r.stargazers_count DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query repositories: %w", err)
	}
	defer rows.Close()

	var repos []*models.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repositories: %w", err)
	}

	return repos, nil
}

// CountRepositories returns the number of repositories matching the filter.
func (s *PostgresStore) CountRepositories(ctx context.Context, filter *RepositoryFilter) (int, error) {
	query := `SELECT COUNT(*) FROM repositories r`

	var args []interface{}
	if clause, clauseArgs := filter.Clause("r", 1); clause != "" {
		query += " WHERE " + clause
		args = clauseArgs
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count repositories: %w", err)
	}
	return count, nil
}

// LatestSyncTime returns the most recent last_synced_at across the whole
// store, or nil when no repository has ever been synced.
func (s *PostgresStore) LatestSyncTime(ctx context.Context) (*time.Time, error) {
	var latest sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT MAX(last_synced_at) FROM repositories`).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync time: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

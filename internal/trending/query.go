package trending

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nelson-ong-97/trending-repos/internal/db"
	apperrors "github.com/nelson-ong-97/trending-repos/internal/errors"
	"github.com/nelson-ong-97/trending-repos/internal/models"
)

// TrendingQuery holds the validated parameters of a ranking request.
type TrendingQuery struct {
	TimeRange models.TimeRange
	Page      int
	PageSize  int
	Language  string
	Search    string
}

// QueryService serves the ranking views. It is read-only; any store failure
// surfaces as a single internal error with the cause retained for logs.
type QueryService struct {
	store  db.Store
	logger *logrus.Logger
	now    func() time.Time
}

// NewQueryService creates a new QueryService.
func NewQueryService(store db.Store, logger *logrus.Logger) *QueryService {
	return &QueryService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// GetTrending returns one page of the trending ranking for a time range.
// The ranking is built from the most recent snapshot per repository, sorted
// by trending score descending with star count as the tie break. When no
// snapshots match at all (sync has not run yet), repositories ordered by
// stars are served instead with a zero score.
func (q *QueryService) GetTrending(ctx context.Context, query TrendingQuery) (*models.TrendingResponse, error) {
	filter := &db.RepositoryFilter{Language: query.Language, Search: query.Search}

	snapshots, err := q.store.ListSnapshotsForPeriod(ctx, query.TimeRange, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch trending repositories", err)
	}

	if len(snapshots) == 0 {
		return q.fallbackByStars(ctx, query, filter)
	}

	ranked := rankSnapshots(snapshots)

	totalRepos := len(ranked)
	startIndex := (query.Page - 1) * query.PageSize
	endIndex := startIndex + query.PageSize

	repos := make([]models.RepositoryWithTrendingScore, 0, query.PageSize)
	for _, snap := range sliceWindow(ranked, startIndex, endIndex) {
		repos = append(repos, models.RepositoryWithTrendingScore{
			Repository:    snap.Repository,
			TrendingScore: snap.TrendingScore,
		})
	}

	lastUpdated, err := q.lastUpdated(ctx)
	if err != nil {
		return nil, err
	}

	return &models.TrendingResponse{
		Repos:       repos,
		Pagination:  paginationMeta(query.Page, query.PageSize, totalRepos),
		LastUpdated: lastUpdated,
	}, nil
}

// GetByFullName returns the repository stored under fullName, or nil
// without error when it is absent.
func (q *QueryService) GetByFullName(ctx context.Context, fullName string) (*models.Repository, error) {
	repo, err := q.store.GetRepositoryByFullName(ctx, fullName)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch repository", err)
	}
	return repo, nil
}

// rankSnapshots deduplicates to the most recent snapshot per repository
// (input is ordered by snapshot date descending) and sorts by trending
// score descending, breaking ties by star count descending. The sort is
// in-memory because it follows cross-window deduplication.
func rankSnapshots(snapshots []*models.SnapshotWithRepository) []*models.SnapshotWithRepository {
	seen := make(map[int64]bool, len(snapshots))
	deduped := make([]*models.SnapshotWithRepository, 0, len(snapshots))
	for _, snap := range snapshots {
		if seen[snap.RepositoryID] {
			continue
		}
		seen[snap.RepositoryID] = true
		deduped = append(deduped, snap)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].TrendingScore != deduped[j].TrendingScore {
			return deduped[i].TrendingScore > deduped[j].TrendingScore
		}
		return deduped[i].Repository.StargazersCount > deduped[j].Repository.StargazersCount
	})

	return deduped
}

// fallbackByStars serves repositories ordered by star count when the period
// has no snapshots yet. Every trending score is reported as zero and the
// totals come from a real count query.
func (q *QueryService) fallbackByStars(ctx context.Context, query TrendingQuery, filter *db.RepositoryFilter) (*models.TrendingResponse, error) {
	q.logger.WithField("time_range", query.TimeRange.String()).Debug("No snapshots for period, falling back to star ordering")

	offset := (query.Page - 1) * query.PageSize
	repositories, err := q.store.ListRepositoriesByStars(ctx, filter, query.PageSize, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch repositories", err)
	}

	totalRepos, err := q.store.CountRepositories(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count repositories", err)
	}

	repos := make([]models.RepositoryWithTrendingScore, 0, len(repositories))
	for _, repo := range repositories {
		repos = append(repos, models.RepositoryWithTrendingScore{
			Repository:    *repo,
			TrendingScore: 0,
		})
	}

	lastUpdated, err := q.lastUpdated(ctx)
	if err != nil {
		return nil, err
	}

	return &models.TrendingResponse{
		Repos:       repos,
		Pagination:  paginationMeta(query.Page, query.PageSize, totalRepos),
		LastUpdated: lastUpdated,
	}, nil
}

func (q *QueryService) lastUpdated(ctx context.Context) (string, error) {
	latest, err := q.store.LatestSyncTime(ctx)
	if err != nil {
		return "", apperrors.NewInternalError("failed to get last sync time", err)
	}
	if latest == nil {
		return q.now().UTC().Format(time.RFC3339), nil
	}
	return latest.UTC().Format(time.RFC3339), nil
}

func paginationMeta(page, pageSize, totalRepos int) models.PaginationMeta {
	totalPages := (totalRepos + pageSize - 1) / pageSize
	return models.PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    pageSize,
		TotalRepos:  totalRepos,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// sliceWindow slices [start, end) of items, clamping to the valid range so
// that pages past the end come back empty rather than panicking.
func sliceWindow(items []*models.SnapshotWithRepository, start, end int) []*models.SnapshotWithRepository {
	if start >= len(items) {
		return nil
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

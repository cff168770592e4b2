package trending

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nelson-ong-97/trending-repos/internal/db"
	"github.com/nelson-ong-97/trending-repos/internal/github"
	"github.com/nelson-ong-97/trending-repos/internal/models"
)

// Source yields trending candidate repositories from the external data
// source. Implemented by the GitHub client and its caching decorator.
type Source interface {
	Ready() error
	TrendingCandidates(ctx context.Context, timeRange models.TimeRange) ([]github.SearchRepository, error)
}

// Syncer runs the sync pipeline: for each time range it fetches candidates,
// upserts repository rows and refreshes trend snapshots. Periods and
// repositories are processed sequentially; failures are isolated at the
// record and period level and only surface in the report counters.
type Syncer struct {
	store  db.Store
	source Source
	logger *logrus.Logger
	now    func() time.Time
}

// NewSyncer creates a new Syncer.
func NewSyncer(store db.Store, source Source, logger *logrus.Logger) *Syncer {
	return &Syncer{
		store:  store,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Start runs an immediate sync and then repeats on the interval until the
// context is cancelled.
func (s *Syncer) Start(ctx context.Context, interval time.Duration) {
	s.logger.WithField("interval", interval.String()).Info("Starting background sync")

	if _, err := s.SyncAll(ctx); err != nil {
		s.logger.WithError(err).Error("Initial sync failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Background sync stopped")
			return
		case <-ticker.C:
			if _, err := s.SyncAll(ctx); err != nil {
				s.logger.WithError(err).Error("Scheduled sync failed")
			}
		}
	}
}

// SyncAll syncs every supported time range and returns the run report. It
// fails only when a required credential is missing; source or per-record
// failures are recorded in the per-period counters instead.
func (s *Syncer) SyncAll(ctx context.Context) (*models.SyncResult, error) {
	if err := s.source.Ready(); err != nil {
		return nil, err
	}

	startedAt := s.now()
	s.logger.Info("Starting trending sync run")

	results := make([]models.TimeRangeResult, 0, len(models.AllTimeRanges()))
	for _, timeRange := range models.AllTimeRanges() {
		results = append(results, s.syncTimeRange(ctx, timeRange))
	}

	result := &models.SyncResult{
		SyncedAt:   startedAt,
		Duration:   s.now().Sub(startedAt).Milliseconds(),
		TimeRanges: results,
	}

	s.logger.WithField("duration_ms", result.Duration).Info("Trending sync run finished")
	return result, nil
}

// syncTimeRange syncs one time range. A source failure marks the whole
// period as errored without touching the other periods.
func (s *Syncer) syncTimeRange(ctx context.Context, timeRange models.TimeRange) models.TimeRangeResult {
	logger := s.logger.WithField("time_range", timeRange.String())
	result := models.TimeRangeResult{TimeRange: timeRange}

	candidates, err := s.source.TrendingCandidates(ctx, timeRange)
	if err != nil {
		logger.WithError(err).Error("Failed to fetch trending candidates")
		result.Errors = len(candidates)
		return result
	}

	for _, candidate := range candidates {
		created, err := s.syncRepository(ctx, timeRange, candidate)
		if err != nil {
			result.Errors++
			logger.WithFields(logrus.Fields{
				"repository": candidate.FullName,
				"github_id":  candidate.ID,
			}).WithError(err).Error("Failed to sync repository")
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		result.Synced++
	}

	logger.WithFields(logrus.Fields{
		"synced":  result.Synced,
		"created": result.Created,
		"updated": result.Updated,
		"errors":  result.Errors,
	}).Info("Time range synced")
	return result
}

// syncRepository upserts one candidate's repository row and refreshes its
// snapshot for the time range. The returned bool classifies the repository
// upsert as create (true) or update (false).
func (s *Syncer) syncRepository(ctx context.Context, timeRange models.TimeRange, candidate github.SearchRepository) (bool, error) {
	now := s.now()

	existing, err := s.store.GetRepositoryByGithubID(ctx, candidate.ID)
	if err != nil {
		return false, err
	}

	repo := repositoryFromCandidate(candidate, now)
	if err := s.store.UpsertRepository(ctx, repo); err != nil {
		return false, err
	}

	windowStart := periodStart(now, timeRange)
	snap, err := s.store.GetSnapshot(ctx, repo.ID, timeRange, windowStart)
	if err != nil {
		return false, err
	}

	var snapshot models.Snapshot
	if snap != nil {
		snapshot = *snap
		snapshot.StarsAtEnd = candidate.StargazersCount
		snapshot.ForksAtEnd = candidate.ForksCount
		snapshot.TrendingScore = growthScore(snap.StarsAtStart, candidate.StargazersCount, timeRange.Days())
		snapshot.SnapshotDate = now
	} else {
		snapshot = models.Snapshot{
			RepositoryID:    repo.ID,
			Period:          timeRange,
			PeriodStartDate: windowStart,
			StarsAtStart:    candidate.StargazersCount,
			StarsAtEnd:      candidate.StargazersCount,
			ForksAtStart:    candidate.ForksCount,
			ForksAtEnd:      candidate.ForksCount,
			TrendingScore:   initialScore(candidate.StargazersCount),
			SnapshotDate:    now,
		}
	}

	if err := s.store.UpsertSnapshot(ctx, &snapshot); err != nil {
		return false, err
	}

	return existing == nil, nil
}

// periodStart computes the lower bound of a time range's lookback window.
// It is truncated to the UTC day boundary so every sync within the same day
// addresses the same snapshot row; the window advances at midnight UTC.
func periodStart(now time.Time, timeRange models.TimeRange) time.Time {
	return now.UTC().AddDate(0, 0, -timeRange.Days()).Truncate(24 * time.Hour)
}

func repositoryFromCandidate(candidate github.SearchRepository, syncedAt time.Time) *models.Repository {
	topics := candidate.Topics
	if topics == nil {
		topics = []string{}
	}
	return &models.Repository{
		GithubID:        candidate.ID,
		Owner:           candidate.Owner.Login,
		Name:            candidate.Name,
		FullName:        candidate.FullName,
		URL:             candidate.HTMLURL,
		Description:     candidate.Description,
		Language:        candidate.Language,
		StargazersCount: candidate.StargazersCount,
		ForksCount:      candidate.ForksCount,
		OpenIssuesCount: candidate.OpenIssuesCount,
		Topics:          topics,
		CreatedAt:       candidate.CreatedAt,
		UpdatedAt:       candidate.UpdatedAt,
		LastSyncedAt:    syncedAt,
	}
}

package scheduler

import (
	"github.com/rs/zerolog"

	"coinfolio/internal/clientdata"
)

// CacheCleanupJob removes expired entries from the client data cache so the
// database file does not grow without bound.
type CacheCleanupJob struct {
	repo *clientdata.Repository
	log  zerolog.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(repo *clientdata.Repository, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		repo: repo,
		log:  log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Run deletes expired cache rows
func (j *CacheCleanupJob) Run() error {
	deleted, err := j.repo.DeleteExpired()
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Expired cache entries removed")
	}

	return nil
}

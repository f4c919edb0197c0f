package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/simulation"
)

// CacheClearJob periodically drops the simulation result cache so changed
// noise presets or thresholds stop being served from stale entries.
type CacheClearJob struct {
	log    zerolog.Logger
	cache  *simulation.ResultCache
	events *events.Manager
}

// NewCacheClearJob creates a new cache clear job
func NewCacheClearJob(cache *simulation.ResultCache, eventManager *events.Manager, log zerolog.Logger) *CacheClearJob {
	return &CacheClearJob{
		log:    log.With().Str("job", "cache_clear").Logger(),
		cache:  cache,
		events: eventManager,
	}
}

// Name returns the job name
func (j *CacheClearJob) Name() string {
	return "cache_clear"
}

// Description returns the job description
func (j *CacheClearJob) Description() string {
	return "Clear the simulation result cache"
}

// Run executes the cache clear job
func (j *CacheClearJob) Run() error {
	entries := j.cache.Clear()

	j.log.Info().Int("entries", entries).Msg("Result cache cleared")

	if j.events != nil {
		j.events.EmitTyped(events.CacheCleared, "scheduler", &events.CacheClearedData{
			Entries: entries,
			Source:  "scheduler",
		})
	}

	return nil
}

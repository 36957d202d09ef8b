package jobs

import (
	"context"
	"time"

	"github.com/campusnet/backend/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	purgeSpec        = "0 0 3 * * *"    // daily at 03:00
	storyCleanupSpec = "0 */10 * * * *" // every 10 minutes

	jobTimeout = 5 * time.Minute
)

type NotificationPurger interface {
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

type StoryCleaner interface {
	CleanupStories(ctx context.Context) (int64, error)
}

// Scheduler runs housekeeping: notification retention and expired stories
type Scheduler struct {
	cron      *cron.Cron
	purger    NotificationPurger
	stories   StoryCleaner
	retention time.Duration
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func NewScheduler(purger NotificationPurger, stories StoryCleaner, retention time.Duration, m *metrics.Metrics, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:      c,
		purger:    purger,
		stories:   stories,
		retention: retention,
		metrics:   m,
		log:       log.With().Str("component", "jobs").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(purgeSpec, s.purgeNotifications); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(storyCleanupSpec, s.cleanupStories); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		<-s.cron.Stop().Done()
		cancel()
	}()
	return func() {
		<-ctx.Done()
		cancel()
	}
}

func (s *Scheduler) purgeNotifications() {
	if s.retention <= 0 {
		return
	}
	s.run("notification_purge", func(ctx context.Context) (int64, error) {
		return s.purger.Purge(ctx, s.retention)
	})
}

func (s *Scheduler) cleanupStories() {
	s.run("story_cleanup", s.stories.CleanupStories)
}

func (s *Scheduler) run(job string, fn func(ctx context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := fn(ctx)
	if err != nil {
		s.metrics.JobResults.WithLabelValues(job, "failed").Inc()
		s.log.Error().Err(err).Str("job", job).Msg("job failed")
		return
	}
	s.metrics.JobResults.WithLabelValues(job, "done").Inc()
	s.log.Info().Str("job", job).Int64("affected", n).Dur("took", time.Since(start)).Msg("job finished")
}

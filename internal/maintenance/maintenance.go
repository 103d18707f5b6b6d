package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sdegypt/diychach/internal/database"
	"github.com/sdegypt/diychach/internal/stats"
)

const metricAdPurgeRuns = "AdPurgeRuns"

// dailySchedule fires once a day at midnight in the configured
// timezone.
const dailySchedule = "0 0 * * *"

const purgeTimeout = time.Minute

// Task purges stale forum advertisements on a daily timer. It is
// fire-and-forget: a failed run is logged and skipped, the next
// firing is unaffected.
type Task struct {
	log       *log.Logger
	db        database.Repository
	stats     stats.StatsProvider
	cron      *cron.Cron
	retention time.Duration
}

func NewTask(logger *log.Logger, db database.Repository, su stats.StatsProvider, retention time.Duration, loc *time.Location) (*Task, error) {
	t := &Task{
		log:       logger,
		db:        db,
		stats:     su,
		cron:      cron.New(cron.WithLocation(loc)),
		retention: retention,
	}

	su.RegisterMetric(metricAdPurgeRuns)

	if _, err := t.cron.AddFunc(dailySchedule, t.purgeOldAds); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Task) Start() {
	t.cron.Start()
}

func (t *Task) Stop() {
	t.cron.Stop()
}

func (t *Task) purgeOldAds() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	deleted, err := t.db.DeleteOldAds(ctx, t.retention)
	if err != nil {
		t.log.Printf("scheduled ad purge: %v", err)
		return
	}

	t.stats.Incr(metricAdPurgeRuns)
	t.log.Printf("scheduled ad purge removed %d ads", deleted)
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Stattrackrr/stattrackr-sub000/internal/models"
)

// Refresher keeps tracked players' game logs warm in the cache on a cron
// schedule, so chart requests for popular players rarely hit the provider
// cold.
type Refresher struct {
	db     *gorm.DB
	stats  *StatsService
	cache  *CacheService
	logger *logrus.Logger
	cron   *cron.Cron

	interval    time.Duration
	skipInitial bool

	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	lastError string
	runCount  int
	refreshed int
}

// RefreshStatus reports the refresher's recent activity.
type RefreshStatus struct {
	Running   bool      `json:"running"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	RunCount  int       `json:"run_count"`
	Refreshed int       `json:"players_refreshed"`
}

func NewRefresher(db *gorm.DB, stats *StatsService, cache *CacheService, logger *logrus.Logger, interval time.Duration, skipInitial bool) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Refresher{
		db:          db,
		stats:       stats,
		cache:       cache,
		logger:      logger,
		cron:        cron.New(),
		interval:    interval,
		skipInitial: skipInitial,
	}
}

// Start schedules the periodic refresh and a nightly cache flush, then kicks
// off an initial refresh unless configured to skip it.
func (r *Refresher) Start() error {
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, func() { r.RefreshAll(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	// 4 AM flush clears yesterday's boards before the morning traffic.
	if _, err := r.cron.AddFunc("0 4 * * *", r.flushCache); err != nil {
		return fmt.Errorf("failed to schedule cache flush: %w", err)
	}

	r.cron.Start()
	r.setRunning(true)
	r.logger.WithField("interval", r.interval.String()).Info("Refresher started")

	if !r.skipInitial {
		go r.RefreshAll(context.Background())
	}
	return nil
}

// Stop halts the schedule and waits for in-flight jobs.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.setRunning(false)
	r.logger.Info("Refresher stopped")
}

// RefreshAll refreshes every active tracked player sequentially. Failures
// are logged per player and never abort the sweep.
func (r *Refresher) RefreshAll(ctx context.Context) {
	players, err := models.ActiveTrackedPlayers(r.db)
	if err != nil {
		r.recordRun(0, err)
		r.logger.WithError(err).Error("Failed to list tracked players")
		return
	}

	refreshed := 0
	for _, p := range players {
		if err := r.refreshPlayer(ctx, p.PlayerID); err != nil {
			r.logger.WithError(err).WithField("player_id", p.PlayerID).
				Warn("Player refresh failed")
			continue
		}
		refreshed++
	}

	r.recordRun(refreshed, nil)
	r.logger.WithFields(logrus.Fields{
		"tracked":   len(players),
		"refreshed": refreshed,
	}).Info("Refresh sweep complete")
}

// FetchOnDemand refreshes one player immediately and adds it to the tracked
// set so the background sweeps keep it warm.
func (r *Refresher) FetchOnDemand(ctx context.Context, playerID int) error {
	player, err := r.stats.provider.GetPlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("player lookup failed: %w", err)
	}
	if _, err := models.UpsertTrackedPlayer(r.db, player.ID, player.Name, player.TeamAbbr); err != nil {
		return fmt.Errorf("failed to track player: %w", err)
	}
	return r.refreshPlayer(ctx, playerID)
}

// Status returns a snapshot of refresh activity.
func (r *Refresher) Status() RefreshStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RefreshStatus{
		Running:   r.running,
		LastRun:   r.lastRun,
		LastError: r.lastError,
		RunCount:  r.runCount,
		Refreshed: r.refreshed,
	}
}

// refreshPlayer drops the player's cached log and refetches it, warming the
// cache through the provider's read-through path.
func (r *Refresher) refreshPlayer(ctx context.Context, playerID int) error {
	now := time.Now().UTC()

	if r.cache != nil {
		pattern := fmt.Sprintf("bdl:gamelog:%d:*", playerID)
		if err := r.cache.DeletePattern(ctx, pattern); err != nil {
			r.logger.WithError(err).WithField("player_id", playerID).
				Warn("Failed to invalidate cached game log")
		}
	}

	if _, err := r.stats.GetGameLog(ctx, playerID, now); err != nil {
		return err
	}
	if err := models.MarkPlayerFetched(r.db, playerID, now); err != nil {
		r.logger.WithError(err).WithField("player_id", playerID).
			Warn("Failed to record fetch time")
	}
	return nil
}

func (r *Refresher) flushCache() {
	if r.cache == nil {
		return
	}
	if err := r.cache.Flush(); err != nil {
		r.logger.WithError(err).Error("Nightly cache flush failed")
		return
	}
	r.logger.Info("Nightly cache flush complete")
}

func (r *Refresher) setRunning(running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = running
}

func (r *Refresher) recordRun(refreshed int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRun = time.Now().UTC()
	r.runCount++
	r.refreshed = refreshed
	if err != nil {
		r.lastError = err.Error()
	} else {
		r.lastError = ""
	}
}

package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/jurychain-api/databases"
)

const sweepSchedule = "@every 1m"

// Sweeper drops expired rate-limit windows
type Sweeper interface {
	Sweep() int
}

// Scheduler runs the periodic housekeeping jobs
type Scheduler struct {
	cron          *cron.Cron
	CDB           databases.CaseDatabase
	Limiter       Sweeper
	statsSchedule string
	instanceID    string
}

// NewScheduler creates a new scheduler instance. limiter may be nil when the counters
// live in Redis and expire on their own.
func NewScheduler(cDB databases.CaseDatabase, limiter Sweeper, statsSchedule string) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		CDB:           cDB,
		Limiter:       limiter,
		statsSchedule: statsSchedule,
		instanceID:    instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	if s.Limiter != nil {
		_, err := s.cron.AddFunc(sweepSchedule, s.sweepLimiter)
		if err != nil {
			zap.S().Errorw("failed to register limiter sweep job", "error", err)
		}
	}

	if s.statsSchedule != "" {
		_, err := s.cron.AddFunc(s.statsSchedule, s.logDailyStats)
		if err != nil {
			zap.S().Errorw("failed to register stats job",
				"schedule", s.statsSchedule,
				"error", err)
		}
	}

	s.cron.Start()
	zap.S().Infow("Scheduler started", "instance", s.instanceID, "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Scheduler stopped")
}

func (s *Scheduler) sweepLimiter() {
	if removed := s.Limiter.Sweep(); removed > 0 {
		zap.S().Debugw("swept expired rate limit windows", "removed", removed)
	}
}

// logDailyStats logs the same counters the stats endpoint serves, over the last day
func (s *Scheduler) logDailyStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	since := primitive.NewDateTimeFromTime(time.Now().Add(-24 * time.Hour))

	total, err := s.CDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to count cases", "error", err)
		return
	}
	lastDay, err := s.CDB.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
	if err != nil {
		zap.S().Errorw("failed to count recent cases", "error", err)
		return
	}
	anchored, err := s.CDB.CountDocuments(ctx, bson.M{"storedOnchain": true})
	if err != nil {
		zap.S().Errorw("failed to count anchored cases", "error", err)
		return
	}

	zap.S().Infow("Daily case stats",
		"instance", s.instanceID,
		"totalCases", total,
		"casesLast24h", lastDay,
		"anchoredCases", anchored,
	)
}

package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/onboardly/onboardly-backend/internal/config"
	"github.com/onboardly/onboardly-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const overdueScanBatch = 200

// ReminderWorker periodically scans for overdue assignments and enqueues
// reminder payloads for the notification pipeline. A cooldown keeps the same
// assignment from being reminded twice in a row.
type ReminderWorker struct {
	assignmentRepo *repository.AssignmentRepository
	rdb            *redis.Client
	interval       time.Duration
	cooldown       time.Duration
	log            zerolog.Logger
}

// NewReminderWorker creates a new ReminderWorker.
func NewReminderWorker(assignmentRepo *repository.AssignmentRepository, rdb *redis.Client, interval, cooldown time.Duration, log zerolog.Logger) *ReminderWorker {
	return &ReminderWorker{
		assignmentRepo: assignmentRepo,
		rdb:            rdb,
		interval:       interval,
		cooldown:       cooldown,
		log:            log.With().Str("component", "reminder_worker").Logger(),
	}
}

type reminderPayload struct {
	AssignmentID string    `json:"assignment_id"`
	UserID       string    `json:"user_id"`
	FlowID       string    `json:"flow_id"`
	DueDate      time.Time `json:"due_date"`
}

// Start begins the scan loop. Call in a goroutine.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// First scan right away so restarts don't delay reminders a full interval.
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ReminderWorker) scan(ctx context.Context) {
	cutoff := time.Now().Add(-w.cooldown)

	overdue, err := w.assignmentRepo.ListOverdue(ctx, cutoff, overdueScanBatch)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Overdue scan failed")
		}
		return
	}
	if len(overdue) == 0 {
		return
	}

	enqueued := 0
	for i := range overdue {
		a := &overdue[i]
		payload, err := json.Marshal(reminderPayload{
			AssignmentID: a.ID.String(),
			UserID:       a.UserID.String(),
			FlowID:       a.FlowID.String(),
			DueDate:      *a.DueDate,
		})
		if err != nil {
			w.log.Error().Err(err).Msg("Marshal reminder failed")
			continue
		}

		if err := w.rdb.RPush(ctx, config.WorkerKey.ReminderQueue, payload).Err(); err != nil {
			w.log.Error().Err(err).
				Str("assignment_id", a.ID.String()).
				Msg("Enqueue reminder failed")
			continue
		}
		if err := w.assignmentRepo.MarkReminded(ctx, a.ID, time.Now()); err != nil {
			w.log.Error().Err(err).
				Str("assignment_id", a.ID.String()).
				Msg("Mark reminded failed")
			continue
		}
		enqueued++
	}

	w.log.Info().
		Int("overdue", len(overdue)).
		Int("enqueued", enqueued).
		Msg("Reminder scan complete")
}

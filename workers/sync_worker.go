// workers/sync_worker.go - Mirrors outbox events into the search index
package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/metrics"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/search"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultInterval      = time.Second
	defaultRetryInterval = 30 * time.Second
	defaultBatchSize     = 100
	retryBatchSize       = 50

	// MaxAttempts bounds how often a dead letter is replayed.
	MaxAttempts = 5
)

// Indexer applies document writes and reports per-action failures keyed by Action.EventID.
type Indexer interface {
	Apply(ctx context.Context, actions []search.Action) (map[uint]error, error)
}

type indexPreparer interface {
	EnsureIndices(ctx context.Context) error
}

type SyncWorker struct {
	DB            *gorm.DB
	Indexer       Indexer
	Interval      time.Duration
	RetryInterval time.Duration
	BatchSize     int
}

// Run polls the outbox until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context) {
	if p, ok := w.Indexer.(indexPreparer); ok {
		if err := p.EnsureIndices(ctx); err != nil {
			log.Printf("⚠️ ensure search indices: %v", err)
		}
	}

	interval := w.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🔄 Search sync worker started (every %s)", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Search sync worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ search sync error: %v", err)
			}
		}
	}
}

// ProcessOnce claims one batch of unprocessed events and mirrors it. Failed events
// become dead letters. It returns the number of events claimed.
func (w *SyncWorker) ProcessOnce(ctx context.Context) (int, error) {
	events, err := w.claimBatch(ctx)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	failures := make(map[uint]error)
	actions := make([]search.Action, 0, len(events))
	byID := make(map[uint]models.OutboxEvent, len(events))
	for _, e := range events {
		byID[e.ID] = e
		action, err := w.buildAction(ctx, e.ID, e.Aggregate, e.AggregateID, e.Operation)
		if err != nil {
			failures[e.ID] = err
			continue
		}
		actions = append(actions, action)
	}

	w.apply(ctx, actions, failures)

	for id, ferr := range failures {
		e := byID[id]
		w.putDeadLetter(ctx, e, ferr)
	}
	metrics.SearchSync.WithLabelValues("ok").Add(float64(len(events) - len(failures)))
	metrics.SearchSync.WithLabelValues("failed").Add(float64(len(failures)))
	return len(events), nil
}

func (w *SyncWorker) apply(ctx context.Context, actions []search.Action, failures map[uint]error) {
	if len(actions) == 0 {
		return
	}
	applyFailures, err := w.Indexer.Apply(ctx, actions)
	for id, ferr := range applyFailures {
		failures[id] = ferr
	}
	if err != nil {
		// the whole flush failed; anything not already reported is unconfirmed
		for _, a := range actions {
			if _, ok := failures[a.EventID]; !ok {
				failures[a.EventID] = err
			}
		}
	}
}

// claimBatch marks the oldest unprocessed events as processed and returns them.
// On postgres concurrent workers skip each other's rows.
func (w *SyncWorker) claimBatch(ctx context.Context) ([]models.OutboxEvent, error) {
	limit := w.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}

	var events []models.OutboxEvent
	err := w.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("processed = ?", false).Order("id ASC").Limit(limit)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.Find(&events).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]uint, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		return tx.Model(&models.OutboxEvent{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"processed": true, "processed_at": time.Now().UTC()}).Error
	})
	return events, err
}

// buildAction reloads the aggregate so the index always receives its current state.
// An aggregate that no longer exists is removed from the index.
func (w *SyncWorker) buildAction(ctx context.Context, key uint, aggregate string, id uuid.UUID, op string) (search.Action, error) {
	index, ok := search.IndexFor(aggregate)
	if !ok {
		return search.Action{}, fmt.Errorf("unknown aggregate %q", aggregate)
	}
	action := search.Action{EventID: key, Op: search.ActionDelete, Index: index, ID: id.String()}
	if op == models.OutboxDelete {
		return action, nil
	}

	db := w.DB.WithContext(ctx)
	var body []byte
	var err error
	switch aggregate {
	case models.AggregateHackathon:
		var h models.Hackathon
		if err = db.First(&h, "id = ?", id).Error; err == nil {
			body, err = search.BuildHackathonDoc(&h)
		}
	case models.AggregateProject:
		var p models.Project
		if err = db.First(&p, "id = ?", id).Error; err == nil {
			body, err = search.BuildProjectDoc(&p)
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return action, nil
	}
	if err != nil {
		return search.Action{}, err
	}

	action.Op = search.ActionIndex
	action.Body = body
	return action, nil
}

func (w *SyncWorker) putDeadLetter(ctx context.Context, e models.OutboxEvent, cause error) {
	dl := models.DeadLetter{
		EventID:     e.ID,
		Aggregate:   e.Aggregate,
		AggregateID: e.AggregateID,
		Operation:   e.Operation,
		Error:       cause.Error(),
		Attempts:    1,
	}
	if err := w.DB.WithContext(ctx).Create(&dl).Error; err != nil {
		log.Printf("❌ Failed to insert dead letter for event %d: %v", e.ID, err)
		return
	}
	log.Printf("💀 Dead letter %d for %s %s (%s): %v", dl.ID, e.Aggregate, e.AggregateID, e.Operation, cause)
}

// ================== DEAD LETTER RETRY ==================

// RetryDeadLetters replays unresolved dead letters until ctx is cancelled.
func (w *SyncWorker) RetryDeadLetters(ctx context.Context) {
	interval := w.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RetryOnce(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ dead letter retry error: %v", err)
			}
		}
	}
}

// RetryOnce replays one batch of dead letters below MaxAttempts and returns how many resolved.
func (w *SyncWorker) RetryOnce(ctx context.Context) (int, error) {
	db := w.DB.WithContext(ctx)
	var letters []models.DeadLetter
	if err := db.Where("resolved = ? AND attempts < ?", false, MaxAttempts).
		Order("id ASC").
		Limit(retryBatchSize).
		Find(&letters).Error; err != nil {
		return 0, err
	}
	if len(letters) == 0 {
		return 0, nil
	}

	failures := make(map[uint]error)
	actions := make([]search.Action, 0, len(letters))
	for _, d := range letters {
		action, err := w.buildAction(ctx, d.ID, d.Aggregate, d.AggregateID, d.Operation)
		if err != nil {
			failures[d.ID] = err
			continue
		}
		actions = append(actions, action)
	}
	w.apply(ctx, actions, failures)

	resolved := 0
	for _, d := range letters {
		log.Printf("♻️ Retrying dead letter %d (%s %s, attempt %d)", d.ID, d.Aggregate, d.Operation, d.Attempts+1)
		if ferr, failed := failures[d.ID]; failed {
			attempts := d.Attempts + 1
			if err := db.Model(&models.DeadLetter{}).Where("id = ?", d.ID).Updates(map[string]any{
				"attempts": attempts,
				"error":    ferr.Error(),
			}).Error; err != nil {
				return resolved, err
			}
			if attempts >= MaxAttempts {
				log.Printf("💀 Dead letter %d gave up after %d attempts: %v", d.ID, attempts, ferr)
			}
			metrics.SearchSync.WithLabelValues("retry_failed").Inc()
			continue
		}

		if err := db.Model(&models.DeadLetter{}).Where("id = ?", d.ID).Updates(map[string]any{
			"attempts": d.Attempts + 1,
			"resolved": true,
		}).Error; err != nil {
			return resolved, err
		}
		resolved++
		metrics.SearchSync.WithLabelValues("retried").Inc()
		log.Printf("✅ Dead letter %d resolved", d.ID)
	}
	return resolved, nil
}

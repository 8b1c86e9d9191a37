// services/cleanup.go - Periodic pruning of bookkeeping rows
package services

import (
	"context"
	"log"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/metrics"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"gorm.io/gorm"
)

// CleanupService handles background cleanup tasks: processed outbox events, resolved
// dead letters and answered invitations older than the retention window are deleted.
type CleanupService struct {
	db        *gorm.DB
	now       func() time.Time
	retention time.Duration
}

func NewCleanupService(db *gorm.DB, now func() time.Time, retention time.Duration) *CleanupService {
	if now == nil {
		now = time.Now
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &CleanupService{db: db, now: now, retention: retention}
}

// CleanupResult counts the rows removed by one pass.
type CleanupResult struct {
	OutboxEvents int64 `json:"outboxEvents"`
	DeadLetters  int64 `json:"deadLetters"`
	Invitations  int64 `json:"invitations"`
}

// CleanupStats is a snapshot of the backlog the cleanup and sync workers look after.
type CleanupStats struct {
	PendingOutbox      int64 `json:"pendingOutbox"`
	ProcessedOutbox    int64 `json:"processedOutbox"`
	UnresolvedLetters  int64 `json:"unresolvedDeadLetters"`
	PendingInvitations int64 `json:"pendingInvitations"`
}

// Start runs a cleanup pass every interval until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🧹 Cleanup worker started (every %s, retention %s)", interval, s.retention)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ cleanup error: %v", err)
			}
		}
	}
}

// RunOnce deletes every expired row and reports how many went.
func (s *CleanupService) RunOnce(ctx context.Context) (*CleanupResult, error) {
	start := time.Now()
	cutoff := s.now().Add(-s.retention).UTC()
	db := s.db.WithContext(ctx)
	res := &CleanupResult{}

	q := db.Where("processed = ? AND processed_at < ?", true, cutoff).Delete(&models.OutboxEvent{})
	if q.Error != nil {
		return nil, q.Error
	}
	res.OutboxEvents = q.RowsAffected

	q = db.Where("resolved = ? AND updated_at < ?", true, cutoff).Delete(&models.DeadLetter{})
	if q.Error != nil {
		return nil, q.Error
	}
	res.DeadLetters = q.RowsAffected

	q = db.Where("status <> ? AND updated_at < ?", models.InvitationPending, cutoff).Delete(&models.TeamInvitation{})
	if q.Error != nil {
		return nil, q.Error
	}
	res.Invitations = q.RowsAffected

	metrics.RecordDBOperation("cleanup", start)
	if res.OutboxEvents+res.DeadLetters+res.Invitations > 0 {
		log.Printf("✅ Cleaned up %d outbox events, %d dead letters, %d invitations",
			res.OutboxEvents, res.DeadLetters, res.Invitations)
	}
	return res, nil
}

func (s *CleanupService) Stats(ctx context.Context) (*CleanupStats, error) {
	db := s.db.WithContext(ctx)
	stats := &CleanupStats{}
	counts := []struct {
		model any
		where string
		args  []any
		out   *int64
	}{
		{&models.OutboxEvent{}, "processed = ?", []any{false}, &stats.PendingOutbox},
		{&models.OutboxEvent{}, "processed = ?", []any{true}, &stats.ProcessedOutbox},
		{&models.DeadLetter{}, "resolved = ?", []any{false}, &stats.UnresolvedLetters},
		{&models.TeamInvitation{}, "status = ?", []any{models.InvitationPending}, &stats.PendingInvitations},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, c.args...).Count(c.out).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/database"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/search"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeIndexer struct {
	applied []search.Action
	failIDs map[string]bool
	err     error
}

func (f *fakeIndexer) Apply(_ context.Context, actions []search.Action) (map[uint]error, error) {
	f.applied = append(f.applied, actions...)
	failures := map[uint]error{}
	for _, a := range actions {
		if f.failIDs[a.ID] {
			failures[a.EventID] = errors.New("mapping rejected")
		}
	}
	return failures, f.err
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func seedHackathon(t *testing.T, db *gorm.DB, name string) *models.Hackathon {
	t.Helper()
	org := &models.User{Name: "Org", Email: uuid.NewString() + "@example.com", Password: "x", Role: models.RoleOrganizer}
	if err := db.Create(org).Error; err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h := &models.Hackathon{
		Name:                  name,
		Theme:                 "Climate",
		OrganizerID:           org.ID,
		RegistrationStartDate: now,
		RegistrationEndDate:   now.Add(24 * time.Hour),
		StartDate:             now.Add(48 * time.Hour),
		EndDate:               now.Add(72 * time.Hour),
	}
	if err := db.Create(h).Error; err != nil {
		t.Fatal(err)
	}
	return h
}

func outbox(t *testing.T, db *gorm.DB, aggregate string, id uuid.UUID, op string) {
	t.Helper()
	if err := db.Create(&models.OutboxEvent{Aggregate: aggregate, AggregateID: id, Operation: op}).Error; err != nil {
		t.Fatal(err)
	}
}

func TestProcessOnceIndexesCurrentState(t *testing.T) {
	db := newDB(t)
	h := seedHackathon(t, db, "Green Hack")
	gone := uuid.New()
	outbox(t, db, models.AggregateHackathon, h.ID, models.OutboxUpsert)
	outbox(t, db, models.AggregateProject, gone, models.OutboxDelete)
	outbox(t, db, models.AggregateProject, uuid.New(), models.OutboxUpsert)

	idx := &fakeIndexer{}
	w := &SyncWorker{DB: db, Indexer: idx}

	n, err := w.ProcessOnce(context.Background())
	if err != nil {
		t.Fatalf("ProcessOnce() error = %v", err)
	}
	if n != 3 || len(idx.applied) != 3 {
		t.Fatalf("claimed %d, applied %d; want 3 and 3", n, len(idx.applied))
	}

	first := idx.applied[0]
	if first.Op != search.ActionIndex || first.Index != search.HackathonIndex || first.ID != h.ID.String() {
		t.Fatalf("first action = %+v", first)
	}
	var doc search.HackathonDoc
	if err := json.Unmarshal(first.Body, &doc); err != nil || doc.Name != "Green Hack" {
		t.Fatalf("indexed doc = %+v, %v", doc, err)
	}
	if a := idx.applied[1]; a.Op != search.ActionDelete || a.ID != gone.String() || a.Index != search.ProjectIndex {
		t.Fatalf("delete action = %+v", a)
	}
	// a project deleted before the worker ran is dropped from the index
	if a := idx.applied[2]; a.Op != search.ActionDelete {
		t.Fatalf("missing project action = %+v, want delete", a)
	}

	var pending int64
	db.Model(&models.OutboxEvent{}).Where("processed = ?", false).Count(&pending)
	if pending != 0 {
		t.Fatalf("unprocessed events = %d, want 0", pending)
	}

	n, err = w.ProcessOnce(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second ProcessOnce() = %d, %v; want 0", n, err)
	}
}

func TestFailuresBecomeDeadLettersAndRetry(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	h := seedHackathon(t, db, "Flaky")
	outbox(t, db, models.AggregateHackathon, h.ID, models.OutboxUpsert)
	outbox(t, db, "team", uuid.New(), models.OutboxUpsert)

	idx := &fakeIndexer{failIDs: map[string]bool{h.ID.String(): true}}
	w := &SyncWorker{DB: db, Indexer: idx, BatchSize: 10}

	if _, err := w.ProcessOnce(ctx); err != nil {
		t.Fatal(err)
	}
	var letters []models.DeadLetter
	db.Order("id ASC").Find(&letters)
	if len(letters) != 2 {
		t.Fatalf("dead letters = %d, want 2", len(letters))
	}
	if letters[0].Attempts != 1 || letters[0].Error == "" {
		t.Fatalf("dead letter = %+v", letters[0])
	}

	// the index recovers; the unknown aggregate never will
	idx.failIDs = nil
	resolved, err := w.RetryOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != 1 {
		t.Fatalf("resolved = %d, want 1", resolved)
	}

	for i := 0; i < MaxAttempts; i++ {
		if _, err := w.RetryOnce(ctx); err != nil {
			t.Fatal(err)
		}
	}
	var stuck models.DeadLetter
	db.Where("aggregate = ?", "team").First(&stuck)
	if stuck.Resolved || stuck.Attempts != MaxAttempts {
		t.Fatalf("unknown aggregate letter = %+v, want %d attempts unresolved", stuck, MaxAttempts)
	}
}

func TestFlushErrorFailsWholeBatch(t *testing.T) {
	db := newDB(t)
	h := seedHackathon(t, db, "Down")
	outbox(t, db, models.AggregateHackathon, h.ID, models.OutboxUpsert)
	outbox(t, db, models.AggregateHackathon, h.ID, models.OutboxDelete)

	w := &SyncWorker{DB: db, Indexer: &fakeIndexer{err: errors.New("connection refused")}}
	if _, err := w.ProcessOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	var count int64
	db.Model(&models.DeadLetter{}).Count(&count)
	if count != 2 {
		t.Fatalf("dead letters = %d, want 2", count)
	}
}

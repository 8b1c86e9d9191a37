// models/outbox.go
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AggregateHackathon = "hackathon"
	AggregateProject   = "project"

	OutboxUpsert = "upsert"
	OutboxDelete = "delete"
)

// OutboxEvent records a change that must be mirrored into the search index.
// Rows are written in the same transaction as the change itself; the worker
// reloads the current row when it processes the event.
type OutboxEvent struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Aggregate   string     `json:"aggregate" gorm:"size:32;not null"`
	AggregateID uuid.UUID  `json:"aggregateId" gorm:"type:uuid;not null;index"`
	Operation   string     `json:"operation" gorm:"size:16;not null"`
	Processed   bool       `json:"processed" gorm:"not null;default:false;index"`
	CreatedAt   time.Time  `json:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

type DeadLetter struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID     uint      `json:"eventId" gorm:"not null;index"`
	Aggregate   string    `json:"aggregate" gorm:"size:32;not null"`
	AggregateID uuid.UUID `json:"aggregateId" gorm:"type:uuid;not null"`
	Operation   string    `json:"operation" gorm:"size:16;not null"`
	Error       string    `json:"error" gorm:"type:text"`
	Attempts    int       `json:"attempts" gorm:"not null;default:0"`
	Resolved    bool      `json:"resolved" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (DeadLetter) TableName() string {
	return "dead_letters"
}

// services/outbox.go - Search sync bookkeeping written alongside domain changes
package services

import (
	"fmt"

	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recordChange must be called with the transaction that performs the change.
func recordChange(tx *gorm.DB, aggregate string, id uuid.UUID, op string) error {
	event := models.OutboxEvent{
		Aggregate:   aggregate,
		AggregateID: id,
		Operation:   op,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("record %s %s outbox event: %w", aggregate, op, err)
	}
	return nil
}

func recordChanges(tx *gorm.DB, aggregate string, ids []uuid.UUID, op string) error {
	for _, id := range ids {
		if err := recordChange(tx, aggregate, id, op); err != nil {
			return err
		}
	}
	return nil
}

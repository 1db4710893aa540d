package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeBatchCreated       = "batch.created"
	EventTypeBatchItemsAdded    = "batch.items_added"
	EventTypeBatchStatusChanged = "batch.status_changed"
	EventTypeBatchDeleted       = "batch.deleted"
)

var BatchEventTypes = []string{
	EventTypeBatchCreated,
	EventTypeBatchItemsAdded,
	EventTypeBatchStatusChanged,
	EventTypeBatchDeleted,
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type BatchCreatedEvent struct {
	BaseEvent
	BatchID   int64  `json:"batch_id"`
	BatchKey  string `json:"batch_key"`
	CreatedBy int64  `json:"created_by"`
}

func NewBatchCreatedEvent(batchID int64, batchKey string, createdBy int64) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseEvent: newBase(EventTypeBatchCreated, map[string]interface{}{
			"batch_id":   batchID,
			"batch_key":  batchKey,
			"created_by": createdBy,
		}),
		BatchID:   batchID,
		BatchKey:  batchKey,
		CreatedBy: createdBy,
	}
}

type BatchItemsAddedEvent struct {
	BaseEvent
	BatchID    int64  `json:"batch_id"`
	BatchKey   string `json:"batch_key"`
	ItemsAdded int    `json:"items_added"`
	ItemCount  int    `json:"item_count"`
	AddedBy    int64  `json:"added_by"`
}

func NewBatchItemsAddedEvent(batchID int64, batchKey string, added, total int, addedBy int64) *BatchItemsAddedEvent {
	return &BatchItemsAddedEvent{
		BaseEvent: newBase(EventTypeBatchItemsAdded, map[string]interface{}{
			"batch_id":    batchID,
			"batch_key":   batchKey,
			"items_added": added,
			"item_count":  total,
			"added_by":    addedBy,
		}),
		BatchID:    batchID,
		BatchKey:   batchKey,
		ItemsAdded: added,
		ItemCount:  total,
		AddedBy:    addedBy,
	}
}

type BatchStatusChangedEvent struct {
	BaseEvent
	BatchID   int64  `json:"batch_id"`
	BatchKey  string `json:"batch_key"`
	From      string `json:"from"`
	To        string `json:"to"`
	ChangedBy int64  `json:"changed_by"`
}

func NewBatchStatusChangedEvent(batchID int64, batchKey, from, to string, changedBy int64) *BatchStatusChangedEvent {
	return &BatchStatusChangedEvent{
		BaseEvent: newBase(EventTypeBatchStatusChanged, map[string]interface{}{
			"batch_id":   batchID,
			"batch_key":  batchKey,
			"from":       from,
			"to":         to,
			"changed_by": changedBy,
		}),
		BatchID:   batchID,
		BatchKey:  batchKey,
		From:      from,
		To:        to,
		ChangedBy: changedBy,
	}
}

type BatchDeletedEvent struct {
	BaseEvent
	BatchID   int64  `json:"batch_id"`
	BatchKey  string `json:"batch_key"`
	DeletedBy int64  `json:"deleted_by"`
}

func NewBatchDeletedEvent(batchID int64, batchKey string, deletedBy int64) *BatchDeletedEvent {
	return &BatchDeletedEvent{
		BaseEvent: newBase(EventTypeBatchDeleted, map[string]interface{}{
			"batch_id":   batchID,
			"batch_key":  batchKey,
			"deleted_by": deletedBy,
		}),
		BatchID:   batchID,
		BatchKey:  batchKey,
		DeletedBy: deletedBy,
	}
}

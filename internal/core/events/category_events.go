package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCategoryCreated            = "category.created"
	EventTypeCategoryUpdated            = "category.updated"
	EventTypeCategoryWeightsRebalanced  = "category.weights_rebalanced"
	EventTypeCategoryDeactivated        = "category.deactivated"
	EventTypeCategoryCascadeDeactivated = "category.cascade_deactivated"
	EventTypeCategoryReactivated        = "category.reactivated"
	EventTypeCategoryDeleted            = "category.deleted"
)

// CategoryEventTypes lists every lifecycle event emitted by the category service.
var CategoryEventTypes = []string{
	EventTypeCategoryCreated,
	EventTypeCategoryUpdated,
	EventTypeCategoryWeightsRebalanced,
	EventTypeCategoryDeactivated,
	EventTypeCategoryCascadeDeactivated,
	EventTypeCategoryReactivated,
	EventTypeCategoryDeleted,
}

type CategoryEvent struct {
	BaseEvent
	CategoryIDs []int64 `json:"category_ids"`
}

func NewCategoryEvent(eventType string, categoryIDs []int64, data map[string]interface{}) *CategoryEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["category_ids"] = categoryIDs

	return &CategoryEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		CategoryIDs: categoryIDs,
	}
}

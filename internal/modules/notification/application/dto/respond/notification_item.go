package respond

import (
	"time"

	"NotifyLink/internal/modules/notification/domain/entity"
)

// NotificationItem 通知的对外结构，HTTP 与 WebSocket 共用
type NotificationItem struct {
	Id         int64                   `json:"id"`
	Type       entity.NotificationType `json:"type"`
	EntityType entity.EntityType       `json:"entity_type"`
	EntityId   int64                   `json:"entity_id"`
	Message    string                  `json:"message"`
	IsRead     bool                    `json:"is_read"`
	CreatedAt  string                  `json:"created_at"`
}

func NewNotificationItem(n *entity.Notification) NotificationItem {
	return NotificationItem{
		Id:         n.Id,
		Type:       n.Type,
		EntityType: n.EntityType,
		EntityId:   n.EntityId,
		Message:    n.Message,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type UnreadCountRespond struct {
	Count int64 `json:"count"`
}

type MarkAllReadRespond struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

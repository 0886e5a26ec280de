package repository

import (
	"context"

	"NotifyLink/internal/modules/notification/domain/entity"
)

// NotificationRepository 通知存储。除 Create 外，所有读写都以接收者 ID 限定范围
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// ListByRecipient 按 created_at、id 倒序返回
	ListByRecipient(ctx context.Context, recipientID string) ([]entity.Notification, error)
	// GetByIDAndRecipient 记录不存在或不属于该接收者时返回 gorm.ErrRecordNotFound
	GetByIDAndRecipient(ctx context.Context, id int64, recipientID string) (*entity.Notification, error)
	MarkRead(ctx context.Context, id int64, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	DeleteByIDAndRecipient(ctx context.Context, id int64, recipientID string) (int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

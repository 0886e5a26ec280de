package entity

import "time"

// Notification 站内通知。创建后只有 IsRead 可变，RecipientId 永不改变
type Notification struct {
	Id          int64            `gorm:"column:id;primaryKey;autoIncrement"`
	RecipientId string           `gorm:"column:recipient_id;type:varchar(64);not null;index:idx_notification_recipient_created,priority:1"`
	SenderId    *string          `gorm:"column:sender_id;type:varchar(64)"`
	Type        NotificationType `gorm:"column:type;type:varchar(20);not null"`
	EntityType  EntityType       `gorm:"column:entity_type;type:varchar(20);not null"`
	EntityId    int64            `gorm:"column:entity_id;not null"`
	Message     string           `gorm:"column:message;type:text;not null"`
	IsRead      bool             `gorm:"column:is_read;not null;default:false"`
	CreatedAt   time.Time        `gorm:"column:created_at;not null;index:idx_notification_recipient_created,priority:2"`
}

func (Notification) TableName() string {
	return "notification"
}

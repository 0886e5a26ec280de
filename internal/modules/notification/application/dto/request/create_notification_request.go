package request

// CreateNotificationRequest 内容域提交的通知创建请求，Kafka 消息与内部 HTTP 接口共用
type CreateNotificationRequest struct {
	RecipientId string  `json:"recipient_id" validate:"required,max=64"`
	SenderId    *string `json:"sender_id,omitempty" validate:"omitempty,max=64"`
	Type        string  `json:"type" validate:"required"`
	EntityType  string  `json:"entity_type" validate:"required"`
	EntityId    int64   `json:"entity_id"`
	Message     string  `json:"message" validate:"required"`
}

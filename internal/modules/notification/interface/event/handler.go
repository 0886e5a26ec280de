package event

import (
	"context"
	"encoding/json"
	"errors"

	"NotifyLink/internal/modules/notification/application/dto/request"
	"NotifyLink/internal/modules/notification/application/service"
	"NotifyLink/internal/modules/notification/infrastructure/mq"
	"NotifyLink/pkg/validate"
	"NotifyLink/pkg/xerr"
	"NotifyLink/pkg/zlog"

	"go.uber.org/zap"
)

// NotificationEventHandler 消费内容域（评论、评分、点赞）投递的通知事件
type NotificationEventHandler struct {
	svc      service.NotificationService
	dlq      mq.Publisher
	dlqTopic string
}

func NewNotificationEventHandler(svc service.NotificationService, dlq mq.Publisher, dlqTopic string) *NotificationEventHandler {
	return &NotificationEventHandler{svc: svc, dlq: dlq, dlqTopic: dlqTopic}
}

func (h *NotificationEventHandler) Handle(ctx context.Context, msg mq.Message) error {
	var req request.CreateNotificationRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return h.deadLetter(ctx, msg, err)
	}
	if err := validate.Struct(req); err != nil {
		return h.deadLetter(ctx, msg, err)
	}

	if _, err := h.svc.Create(ctx, req); err != nil {
		// 参数错误重试也不会成功，转入死信；存储错误交给 Kafka 重新投递
		if xerr.Is(err, xerr.BadRequest) {
			return h.deadLetter(ctx, msg, err)
		}
		return err
	}
	return nil
}

func (h *NotificationEventHandler) deadLetter(ctx context.Context, msg mq.Message, cause error) error {
	zlog.Warn("notification event rejected",
		zap.String("topic", msg.Topic),
		zap.ByteString("key", msg.Key),
		zap.Error(cause))

	if h.dlq == nil || h.dlqTopic == "" {
		return nil
	}

	if _, err := h.dlq.Publish(ctx, msg.DeadLetter(h.dlqTopic, cause)); err != nil {
		return errors.Join(cause, err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"NotifyLink/internal/modules/notification/application/dto/request"
	"NotifyLink/internal/modules/notification/application/dto/respond"
	"NotifyLink/internal/modules/notification/domain/entity"
	"NotifyLink/internal/modules/notification/domain/repository"
	"NotifyLink/pkg/xerr"
	"NotifyLink/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pusher 实时推送通道，接收者不在线时返回 false
type Pusher interface {
	PushTo(recipientID string, item *respond.NotificationItem) bool
}

type NotificationService interface {
	Create(ctx context.Context, req request.CreateNotificationRequest) (*respond.NotificationItem, error)
	ListForRecipient(ctx context.Context, recipientID string) ([]respond.NotificationItem, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, id int64, recipientID string) (*respond.NotificationItem, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (*respond.MarkAllReadRespond, error)
	Delete(ctx context.Context, id int64, recipientID string) error
}

type notificationServiceImpl struct {
	repo   repository.NotificationRepository
	pusher Pusher
	now    func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, pusher Pusher) NotificationService {
	return &notificationServiceImpl{
		repo:   repo,
		pusher: pusher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationServiceImpl) Create(ctx context.Context, req request.CreateNotificationRequest) (*respond.NotificationItem, error) {
	recipientID := strings.TrimSpace(req.RecipientId)
	if recipientID == "" {
		return nil, xerr.New(xerr.BadRequest, "recipient_id is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, xerr.New(xerr.BadRequest, "message is required")
	}
	typ, err := entity.ParseNotificationType(req.Type)
	if err != nil {
		return nil, xerr.New(xerr.BadRequest, err.Error())
	}
	entityType, err := entity.ParseEntityType(req.EntityType)
	if err != nil {
		return nil, xerr.New(xerr.BadRequest, err.Error())
	}

	var senderID *string
	if req.SenderId != nil && strings.TrimSpace(*req.SenderId) != "" {
		v := strings.TrimSpace(*req.SenderId)
		senderID = &v
	}

	n := &entity.Notification{
		RecipientId: recipientID,
		SenderId:    senderID,
		Type:        typ,
		EntityType:  entityType,
		EntityId:    req.EntityId,
		Message:     req.Message,
		IsRead:      false,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		zlog.Error("create notification failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	item := respond.NewNotificationItem(n)
	// 推送结果不影响创建结果，离线用户下次拉取时可见
	if s.pusher != nil {
		delivered := s.pusher.PushTo(recipientID, &item)
		zlog.Debug("notification created",
			zap.Int64("id", n.Id),
			zap.String("recipient_id", recipientID),
			zap.Bool("delivered", delivered))
	}
	return &item, nil
}

func (s *notificationServiceImpl) ListForRecipient(ctx context.Context, recipientID string) ([]respond.NotificationItem, error) {
	if recipientID == "" {
		return nil, xerr.New(xerr.Unauthorized, "missing subject")
	}
	list, err := s.repo.ListByRecipient(ctx, recipientID)
	if err != nil {
		zlog.Error("list notifications failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := make([]respond.NotificationItem, 0, len(list))
	for i := range list {
		out = append(out, respond.NewNotificationItem(&list[i]))
	}
	return out, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	if recipientID == "" {
		return 0, xerr.New(xerr.Unauthorized, "missing subject")
	}
	n, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		zlog.Error("count unread failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, xerr.ErrServerError
	}
	return n, nil
}

func (s *notificationServiceImpl) MarkAsRead(ctx context.Context, id int64, recipientID string) (*respond.NotificationItem, error) {
	n, err := s.loadScoped(ctx, id, recipientID)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		if err := s.repo.MarkRead(ctx, n.Id, recipientID); err != nil {
			zlog.Error("mark notification read failed", zap.Int64("id", id), zap.Error(err))
			return nil, xerr.ErrServerError
		}
		n.IsRead = true
	}
	item := respond.NewNotificationItem(n)
	return &item, nil
}

func (s *notificationServiceImpl) MarkAllAsRead(ctx context.Context, recipientID string) (*respond.MarkAllReadRespond, error) {
	if recipientID == "" {
		return nil, xerr.New(xerr.Unauthorized, "missing subject")
	}
	updated, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		zlog.Error("mark all notifications read failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.MarkAllReadRespond{
		Message: "all notifications marked as read",
		Updated: updated,
	}, nil
}

func (s *notificationServiceImpl) Delete(ctx context.Context, id int64, recipientID string) error {
	if id <= 0 {
		return xerr.New(xerr.BadRequest, "invalid notification id")
	}
	if recipientID == "" {
		return xerr.ErrNotFound
	}
	affected, err := s.repo.DeleteByIDAndRecipient(ctx, id, recipientID)
	if err != nil {
		zlog.Error("delete notification failed", zap.Int64("id", id), zap.Error(err))
		return xerr.ErrServerError
	}
	if affected == 0 {
		return xerr.ErrNotFound
	}
	return nil
}

// loadScoped 不存在与不属于调用者统一返回 NotFound
func (s *notificationServiceImpl) loadScoped(ctx context.Context, id int64, recipientID string) (*entity.Notification, error) {
	if id <= 0 {
		return nil, xerr.New(xerr.BadRequest, "invalid notification id")
	}
	if recipientID == "" {
		return nil, xerr.ErrNotFound
	}
	n, err := s.repo.GetByIDAndRecipient(ctx, id, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrNotFound
		}
		zlog.Error("load notification failed", zap.Int64("id", id), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return n, nil
}

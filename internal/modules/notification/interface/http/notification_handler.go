package handler

import (
	"strconv"

	"NotifyLink/internal/middleware/jwt"
	"NotifyLink/internal/modules/notification/application/dto/request"
	"NotifyLink/internal/modules/notification/application/service"
	"NotifyLink/pkg/back"
	"NotifyLink/pkg/validate"
	"NotifyLink/pkg/xerr"
	"NotifyLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(c *gin.Context) {
	data, err := h.svc.ListForRecipient(c.Request.Context(), c.GetString(jwt.CtxUUID))
	back.Result(c, data, err)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), c.GetString(jwt.CtxUUID))
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Success(c, gin.H{"count": n})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	data, err := h.svc.MarkAsRead(c.Request.Context(), id, c.GetString(jwt.CtxUUID))
	back.Result(c, data, err)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	data, err := h.svc.MarkAllAsRead(c.Request.Context(), c.GetString(jwt.CtxUUID))
	back.Result(c, data, err)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := h.svc.Delete(c.Request.Context(), id, c.GetString(jwt.CtxUUID))
	back.Result(c, nil, err)
}

// Create 内部接口，供内容服务同步创建通知
func (h *NotificationHandler) Create(c *gin.Context) {
	var req request.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind create notification request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if err := validate.Struct(req); err != nil {
		back.Error(c, xerr.BadRequest, err.Error())
		return
	}
	data, err := h.svc.Create(c.Request.Context(), req)
	back.Result(c, data, err)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		back.Error(c, xerr.BadRequest, "invalid notification id")
		return 0, false
	}
	return id, true
}

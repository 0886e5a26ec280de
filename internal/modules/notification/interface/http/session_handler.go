package handler

import (
	"context"

	"NotifyLink/internal/middleware/jwt"
	"NotifyLink/pkg/back"
	"NotifyLink/pkg/util/myjwt"
	"NotifyLink/pkg/ws"
	"NotifyLink/pkg/xerr"
	"NotifyLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// TokenRevoker 令牌注销
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *myjwt.CustomClaims) error
}

type SessionHandler struct {
	revoker TokenRevoker
	hub     *ws.Hub
}

func NewSessionHandler(revoker TokenRevoker, hub *ws.Hub) *SessionHandler {
	return &SessionHandler{revoker: revoker, hub: hub}
}

// Logout 注销当前令牌，并断开该用户的推送通道
func (h *SessionHandler) Logout(c *gin.Context) {
	claims, _ := c.Get(jwt.CtxClaims)
	cc, ok := claims.(*myjwt.CustomClaims)
	if !ok || cc == nil {
		back.Error(c, xerr.Unauthorized, "invalid token")
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), cc); err != nil {
		zlog.Error("revoke token failed", zap.String("subject_id", cc.SubjectID()), zap.Error(err))
		back.Result(c, nil, xerr.ErrServerError)
		return
	}

	if h.hub != nil {
		if client, ok := h.hub.Lookup(cc.SubjectID()); ok {
			client.CloseWith(websocket.CloseNormalClosure, "logged out")
		}
	}
	back.Success(c, gin.H{"message": "logged out"})
}

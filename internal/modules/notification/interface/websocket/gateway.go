package websocket

import (
	"NotifyLink/internal/modules/notification/application/dto/respond"
	"NotifyLink/pkg/ws"
)

// Gateway 定向推送：按主体查在线表，在线则写入其通道
type Gateway struct {
	hub *ws.Hub
}

func NewGateway(hub *ws.Hub) *Gateway {
	return &Gateway{hub: hub}
}

func (g *Gateway) PushTo(recipientID string, item *respond.NotificationItem) bool {
	if g == nil || g.hub == nil || item == nil {
		return false
	}
	return g.hub.Emit(recipientID, EventNewNotification, item)
}

package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"NotifyLink/internal/modules/notification/application/service"
	"NotifyLink/pkg/util/myjwt"
	"NotifyLink/pkg/ws"
	"NotifyLink/pkg/xerr"
	"NotifyLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var errHandshakeTimeout = errors.New("handshake timed out")

// IdentityVerifier 校验 bearer 凭证
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*myjwt.CustomClaims, error)
}

type WsHandler struct {
	hub              *ws.Hub
	svc              service.NotificationService
	verifier         IdentityVerifier
	clientOpts       ws.Options
	handshakeTimeout time.Duration
	upgrader         websocket.Upgrader
}

func NewWsHandler(hub *ws.Hub, svc service.NotificationService, verifier IdentityVerifier, clientOpts ws.Options, handshakeTimeout time.Duration) *WsHandler {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	return &WsHandler{
		hub:              hub,
		svc:              svc,
		verifier:         verifier,
		clientOpts:       clientOpts,
		handshakeTimeout: handshakeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: handshakeTimeout,
			Subprotocols:     []string{bearerSubprotocol},
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Connect 通道生命周期：Connecting -> Authenticated -> Registered -> Closed
func (h *WsHandler) Connect(c *gin.Context) {
	params := ParseConnectParams(c.Request)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	client := ws.NewClient(conn, h.clientOpts)

	claims, err := h.authenticate(params.Token)
	if err != nil {
		zlog.Info("ws handshake rejected",
			zap.String("conn_id", client.ID()),
			zap.String("token_source", params.Source),
			zap.Error(err))
		_ = client.WriteDirect(EventAuthError, ws.ErrorPayload{Code: xerr.Unauthorized, Message: authErrorMessage(err)})
		client.CloseWith(websocket.ClosePolicyViolation, "unauthorized")
		return
	}

	// 后续注销只能使用握手时确定的主体
	subjectID := claims.SubjectID()

	go client.WritePump()

	if prev := h.hub.Register(subjectID, client); prev != nil {
		zlog.Info("ws channel superseded",
			zap.String("subject_id", subjectID),
			zap.String("old_conn_id", prev.ID()),
			zap.String("conn_id", client.ID()))
	}
	zlog.Info("ws channel registered", zap.String("subject_id", subjectID), zap.String("conn_id", client.ID()))

	defer func() {
		removed := h.hub.Unregister(subjectID, client)
		client.Close()
		zlog.Info("ws channel closed",
			zap.String("subject_id", subjectID),
			zap.String("conn_id", client.ID()),
			zap.Bool("unregistered", removed))
	}()

	h.sendList(client, subjectID)

	err = client.ReadPump(func(msg ws.Inbound) {
		h.dispatch(client, subjectID, msg)
	})
	if err != nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		zlog.Warn("ws read failed", zap.String("conn_id", client.ID()), zap.Error(err))
	}
}

// authenticate 凭证校验可能涉及 I/O，超过握手时限直接失败
func (h *WsHandler) authenticate(token string) (*myjwt.CustomClaims, error) {
	if token == "" {
		return nil, myjwt.ErrMissingToken
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.handshakeTimeout)
	defer cancel()

	type result struct {
		claims *myjwt.CustomClaims
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		claims, err := h.verifier.Verify(ctx, token)
		ch <- result{claims: claims, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if r.claims.SubjectID() == "" {
			return nil, myjwt.ErrMissingSubject
		}
		return r.claims, nil
	case <-ctx.Done():
		return nil, errHandshakeTimeout
	}
}

func (h *WsHandler) dispatch(client *ws.Client, subjectID string, msg ws.Inbound) {
	if !client.Allow() {
		h.emitError(client, xerr.TooManyRequests, "too many requests")
		return
	}

	switch msg.Event {
	case EventGetNotifications:
		h.sendList(client, subjectID)
	case EventRefreshIdentity:
		h.refreshIdentity(client, subjectID, msg.Data)
	default:
		h.emitError(client, xerr.BadRequest, "unknown event")
	}
}

// refreshIdentity 已建立的通道上重新校验凭证，失败只回错误事件，不改动在线表
func (h *WsHandler) refreshIdentity(client *ws.Client, subjectID string, data json.RawMessage) {
	var p refreshIdentityPayload
	if len(data) == 0 || json.Unmarshal(data, &p) != nil {
		h.emitError(client, xerr.BadRequest, "invalid refreshIdentity payload")
		return
	}
	claims, err := h.authenticate(p.Token)
	if err != nil {
		h.emitError(client, xerr.Unauthorized, authErrorMessage(err))
		return
	}
	if claims.SubjectID() != subjectID {
		h.emitError(client, xerr.Forbidden, "token subject does not match channel")
		return
	}
	zlog.Debug("ws identity refreshed", zap.String("subject_id", subjectID), zap.String("conn_id", client.ID()))
}

func (h *WsHandler) sendList(client *ws.Client, subjectID string) {
	items, err := h.svc.ListForRecipient(context.Background(), subjectID)
	if err != nil {
		e := xerr.From(err)
		h.emitError(client, e.Code, e.Message)
		return
	}
	if err := client.Emit(EventNotificationsList, items); err != nil {
		zlog.Warn("ws emit notifications list failed", zap.String("conn_id", client.ID()), zap.Error(err))
	}
}

func (h *WsHandler) emitError(client *ws.Client, code int, message string) {
	if err := client.Emit(EventNotificationsError, ws.ErrorPayload{Code: code, Message: message}); err != nil {
		zlog.Warn("ws emit error event failed", zap.String("conn_id", client.ID()), zap.Error(err))
	}
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, myjwt.ErrMissingToken):
		return "missing credential"
	case errors.Is(err, myjwt.ErrMissingSubject):
		return "credential has no subject"
	case errors.Is(err, myjwt.ErrRevokedToken):
		return "credential revoked"
	case errors.Is(err, errHandshakeTimeout):
		return "authentication timed out"
	default:
		return "invalid credential"
	}
}

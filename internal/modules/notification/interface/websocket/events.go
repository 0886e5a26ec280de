package websocket

// 服务端 -> 客户端
const (
	EventNotificationsList  = "notificationsList"
	EventNewNotification    = "newNotification"
	EventAuthError          = "authError"
	EventNotificationsError = "notificationsError"
)

// 客户端 -> 服务端
const (
	EventGetNotifications = "getNotifications"
	EventRefreshIdentity  = "refreshIdentity"
)

type refreshIdentityPayload struct {
	Token string `json:"token"`
}

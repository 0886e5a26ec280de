package websocket

import (
	"net/http"
	"strings"
)

const bearerSubprotocol = "bearer"

// ConnectParams 建连时随握手携带的参数，凭证不走业务消息
type ConnectParams struct {
	Token  string
	Source string
}

// ParseConnectParams 依次从 Authorization 头、Sec-WebSocket-Protocol（bearer, <token>）和 ?token= 中取凭证。
// 浏览器原生 WebSocket 不能自定义请求头，所以保留后两种方式
func ParseConnectParams(r *http.Request) ConnectParams {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return ConnectParams{Token: t, Source: "header"}
		}
	}

	protocols := splitProtocols(r.Header.Values("Sec-WebSocket-Protocol"))
	for i := 0; i+1 < len(protocols); i++ {
		if strings.EqualFold(protocols[i], bearerSubprotocol) && protocols[i+1] != "" {
			return ConnectParams{Token: protocols[i+1], Source: "subprotocol"}
		}
	}

	if t := strings.TrimSpace(r.URL.Query().Get("token")); t != "" {
		return ConnectParams{Token: t, Source: "query"}
	}
	return ConnectParams{}
}

func splitProtocols(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

package ws

import "encoding/json"

// Event 服务端下发的事件信封
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Inbound 客户端上行的事件信封，Data 由具体事件自行解析
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload 错误事件的负载
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func Marshal(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Event{Event: event, Data: data})
}

package mq

import "context"

// 死信消息附带的头
const (
	HeaderOriginTopic = "x-origin-topic"
	HeaderError       = "x-error"
)

// Message 与具体消息队列无关的消息，Key 为接收者 ID
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// DeadLetter 拷贝原消息并附上来源主题和失败原因
func (m Message) DeadLetter(topic string, cause error) Message {
	headers := make(map[string]string, len(m.Headers)+2)
	for k, v := range m.Headers {
		headers[k] = v
	}
	headers[HeaderOriginTopic] = m.Topic
	if cause != nil {
		headers[HeaderError] = cause.Error()
	}
	return Message{Topic: topic, Key: m.Key, Value: m.Value, Headers: headers}
}

type PublishResult struct {
	Partition int32
	Offset    int64
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) (PublishResult, error)
	Close() error
}

// Handler 返回 nil 时消息被确认，否则原地重试
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

type Consumer interface {
	Run(ctx context.Context, handler Handler) error
	Close() error
}

package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"NotifyLink/pkg/util"
	"NotifyLink/pkg/zlog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrClientClosed = errors.New("ws client closed")
	ErrSendBufFull  = errors.New("ws client send buffer full")
)

type Options struct {
	SendBufferSize int
	WriteWait      time.Duration
	PongWait       time.Duration
	ReadLimit      int64
	// 上行消息限流，Rate 为 0 表示不限流
	Rate  rate.Limit
	Burst int
}

func (o Options) withDefaults() Options {
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = 64
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 16
	}
	if o.Rate > 0 && o.Burst <= 0 {
		o.Burst = 1
	}
	return o
}

// Client 一条活跃的 WebSocket 连接，即在线表中的通道句柄
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	limiter *rate.Limiter
	opts    Options

	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, opts Options) *Client {
	opts = opts.withDefaults()
	c := &Client{
		id:   util.GenerateConnID(),
		conn: conn,
		send: make(chan []byte, opts.SendBufferSize),
		done: make(chan struct{}),
		opts: opts,
	}
	if opts.Rate > 0 {
		c.limiter = rate.NewLimiter(opts.Rate, opts.Burst)
	}
	return c
}

func (c *Client) ID() string {
	return c.id
}

// Done 连接关闭后被关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Allow 上行消息限流
func (c *Client) Allow() bool {
	if c.limiter == nil {
		return true
	}
	return c.limiter.Allow()
}

// Send 将数据放入发送队列，不阻塞
func (c *Client) Send(payload []byte) error {
	if c.Closed() {
		return ErrClientClosed
	}
	select {
	case <-c.done:
		return ErrClientClosed
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufFull
	}
}

func (c *Client) Emit(event string, data interface{}) error {
	b, err := Marshal(event, data)
	if err != nil {
		return err
	}
	return c.Send(b)
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// CloseWith 先发送关闭帧再断开连接
func (c *Client) CloseWith(code int, text string) {
	if c.conn != nil && !c.Closed() {
		msg := websocket.FormatCloseMessage(code, text)
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteWait))
	}
	c.Close()
}

// WriteDirect 在写协程启动前同步写出一个事件，仅用于握手阶段
func (c *Client) WriteDirect(event string, data interface{}) error {
	if c.conn == nil {
		return ErrClientClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
	return c.conn.WriteJSON(Event{Event: event, Data: data})
}

// WritePump 独占连接的写端，保证同一连接上的事件按入队顺序发出
func (c *Client) WritePump() {
	if c.conn == nil {
		return
	}
	ticker := time.NewTicker(c.opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zlog.Warn("ws write failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteWait)); err != nil {
				zlog.Warn("ws ping failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		}
	}
}

// ReadPump 阻塞读取上行消息并按顺序交给 handle，连接出错或关闭时返回
func (c *Client) ReadPump(handle func(msg Inbound)) error {
	if c.conn == nil {
		return ErrClientClosed
	}
	c.conn.SetReadLimit(c.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = Inbound{}
		}
		handle(msg)
	}
}

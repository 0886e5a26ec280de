package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"NotifyLink/internal/modules/notification/infrastructure/mq"
	"NotifyLink/pkg/zlog"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	ClientID string
	// 处理失败后的重试间隔，指数增长到 MaxRetryBackoff
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
}

type groupConsumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	backoff retryBackoff
}

func NewConsumer(cfg ConsumerConfig) (mq.Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers is empty")
	}
	groupID := strings.TrimSpace(cfg.GroupID)
	if groupID == "" {
		return nil, errors.New("kafka consumer group id is empty")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New("kafka topics is empty")
	}

	sc := newSaramaConfig(cfg.ClientID)
	// 新建的消费组从最早的位置开始，避免漏掉上线前积压的通知
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Group.Rebalance.Timeout = 30 * time.Second
	sc.Consumer.Group.Session.Timeout = 30 * time.Second

	group, err := sarama.NewConsumerGroup(cfg.Brokers, groupID, sc)
	if err != nil {
		return nil, err
	}
	return &groupConsumer{
		group:   group,
		topics:  cfg.Topics,
		backoff: newRetryBackoff(cfg.RetryBackoff, cfg.MaxRetryBackoff),
	}, nil
}

// Run 阻塞消费直到 ctx 结束或消费组关闭；每次再均衡后 Consume 返回，循环重新加入
func (c *groupConsumer) Run(ctx context.Context, handler mq.Handler) error {
	if handler == nil {
		return errors.New("handler is nil")
	}
	h := &claimHandler{handler: handler, backoff: c.backoff}

	for {
		if err := c.group.Consume(ctx, c.topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (c *groupConsumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type retryBackoff struct {
	initial time.Duration
	max     time.Duration
}

func newRetryBackoff(initial, limit time.Duration) retryBackoff {
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	if limit < initial {
		limit = 30 * time.Second
	}
	return retryBackoff{initial: initial, max: limit}
}

func (b retryBackoff) next(cur time.Duration) time.Duration {
	if cur <= 0 {
		return b.initial
	}
	if cur *= 2; cur > b.max {
		return b.max
	}
	return cur
}

type claimHandler struct {
	handler mq.Handler
	backoff retryBackoff
}

func (claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim 同一分区内按顺序处理；失败的消息原地重试，不提交其后的位点
func (h *claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-sess.Context().Done():
			return nil
		case m, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if !h.process(sess, m) {
				return nil
			}
			sess.MarkMessage(m, "")
		}
	}
}

// process 返回 false 表示会话已结束，消息留给下一个持有该分区的消费者
func (h *claimHandler) process(sess sarama.ConsumerGroupSession, m *sarama.ConsumerMessage) bool {
	msg := mq.Message{
		Topic:   m.Topic,
		Key:     m.Key,
		Value:   m.Value,
		Headers: fromRecordHeaders(m.Headers),
	}

	var wait time.Duration
	for attempt := 1; ; attempt++ {
		err := h.handler.Handle(sess.Context(), msg)
		if err == nil {
			return true
		}
		wait = h.backoff.next(wait)
		zlog.Warn("kafka message handle failed, retrying",
			zap.String("topic", m.Topic),
			zap.Int32("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-sess.Context().Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

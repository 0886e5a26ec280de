package initial

import (
	"context"
	"errors"
	"time"

	"NotifyLink/internal/config"
	"NotifyLink/internal/modules/notification/application/service"
	"NotifyLink/internal/modules/notification/infrastructure/mq"
	"NotifyLink/internal/modules/notification/infrastructure/mq/kafka"
	"NotifyLink/internal/modules/notification/interface/event"
	"NotifyLink/pkg/zlog"

	"go.uber.org/zap"
)

// Intake Kafka 通知事件接入，Close 释放消费者与死信生产者
type Intake struct {
	consumer mq.Consumer
	dlq      mq.Publisher
	done     chan struct{}
}

// StartNotificationIntake 未配置 brokers 时返回 nil，仅保留 HTTP 内部接口作为入口
func StartNotificationIntake(ctx context.Context, conf *config.Config, svc service.NotificationService) (*Intake, error) {
	kc := conf.KafkaConfig
	if len(kc.Brokers) == 0 {
		zlog.Info("kafka not configured, notification intake disabled")
		return nil, nil
	}

	// 死信保留更久，便于人工排查后重放
	if err := kafka.EnsureTopics(kc.Brokers, kc.ClientID,
		kafka.TopicSpec{Name: kc.EventTopic, Partitions: kc.Partitions, Replication: kc.Replication, Retention: 7 * 24 * time.Hour},
		kafka.TopicSpec{Name: kc.DeadLetterTopic, Partitions: 1, Replication: kc.Replication, Retention: 30 * 24 * time.Hour},
	); err != nil {
		zlog.Warn("kafka ensure topics failed", zap.Error(err))
	}

	dlq, err := kafka.NewPublisher(kafka.PublisherConfig{Brokers: kc.Brokers, ClientID: kc.ClientID})
	if err != nil {
		return nil, err
	}
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:  kc.Brokers,
		GroupID:  kc.ConsumerGroupID,
		Topics:   []string{kc.EventTopic},
		ClientID: kc.ClientID,
	})
	if err != nil {
		_ = dlq.Close()
		return nil, err
	}

	in := &Intake{consumer: consumer, dlq: dlq, done: make(chan struct{})}
	handler := event.NewNotificationEventHandler(svc, dlq, kc.DeadLetterTopic)
	go func() {
		defer close(in.done)
		for {
			err := consumer.Run(ctx, handler)
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}
			zlog.Error("kafka consumer stopped, restarting", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()
	zlog.Info("kafka notification intake started", zap.String("topic", kc.EventTopic), zap.String("group", kc.ConsumerGroupID))
	return in, nil
}

func (in *Intake) Close() error {
	if in == nil {
		return nil
	}
	err := in.consumer.Close()
	<-in.done
	return errors.Join(err, in.dlq.Close())
}

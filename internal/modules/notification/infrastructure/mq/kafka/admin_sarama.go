package kafka

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

const defaultRetention = 7 * 24 * time.Hour

// TopicSpec 需要预先存在的主题
type TopicSpec struct {
	Name        string
	Partitions  int32
	Replication int16
	Retention   time.Duration
}

func (s TopicSpec) detail() *sarama.TopicDetail {
	partitions, replication, retention := s.Partitions, s.Replication, s.Retention
	if partitions <= 0 {
		partitions = 1
	}
	if replication <= 0 {
		replication = 1
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	retentionMs := strconv.FormatInt(retention.Milliseconds(), 10)
	return &sarama.TopicDetail{
		NumPartitions:     partitions,
		ReplicationFactor: replication,
		ConfigEntries:     map[string]*string{"retention.ms": &retentionMs},
	}
}

// EnsureTopics 在同一个管理连接里补建缺失的主题，已存在的不做修改
func EnsureTopics(brokers []string, clientID string, specs ...TopicSpec) error {
	if len(brokers) == 0 {
		return errors.New("kafka brokers is empty")
	}

	admin, err := sarama.NewClusterAdmin(brokers, newSaramaConfig(clientID))
	if err != nil {
		return err
	}
	defer admin.Close()

	existing, err := admin.ListTopics()
	if err != nil {
		return err
	}

	var errs []error
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			continue
		}
		if _, ok := existing[name]; ok {
			continue
		}
		if err := admin.CreateTopic(name, spec.detail(), false); err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
			errs = append(errs, fmt.Errorf("create topic %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

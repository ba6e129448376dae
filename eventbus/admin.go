package eventbus

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// topicSpecs는 기본 토픽, 재시도 토픽, DLQ 토픽 사양을 만든다.
// DLQ 는 1 파티션, 재시도 토픽은 기본 토픽과 같은 파티션 수를 쓴다.
func topicSpecs(topic Topic, partitions int) []kafka.TopicSpecification {
	if partitions <= 0 {
		partitions = 1
	}
	specs := make([]kafka.TopicSpecification, 0, 2+len(RetryDelays))
	specs = append(specs,
		kafka.TopicSpecification{Topic: topic.Base(), NumPartitions: partitions, ReplicationFactor: 1},
		kafka.TopicSpecification{Topic: topic.DLQ(), NumPartitions: 1, ReplicationFactor: 1},
	)
	for _, name := range topic.RetryTopics() {
		specs = append(specs, kafka.TopicSpecification{Topic: name, NumPartitions: partitions, ReplicationFactor: 1})
	}
	return specs
}

// EnsureTopics는 주어진 토픽들의 기본/재시도/DLQ 토픽을 생성한다.
// 이미 존재하는 토픽은 성공으로 본다.
func EnsureTopics(ctx context.Context, brokers string, partitions int, topics ...Topic) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return fmt.Errorf("eventbus: create admin client: %w", err)
	}
	defer admin.Close()

	var specs []kafka.TopicSpecification
	for _, t := range topics {
		specs = append(specs, topicSpecs(t, partitions)...)
	}

	results, err := admin.CreateTopics(ctx, specs)
	if err != nil {
		return fmt.Errorf("eventbus: create topics: %w", err)
	}
	for _, r := range results {
		code := r.Error.Code()
		if code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("eventbus: create topic %s: %v", r.Topic, r.Error)
		}
	}
	return nil
}

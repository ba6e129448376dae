package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"news-hub/config"
	"news-hub/trace"
)

const pollTimeout = 100 * time.Millisecond

// KafkaEventBus는 confluent-kafka-go 기반 EventBus 구현체다.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

// NewKafkaEventBus는 설정의 브로커로 Producer 를 만든다.
func NewKafkaEventBus(cfg config.EventBusConfig) (*KafkaEventBus, error) {
	if cfg.Brokers == "" {
		return nil, errors.New("eventbus: brokers are required (KAFKA_BOOTSTRAP_SERVERS)")
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("eventbus: create producer: %w", err)
	}

	// 전달 보고서 처리 (Publish 가 deliveryChan 을 넘기지 않은 메시지용)
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					config.ErrorWithFields("eventbus delivery failed", config.Fields{
						"topic": ev.TopicPartition.String(),
						"error": ev.TopicPartition.Error.Error(),
					})
				}
			case kafka.Error:
				config.ErrorWithFields("eventbus kafka error", config.Fields{"error": ev.Error()})
			}
		}
	}()

	return &KafkaEventBus{Producer: p, Brokers: cfg.Brokers}, nil
}

// Close는 남은 메시지를 최대 5초 플러시한 뒤 Producer 를 닫는다.
func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		config.WarnWithFields("eventbus flush incomplete", config.Fields{"remaining": remaining})
	}
	k.Producer.Close()
}

// Publish는 topic 에 이벤트를 발행하고 전달 보고서를 기다린다.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventbus: marshal event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
		Headers:        []kafka.Header{{Key: trace.HeaderRequestID, Value: []byte(event.RequestID)}},
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("eventbus: produce to %s: %w", topic, err)
	}

	select {
	case ev := <-deliveryChan:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("eventbus: deliver to %s: %w", topic, m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *KafkaEventBus) newConsumer(groupID string, topics []string) (*kafka.Consumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false, // 재시도 흐름 때문에 수동 커밋
		"partition.assignment.strategy": "range",
	})
	if err != nil {
		return nil, fmt.Errorf("eventbus: create consumer: %w", err)
	}
	if err := c.SubscribeTopics(topics, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("eventbus: subscribe %v: %w", topics, err)
	}
	return c, nil
}

// readMessage는 타임아웃을 (nil, nil) 로 바꿔준다. 치명적 오류만 에러로 돌려준다.
func readMessage(c *kafka.Consumer) (*kafka.Message, error) {
	msg, err := c.ReadMessage(pollTimeout)
	if err == nil {
		return msg, nil
	}
	var kerr kafka.Error
	if errors.As(err, &kerr) {
		if kerr.Code() == kafka.ErrTimedOut {
			return nil, nil
		}
		if kerr.IsFatal() {
			return nil, err
		}
	}
	config.WarnWithFields("eventbus read failed", config.Fields{"error": err.Error()})
	return nil, nil
}

func commit(c *kafka.Consumer, msg *kafka.Message) {
	if _, err := c.CommitMessage(msg); err != nil {
		config.ErrorWithFields("eventbus commit failed", config.Fields{"error": err.Error()})
	}
}

// Subscribe는 기본 토픽을 구독하고 handler 를 실행한다.
// handler 실패 시 다음 재시도 토픽으로, 재시도를 모두 쓰면 DLQ 로 보낸 뒤 커밋한다.
// 재발행에 실패하면 커밋하지 않아 같은 메시지를 다시 받는다.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID, []string{topic.Base()})
	if err != nil {
		return err
	}
	defer c.Close()

	config.InfoWithFields("eventbus consumer started", config.Fields{"group_id": groupID, "topic": topic.Base()})

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg, err := readMessage(c)
		if err != nil {
			return fmt.Errorf("eventbus: consumer %s: %w", groupID, err)
		}
		if msg == nil {
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			config.ErrorWithFields("eventbus skipping malformed event", config.Fields{
				"topic": topic.Base(),
				"error": err.Error(),
			})
			commit(c, msg)
			continue
		}

		hctx := withEventTrace(ctx, evt)
		fields := config.Fields{
			"event":      describe(evt),
			"retry":      evt.Retry,
			"request_id": evt.RequestID,
		}
		config.DebugWithFields("eventbus handling event", fields)

		if herr := handler(hctx, evt); herr != nil {
			dest, next, dlq := NextDestination(topic, evt, herr)
			fields["error"] = herr.Error()
			fields["destination"] = dest
			if dlq {
				config.ErrorWithFields("eventbus retries exhausted, sending to dlq", fields)
			} else {
				config.WarnWithFields("eventbus handler failed, scheduling retry", fields)
			}
			if perr := k.Publish(ctx, dest, next); perr != nil {
				fields["publish_error"] = fmt.Errorf("%w: %w", ErrRetryScheduleFailed, perr).Error()
				config.ErrorWithFields("eventbus retry publish failed, offset not committed", fields)
				continue
			}
		}
		commit(c, msg)
	}
}

// StartRetryReinjector는 재시도 토픽들을 구독해, 토픽 이름의 지연 시간이 지난 메시지를 기본 토픽에 재발행한다.
func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	retryTopics := topic.RetryTopics()
	c, err := k.newConsumer(groupID, retryTopics)
	if err != nil {
		return err
	}
	defer c.Close()

	config.InfoWithFields("eventbus retry reinjector started", config.Fields{"group_id": groupID, "topics": retryTopics})

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg, err := readMessage(c)
		if err != nil {
			return fmt.Errorf("eventbus: reinjector %s: %w", groupID, err)
		}
		if msg == nil {
			continue
		}

		topicName := *msg.TopicPartition.Topic
		delay, ok := RetryDelayFromTopicName(topicName)
		if !ok {
			config.ErrorWithFields("eventbus unknown retry topic, skipping", config.Fields{"topic": topicName})
			commit(c, msg)
			continue
		}

		if wait := time.Until(msg.Timestamp.Add(delay)); wait > 0 {
			// 컨슈머 전체를 오래 막지 않도록 짧게만 쉬고, 커밋 없이 오프셋을 되감아 다시 읽는다.
			time.Sleep(min(max(wait, 50*time.Millisecond), 500*time.Millisecond))
			if err := c.Seek(msg.TopicPartition, 0); err != nil {
				config.WarnWithFields("eventbus seek failed", config.Fields{"topic": topicName, "error": err.Error()})
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			config.ErrorWithFields("eventbus skipping malformed retry event", config.Fields{"topic": topicName, "error": err.Error()})
			commit(c, msg)
			continue
		}

		if err := k.Publish(ctx, topic.Base(), evt); err != nil {
			config.ErrorWithFields("eventbus reinject failed, offset not committed", config.Fields{
				"event": describe(evt),
				"error": err.Error(),
			})
			continue
		}
		config.InfoWithFields("eventbus event reinjected", config.Fields{
			"event": describe(evt),
			"from":  topicName,
			"retry": evt.Retry,
		})
		commit(c, msg)
	}
}

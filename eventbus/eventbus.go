package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RetryDelays는 재시도 횟수(1-based)별 지연 시간이다.
// sync 는 외부 API(피드, 모델) 장애로 실패하는 경우가 대부분이라 뒤로 갈수록 길게 잡는다.
var RetryDelays = []time.Duration{
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
}

const retryInfix = ".retry."

// Topic은 기본 토픽 이름과 그로부터 파생되는 재시도/DLQ 토픽 이름을 관리한다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ 토픽 이름 (예: newshub.sync.requests.dlq)
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// RetryTopics는 모든 재시도 토픽 이름을 RetryDelays 순서대로 반환한다.
func (t Topic) RetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i, delay := range RetryDelays {
		topics[i] = t.base + retryInfix + delay.String()
	}
	return topics
}

// RetryTopic은 다음 재시도 횟수(1-based)에 해당하는 재시도 토픽 이름을 반환한다.
func (t Topic) RetryTopic(attempt int) (string, error) {
	if attempt <= 0 || attempt > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	return t.base + retryInfix + RetryDelays[attempt-1].String(), nil
}

// RetryDelayFromTopicName은 "<base>.retry.<duration>" 형식의 토픽 이름에서 지연 시간을 꺼낸다.
func RetryDelayFromTopicName(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, retryInfix)
	if idx == -1 || idx+len(retryInfix) >= len(name) {
		return 0, false
	}
	d, err := time.ParseDuration(name[idx+len(retryInfix):])
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// Event는 Kafka 메시지 값으로 직렬화되는 봉투(envelope)다.
// Type 으로 payload 스키마를 구분하고, RequestID 로 발행자의 트레이스를 이어받는다.
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	RequestID   string          `json:"request_id,omitempty"`
	PublishedAt time.Time       `json:"published_at"`
	Payload     json.RawMessage `json:"payload"`
	Retry       int             `json:"retry"`
	MaxRetry    int             `json:"max_retry"`
	LastError   string          `json:"last_error,omitempty"`
}

// EventHandler는 이벤트 처리 함수 시그니처다. 에러를 반환하면 재시도 토픽(또는 DLQ)으로 보낸다.
type EventHandler func(ctx context.Context, event Event) error

// Publisher는 발행만 필요한 쪽(API, sync 완료 알림)에서 쓰는 최소 인터페이스다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// EventBus는 발행과 구독을 모두 제공한다.
type EventBus interface {
	Publisher
	// Subscribe는 기본 토픽을 구독해 handler 를 실행한다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector는 재시도 토픽을 구독하다가 지연 시간이 지난 이벤트를 기본 토픽으로 되돌린다.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

var (
	ErrMaxRetryExceeded    = errors.New("eventbus: max retry exceeded")
	ErrRetryScheduleFailed = errors.New("eventbus: failed to schedule retry or dlq")
)

// NextDestination은 handler 실패 후 이벤트를 보낼 토픽과 갱신된 이벤트를 결정한다.
// 재시도 횟수가 MaxRetry 에 도달했으면 DLQ 를 돌려준다.
func NextDestination(topic Topic, evt Event, cause error) (string, Event, bool) {
	if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
		evt.MaxRetry = len(RetryDelays)
	}
	if cause != nil {
		evt.LastError = cause.Error()
	}
	next := evt.Retry + 1
	if next > evt.MaxRetry {
		return topic.DLQ(), evt, true
	}
	dest, err := topic.RetryTopic(next)
	if err != nil {
		return topic.DLQ(), evt, true
	}
	evt.Retry = next
	return dest, evt, false
}

func describe(evt Event) string {
	return fmt.Sprintf("%s(%s)", evt.Type, evt.ID)
}

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"news-hub/trace"
)

// NewJSONEvent는 payload 를 JSON 으로 인코딩해 Event 를 만든다.
// 컨텍스트에 Request ID 가 있으면 그대로 실어 보내 consumer 쪽 로그와 이어지게 한다.
func NewJSONEvent(ctx context.Context, eventType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("eventbus: marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		RequestID:   trace.RequestIDFromContext(ctx),
		PublishedAt: time.Now().UTC(),
		Payload:     b,
		MaxRetry:    len(RetryDelays),
	}, nil
}

// DecodeJSON은 Event.Payload 를 T 로 언마샬한다.
func DecodeJSON[T any](evt Event) (T, error) {
	var out T
	if err := json.Unmarshal(evt.Payload, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("eventbus: unmarshal %s payload: %w", evt.Type, err)
	}
	return out, nil
}

// PublishJSON은 NewJSONEvent 후 topic 기본 토픽에 발행한다.
func PublishJSON(ctx context.Context, pub Publisher, topic Topic, eventType string, payload any) (Event, error) {
	evt, err := NewJSONEvent(ctx, eventType, payload)
	if err != nil {
		return Event{}, err
	}
	if err := pub.Publish(ctx, topic.Base(), evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// SubscribeJSON은 eventType 이 일치하는 이벤트만 디코딩해 handler 로 넘긴다.
// 다른 타입은 무시(커밋)한다.
func SubscribeJSON[T any](ctx context.Context, bus EventBus, groupID string, topic Topic, eventType string, handler func(ctx context.Context, payload T, meta Event) error) error {
	return bus.Subscribe(ctx, groupID, topic, func(ctx context.Context, evt Event) error {
		if evt.Type != eventType {
			return nil
		}
		v, err := DecodeJSON[T](evt)
		if err != nil {
			return err
		}
		return handler(ctx, v, evt)
	})
}

// withEventTrace는 이벤트에 실려온 Request ID 로 핸들러 컨텍스트를 시작한다.
func withEventTrace(ctx context.Context, evt Event) context.Context {
	return trace.Continue(ctx, evt.RequestID)
}

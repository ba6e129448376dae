package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-hub/trace"
)

func TestTopicNames(t *testing.T) {
	topic := NewTopic("newshub.sync.requests")

	assert.Equal(t, "newshub.sync.requests", topic.Base())
	assert.Equal(t, "newshub.sync.requests.dlq", topic.DLQ())
	assert.Equal(t, []string{
		"newshub.sync.requests.retry.30s",
		"newshub.sync.requests.retry.2m0s",
		"newshub.sync.requests.retry.10m0s",
	}, topic.RetryTopics())

	name, err := topic.RetryTopic(2)
	require.NoError(t, err)
	assert.Equal(t, "newshub.sync.requests.retry.2m0s", name)

	_, err = topic.RetryTopic(0)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)
	_, err = topic.RetryTopic(len(RetryDelays) + 1)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)
}

func TestRetryDelayFromTopicName(t *testing.T) {
	for i, name := range TopicSyncRequests.RetryTopics() {
		d, ok := RetryDelayFromTopicName(name)
		require.True(t, ok, name)
		assert.Equal(t, RetryDelays[i], d)
	}

	for _, bad := range []string{"newshub.sync.requests", "x.retry.", "x.retry.soon", "x.retry.-5s"} {
		_, ok := RetryDelayFromTopicName(bad)
		assert.False(t, ok, bad)
	}
}

func TestNextDestination(t *testing.T) {
	topic := TopicSyncRequests
	cause := errors.New("feed down")

	dest, evt, dlq := NextDestination(topic, Event{ID: "e1"}, cause)
	assert.False(t, dlq)
	assert.Equal(t, topic.RetryTopics()[0], dest)
	assert.Equal(t, 1, evt.Retry)
	assert.Equal(t, len(RetryDelays), evt.MaxRetry)
	assert.Equal(t, "feed down", evt.LastError)

	dest, evt, dlq = NextDestination(topic, Event{ID: "e1", Retry: 1, MaxRetry: 2}, cause)
	assert.False(t, dlq)
	assert.Equal(t, topic.RetryTopics()[1], dest)
	assert.Equal(t, 2, evt.Retry)

	dest, evt, dlq = NextDestination(topic, Event{ID: "e1", Retry: 2, MaxRetry: 2}, cause)
	assert.True(t, dlq)
	assert.Equal(t, topic.DLQ(), dest)
	assert.Equal(t, 2, evt.Retry)
}

type payload struct {
	Count int `json:"count"`
}

func TestNewJSONEventCarriesRequestID(t *testing.T) {
	ctx := trace.WithRequestAndSpan(context.Background(), "req-1", 0)

	evt, err := NewJSONEvent(ctx, "sync.requested", payload{Count: 7})
	require.NoError(t, err)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "sync.requested", evt.Type)
	assert.Equal(t, "req-1", evt.RequestID)
	assert.Equal(t, len(RetryDelays), evt.MaxRetry)
	assert.WithinDuration(t, time.Now(), evt.PublishedAt, time.Minute)

	got, err := DecodeJSON[payload](evt)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Count)

	hctx := withEventTrace(context.Background(), evt)
	assert.Equal(t, "req-1", trace.RequestIDFromContext(hctx))
}

type recordingPublisher struct {
	topics []string
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, event Event) error {
	if r.err != nil {
		return r.err
	}
	r.topics = append(r.topics, topic)
	r.events = append(r.events, event)
	return nil
}

func TestPublishJSON(t *testing.T) {
	pub := &recordingPublisher{}
	evt, err := PublishJSON(context.Background(), pub, TopicSyncCompleted, "sync.completed", payload{Count: 1})
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, TopicSyncCompleted.Base(), pub.topics[0])
	assert.Equal(t, evt.ID, pub.events[0].ID)

	pub.err = errors.New("broker down")
	_, err = PublishJSON(context.Background(), pub, TopicSyncCompleted, "sync.completed", payload{})
	assert.Error(t, err)
}

func TestDecodeJSONRejectsMalformedPayload(t *testing.T) {
	_, err := DecodeJSON[payload](Event{Type: "sync.requested", Payload: []byte(`{"count":"x"}`)})
	assert.Error(t, err)
}

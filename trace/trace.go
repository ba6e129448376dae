// Package trace carries a request id and an outbound span counter through
// context, across HTTP hops and Kafka events.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"
)

// 헤더 이름은 inbound 미들웨어, outbound httpclient, Kafka 메시지 헤더가 같이 쓴다.
const (
	HeaderRequestID = "X-Request-Id"
	HeaderSpanID    = "X-Span-Id"
)

type ctxKey struct{}

// state 는 요청(HTTP 요청, sync 실행, 이벤트 처리) 하나에 대응한다.
// span 은 outbound 호출마다 1 씩 증가하고, 0 은 inbound 자신이다.
type state struct {
	requestID string
	span      atomic.Int64
}

func lookup(ctx context.Context) *state {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*state)
	return s
}

// GenerateID returns 32 hex chars of randomness.
func GenerateID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UTC().Format("20060102T150405.000000000")
	}
	return hex.EncodeToString(b[:])
}

// WithRequestAndSpan starts a trace with the given id and span counter.
func WithRequestAndSpan(ctx context.Context, requestID string, initialSpan int64) context.Context {
	s := &state{requestID: requestID}
	s.span.Store(initialSpan)
	return context.WithValue(ctx, ctxKey{}, s)
}

// Continue 는 상류에서 받은 Request ID(헤더, 이벤트)로 trace 를 잇는다.
// 비어 있으면 새 ID 를 발급한다.
func Continue(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = GenerateID()
	}
	return WithRequestAndSpan(ctx, requestID, 0)
}

// EnsureRequest keeps an existing trace, otherwise starts a new one. Used by
// the CLI and worker paths that never pass through the HTTP middleware.
func EnsureRequest(ctx context.Context) context.Context {
	if lookup(ctx) != nil {
		return ctx
	}
	return Continue(ctx, "")
}

func RequestIDFromContext(ctx context.Context) string {
	if s := lookup(ctx); s != nil {
		return s.requestID
	}
	return ""
}

// CurrentSpanID reads the counter without advancing it.
func CurrentSpanID(ctx context.Context) string {
	s := lookup(ctx)
	if s == nil {
		return "0"
	}
	return strconv.FormatInt(max(s.span.Load(), 0), 10)
}

// NextSpanID advances the counter for one outbound call. Outside any trace it
// returns a throwaway request id with span 1.
func NextSpanID(ctx context.Context) (requestID, spanID string) {
	s := lookup(ctx)
	if s == nil {
		return GenerateID(), "1"
	}
	return s.requestID, strconv.FormatInt(max(s.span.Add(1), 1), 10)
}

package events

import (
	"errors"
	"time"

	"news-hub/ingest"
)

// EventType는 eventbus.Event.Type 에 들어가는 값이다.
type EventType string

const (
	SyncRequested EventType = "sync.requested"
	SyncCompleted EventType = "sync.completed"
)

func (t EventType) String() string { return string(t) }

// SyncRequestedEvent는 비동기 sync 요청이다. API 가 발행하고 worker 가 처리한다.
type SyncRequestedEvent struct {
	Count       int       `json:"count"`
	RequestedBy string    `json:"requested_by"` // "api", "cli" 등
	RequestedAt time.Time `json:"requested_at"`
}

// SyncCompletedEvent는 sync 한 번의 결과다. 실패한 실행도 발행하며, 그때 Stage/Error 가 채워진다.
type SyncCompletedEvent struct {
	Report     ingest.Report `json:"report"`
	Stage      string        `json:"stage,omitempty"`
	Error      string        `json:"error,omitempty"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Completed는 RunSync 결과로 SyncCompletedEvent 를 만든다.
func Completed(report ingest.Report, err error, now time.Time) SyncCompletedEvent {
	ev := SyncCompletedEvent{Report: report, FinishedAt: now.UTC()}
	if err == nil {
		return ev
	}
	ev.Error = err.Error()
	var se *ingest.SyncError
	if errors.As(err, &se) {
		ev.Stage = string(se.Stage)
		ev.Report = se.Report
	}
	return ev
}

// Succeeded는 오류 없이 끝난 실행인지 알려준다.
func (e SyncCompletedEvent) Succeeded() bool {
	return e.Error == ""
}

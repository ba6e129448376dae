// Package quota spaces model calls and caps them per UTC day.
package quota

import (
	"context"
	"sync"
	"time"

	"news-hub/config"
)

// Limiter is an in-process counter; a restart resets it.
type Limiter struct {
	mu sync.Mutex

	perDay  int
	spacing time.Duration

	day  string
	used int
	last time.Time

	now func() time.Time
}

// NewLimiter 는 model_quota 설정으로 만든다. 0 이하 값은 그 방향의 제한이 없다는 뜻이다.
func NewLimiter(q config.QuotaConfig) *Limiter {
	l := &Limiter{perDay: max(q.RequestsPerDay, 0), now: time.Now}
	if q.RequestsPerMinute > 0 {
		l.spacing = time.Minute / time.Duration(q.RequestsPerMinute)
	}
	return l
}

// reserve 는 락을 잡은 상태에서 호출한다. 지금 예약할 수 있으면 wait=0,
// 더 기다려야 하면 wait>0, 오늘 한도를 다 썼으면 ok=false.
func (l *Limiter) reserve(now time.Time) (wait time.Duration, ok bool) {
	if key := now.Format(time.DateOnly); key != l.day {
		l.day, l.used = key, 0
	}
	if l.perDay > 0 && l.used >= l.perDay {
		return 0, false
	}
	if l.spacing > 0 && !l.last.IsZero() {
		if wait = l.last.Add(l.spacing).Sub(now); wait > 0 {
			return wait, true
		}
	}
	l.used++
	l.last = now
	return 0, true
}

// WaitAndReserve blocks until the next call may go out. It returns
// (false, nil) once the daily cap is used up and (false, ctx.Err()) on cancel.
func (l *Limiter) WaitAndReserve(ctx context.Context) (bool, error) {
	if l == nil {
		return true, nil
	}
	for {
		l.mu.Lock()
		wait, ok := l.reserve(l.now().UTC())
		l.mu.Unlock()
		if !ok {
			return false, nil
		}
		if wait == 0 {
			return true, nil
		}

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return false, ctx.Err()
		}
	}
}

// Remaining 은 오늘 남은 호출 수다. 일일 한도가 없으면 -1.
func (l *Limiter) Remaining() int {
	if l == nil || l.perDay <= 0 {
		return -1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.day != l.now().UTC().Format(time.DateOnly) {
		return l.perDay
	}
	return l.perDay - l.used
}

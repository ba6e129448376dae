package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"news-hub/config"
	"news-hub/trace"
)

const maxBodyLog = 1024

// RequestTrace는 모든 inbound 요청에 Request ID 를 보장하고 컨텍스트와 응답 헤더에 싣는다.
// 요청이 끝나면 쿼리, 바디 스니펫, 상태 코드와 함께 한 줄로 로깅한다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		// inbound 는 span 0, 이 요청에서 나가는 호출(NewsAPI, Gemini)은 1,2,3,...
		ctx := trace.Continue(req.Context(), req.Header.Get(trace.HeaderRequestID))
		requestID := trace.RequestIDFromContext(ctx)
		c.Request = req.WithContext(ctx)
		c.Writer.Header().Set(trace.HeaderRequestID, requestID)
		c.Writer.Header().Set(trace.HeaderSpanID, trace.CurrentSpanID(ctx))

		bodySnippet := snippetBody(c)

		c.Next()

		fields := config.Fields{
			"method":     req.Method,
			"path":       req.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": requestID,
			"span_id":    trace.CurrentSpanID(c.Request.Context()),
		}
		if q := req.URL.Query(); len(q) > 0 {
			fields["query_params"] = map[string][]string(q)
		}
		if bodySnippet != "" {
			fields["body"] = bodySnippet
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		config.InfoWithFields("completed request", fields)
	}
}

// snippetBody는 로그용으로 바디 앞부분을 떼어두고, 핸들러가 다시 읽을 수 있게 Body 를 복원한다.
func snippetBody(c *gin.Context) string {
	req := c.Request
	if req.Body == nil || req.ContentLength == 0 {
		return ""
	}
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return ""
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(data))
	if len(data) > maxBodyLog {
		data = data[:maxBodyLog]
	}
	return string(data)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"news-hub/curator"
	"news-hub/dto"
	"news-hub/feeder"
	"news-hub/gemini"
	"news-hub/ingest"
	"news-hub/repositories"
	"news-hub/services"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, curator.ErrInvalidCount),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrArticleRequired):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSessionMismatch):
		return http.StatusConflict
	case errors.Is(err, gemini.ErrQuotaExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, feeder.ErrFeedUnavailable),
		errors.Is(err, curator.ErrModelUnavailable),
		errors.Is(err, curator.ErrMalformedResponse),
		errors.Is(err, services.ErrChatUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrAsyncDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), dto.ErrorResponseDTO{Error: err.Error()})
}

// writeSyncError keeps the counts reached before the failing stage in the body.
func writeSyncError(c *gin.Context, err error) {
	_ = c.Error(err)
	body := dto.SyncErrorDTO{Error: err.Error()}
	var se *ingest.SyncError
	if errors.As(err, &se) {
		body.Stage = string(se.Stage)
		body.Fetched = se.Report.Fetched
		body.Curated = se.Report.Curated
		body.Report = services.NewSyncReportDTO(se.Report)
		if se.Err != nil {
			body.Error = se.Err.Error()
		}
	}
	c.JSON(statusFor(err), body)
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"news-hub/dto"
	"news-hub/repositories"
	"news-hub/services"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler godoc
// @Summary      Health check
// @Description  Reports ok, or degraded with the failing dependencies
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthDTO
// @Failure      503  {object}  dto.HealthDTO
// @Router       /health [get]
func HealthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		resp := dto.HealthDTO{Status: "ok"}
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = map[string]string{}
			}
			if err := check(ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = err.Error()
				continue
			}
			resp.Checks[name] = "ok"
		}
		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

// SyncHandler godoc
// @Summary      Run a sync
// @Description  Fetch tech headlines, let the model pick and summarize count of them, and upsert them.
// @Description  With async=true the run is queued on the event bus and 202 is returned.
// @Tags         sync
// @Param        count  query  int   false  "Articles to curate (1-20, default 10)"
// @Param        async  query  bool  false  "Queue the run instead of waiting"
// @Produce      json
// @Success      200  {object}  dto.SyncResponseDTO
// @Success      202  {object}  dto.SyncAcceptedDTO
// @Failure      400  {object}  dto.SyncErrorDTO
// @Failure      502  {object}  dto.SyncErrorDTO
// @Failure      500  {object}  dto.SyncErrorDTO
// @Router       /sync [post]
func SyncHandler(svc *services.SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		count := 0
		if raw, ok := c.GetQuery("count"); ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n == 0 {
				c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "count must be an integer between 1 and 20"})
				return
			}
			count = n
		}

		if async, _ := strconv.ParseBool(c.DefaultQuery("async", "false")); async {
			accepted, err := svc.RequestAsync(c.Request.Context(), count, "api")
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, accepted)
			return
		}

		resp, err := svc.Sync(c.Request.Context(), count)
		if err != nil {
			writeSyncError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListArticlesHandler godoc
// @Summary      List articles
// @Description  Newest first (datePosted desc). Card fields only; use the detail endpoint for content.
// @Tags         articles
// @Param        category  query  string  false  "Case-insensitive category substring"
// @Param        limit     query  int     false  "Page size (1-100, default 30)"
// @Param        page      query  int     false  "Page number (1-based)"
// @Produce      json
// @Success      200  {object}  dto.ArticleListDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /articles [get]
func ListArticlesHandler(svc *services.ArticleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repositories.DefaultListLimit)))
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		resp, err := svc.List(c.Request.Context(), services.ListArticlesInput{
			Category: c.Query("category"),
			Limit:    limit,
			Page:     page,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetArticleHandler godoc
// @Summary      Get article
// @Description  Full article including original content
// @Tags         articles
// @Param        id  path  string  true  "Article id"
// @Produce      json
// @Success      200  {object}  dto.ArticleDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /articles/{id} [get]
func GetArticleHandler(svc *services.ArticleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// ChatHandler godoc
// @Summary      Chat about an article
// @Description  Answers a question with the article as context and appends both turns to the session
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ChatRequestDTO  true  "chat request"
// @Success      200   {object}  dto.ChatResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Router       /chat [post]
func ChatHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChatRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
			return
		}
		resp, err := svc.Reply(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ChatHistoryHandler godoc
// @Summary      Chat history
// @Description  Stored transcript of a session, oldest first. Unknown sessions return an empty list.
// @Tags         chat
// @Param        sessionId  path  string  true  "Session id"
// @Produce      json
// @Success      200  {object}  dto.ChatHistoryDTO
// @Router       /chat/{sessionId} [get]
func ChatHistoryHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.History(c.Request.Context(), c.Param("sessionId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

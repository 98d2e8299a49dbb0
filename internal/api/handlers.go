package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/recommend"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

const maxBodySize = 5 << 20

// Service is the matching functionality exposed over HTTP
type Service interface {
	Rank(ctx context.Context, userID string, opts recommend.RankOptions) (*recommend.Ranking, error)
	Score(ctx context.Context, userID, postingID string) (*match.MatchResult, error)
	Notify(ctx context.Context, userID string, opts recommend.RankOptions) (*recommend.Outcome, error)
	Scorer() *match.Scorer
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker func(ctx context.Context) error

// API holds the HTTP handlers
type API struct {
	svc    Service
	health HealthChecker
	limit  int
}

// NewAPI creates the handlers. defaultLimit caps ranked results when the
// request does not set a limit.
func NewAPI(svc Service, health HealthChecker, defaultLimit int) *API {
	return &API{svc: svc, health: health, limit: defaultLimit}
}

// SetupRoutes registers every route on the router
func SetupRoutes(router *gin.Engine, api *API, logger *zap.Logger) {
	router.Use(RequestIDMiddleware())
	if logger != nil {
		router.Use(LoggerMiddleware(logger))
	}

	router.GET("/health", api.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/rank", RequestSizeLimitMiddleware(maxBodySize), api.RankStatelessHandler)

		users := v1.Group("/users/:userID")
		{
			users.GET("/matches", api.RankHandler)
			users.GET("/matches/:postingID", api.ScoreHandler)
			users.POST("/notify", api.NotifyHandler)
		}
	}
}

// HealthHandler reports service and store health
func (a *API) HealthHandler(c *gin.Context) {
	if a.health != nil {
		if err := a.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// RankHandler ranks active postings for a stored profile
func (a *API) RankHandler(c *gin.Context) {
	opts, details := a.rankOptions(c)
	if len(details) > 0 {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid query parameters", details...)
		return
	}

	ranking, err := a.svc.Rank(c.Request.Context(), c.Param("userID"), opts)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ranking)
}

// ScoreHandler scores one posting for a stored profile
func (a *API) ScoreHandler(c *gin.Context) {
	result, err := a.svc.Score(c.Request.Context(), c.Param("userID"), c.Param("postingID"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// NotifyHandler ranks and notifies the top matches for a stored profile
func (a *API) NotifyHandler(c *gin.Context) {
	opts, details := a.rankOptions(c)
	if len(details) > 0 {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid query parameters", details...)
		return
	}

	outcome, err := a.svc.Notify(c.Request.Context(), c.Param("userID"), opts)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attempted": outcome.Report.Attempted,
		"sent":      outcome.Report.Sent,
		"failed":    outcome.Report.Failed,
		"transport": outcome.Report.Transport,
		"results":   outcome.Report.Results,
	})
}

// RankRequest is the body of a stateless ranking call
type RankRequest struct {
	Profile  match.Profile   `json:"profile"`
	Postings []match.Posting `json:"postings"`
	MinScore float64         `json:"min_score"`
}

// RankStatelessHandler ranks postings supplied in the request body
func (a *API) RankStatelessHandler(c *gin.Context) {
	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "invalid request body: "+err.Error())
		return
	}
	if req.MinScore < 0 || req.MinScore > 1 {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid request body",
			ErrorDetail{Field: "min_score", Message: "must be between 0 and 1"})
		return
	}

	matches := a.svc.Scorer().Rank(req.Profile, req.Postings, req.MinScore)
	c.JSON(http.StatusOK, gin.H{
		"evaluated": len(req.Postings),
		"matches":   matches,
	})
}

func (a *API) rankOptions(c *gin.Context) (recommend.RankOptions, []ErrorDetail) {
	opts := recommend.RankOptions{
		Limit: a.limit,
		Filters: source.PostingFilters{
			Company:  c.Query("company"),
			JobType:  c.Query("job_type"),
			Location: c.Query("location"),
		},
	}
	var details []ErrorDetail

	if raw := c.Query("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			details = append(details, ErrorDetail{Field: "min_score", Message: "must be a number between 0 and 1"})
		} else {
			opts.MinScore = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			details = append(details, ErrorDetail{Field: "limit", Message: "must be a non-negative integer"})
		} else {
			opts.Limit = v
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			details = append(details, ErrorDetail{Field: "page_size", Message: "must be a non-negative integer"})
		} else {
			opts.Filters.Limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			details = append(details, ErrorDetail{Field: "offset", Message: "must be a non-negative integer"})
		} else {
			opts.Filters.Offset = v
		}
	}

	return opts, details
}

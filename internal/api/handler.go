package api

import (
	"context"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nelson-ong-97/trending-repos/internal/models"
	"github.com/nelson-ong-97/trending-repos/internal/trending"
)

const (
	defaultPage     = 1
	defaultPageSize = 9
	maxPageSize     = 100
)

var fullNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+/[a-zA-Z0-9._-]+$`)

// TrendingService serves ranking and lookup queries.
type TrendingService interface {
	GetTrending(ctx context.Context, query trending.TrendingQuery) (*models.TrendingResponse, error)
	GetByFullName(ctx context.Context, fullName string) (*models.Repository, error)
}

// SyncService triggers sync runs.
type SyncService interface {
	SyncAll(ctx context.Context) (*models.SyncResult, error)
}

type Handler struct {
	trendingService TrendingService
	syncService     SyncService
	syncSecret      string
	logger          *logrus.Logger
}

// NewHandler creates the API handler. When syncSecret is non-empty the sync
// endpoint requires it as a bearer token.
func NewHandler(trendingService TrendingService, syncService SyncService, syncSecret string, logger *logrus.Logger) *Handler {
	return &Handler{
		trendingService: trendingService,
		syncService:     syncService,
		syncSecret:      syncSecret,
		logger:          logger,
	}
}

// GetTrending handles the paginated trending ranking query.
// @Summary Get trending repositories
// @Description Get the trending ranking for a time range with optional language and text filters
// @Tags repos
// @Produce json
// @Param timeRange query string true "Time range" Enums(daily, weekly, monthly, yearly)
// @Param page query int false "Page number" default(1) minimum(1)
// @Param pageSize query int false "Page size" default(9) minimum(1) maximum(100)
// @Param language query string false "Exact language filter"
// @Param search query string false "Free-text filter over name, owner, description and topics"
// @Success 200 {object} models.TrendingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/trending [get]
func (h *Handler) GetTrending(c *gin.Context) {
	timeRange := models.TimeRange(c.Query("timeRange"))
	if !timeRange.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "timeRange must be one of daily, weekly, monthly, yearly"})
		return
	}

	page, err := intQueryParam(c, "page", defaultPage)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "page must be an integer >= 1"})
		return
	}

	pageSize, err := intQueryParam(c, "pageSize", defaultPageSize)
	if err != nil || pageSize < 1 || pageSize > maxPageSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "pageSize must be an integer between 1 and 100"})
		return
	}

	resp, err := h.trendingService.GetTrending(c.Request.Context(), trending.TrendingQuery{
		TimeRange: timeRange,
		Page:      page,
		PageSize:  pageSize,
		Language:  c.Query("language"),
		Search:    c.Query("search"),
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch trending repositories")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch trending repositories"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRepository handles the lookup of a single repository by full name.
// @Summary Get a repository by full name
// @Description Look up a stored repository by its owner/name key. Responds with null when the repository is not stored.
// @Tags repos
// @Produce json
// @Param owner path string true "Repository owner"
// @Param name path string true "Repository name"
// @Success 200 {object} models.Repository
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{name} [get]
func (h *Handler) GetRepository(c *gin.Context) {
	fullName := c.Param("owner") + "/" + c.Param("name")
	if !fullNamePattern.MatchString(fullName) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid repository full name"})
		return
	}

	repo, err := h.trendingService.GetByFullName(c.Request.Context(), fullName)
	if err != nil {
		h.logger.WithError(err).WithField("full_name", fullName).Error("Failed to fetch repository")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch repository"})
		return
	}

	// Absent repositories are a null result, not an error.
	c.JSON(http.StatusOK, repo)
}

// TriggerSync handles the externally scheduled sync trigger.
// @Summary Trigger a sync run
// @Description Sync trending repositories for every time range. Requires the sync secret as a bearer token when one is configured.
// @Tags sync
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} SyncResponse
// @Failure 401 {object} SyncResponse
// @Failure 500 {object} SyncResponse
// @Router /sync [post]
func (h *Handler) TriggerSync(c *gin.Context) {
	if h.syncSecret != "" {
		if c.GetHeader("Authorization") != "Bearer "+h.syncSecret {
			c.JSON(http.StatusUnauthorized, SyncResponse{Success: false, Error: "unauthorized"})
			return
		}
	}

	result, err := h.syncService.SyncAll(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Sync run failed")
		c.JSON(http.StatusInternalServerError, SyncResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SyncResponse{
		Success: true,
		Message: "Sync completed successfully",
		Result:  result,
	})
}

// Health reports process liveness.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func intQueryParam(c *gin.Context, name string, defaultValue int) (int, error) {
	value := c.Query(name)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

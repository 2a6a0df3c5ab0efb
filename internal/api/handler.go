package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thescaler/shortener/internal/model"
	"github.com/thescaler/shortener/internal/service"
)

// unknownCountry is the sentinel recorded when the edge does not supply
// an origin-country header.
const unknownCountry = "Unknown"

// countryHeader is set by the CDN in front of the service.
const countryHeader = "CF-IPCountry"

// Handler holds HTTP handlers and dependencies.
// It follows the dependency injection pattern, receiving
// interfaces rather than concrete implementations for testability.
type Handler struct {
	urlService service.URLServiceInterface // URL shortening business logic
	db         DBInterface                 // Database connection for health checks
	cache      CacheInterface              // Cache connection for health checks
	logger     *slog.Logger                // Structured logger for validation/error logging
}

// DBInterface defines the database operations needed by the handler.
// This interface allows for easy mocking in unit tests without
// requiring a real database connection.
type DBInterface interface {
	Ping(ctx context.Context) error // Check database connectivity
	Close()                         // Close database connection
}

// CacheInterface defines the cache operations needed by the handler.
type CacheInterface interface {
	Ping(ctx context.Context) error
}

// NewHandler creates a new handler instance with the provided dependencies.
func NewHandler(urlService service.URLServiceInterface, db DBInterface, cache CacheInterface, logger *slog.Logger) *Handler {
	return &Handler{
		urlService: urlService,
		db:         db,
		cache:      cache,
		logger:     logger,
	}
}

// RegisterRoutes registers all route definitions on the given Gin engine.
// The caller is responsible for creating the engine and adding middleware
// before calling this method, so middleware runs in the correct order.
// Routes are organized into:
//   - Liveness and health endpoints for monitoring
//   - Dashboard read endpoints under /api
//   - Public shorten and resolve endpoints
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.status)
	r.GET("/health", h.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/urls", h.listURLs)          // Recent URL records
		api.GET("/analytics", h.countryStats) // Clicks grouped by country
	}

	r.POST("/shorten", h.shorten)

	// Resolve route (public) - must be last to avoid conflicts
	r.GET("/:code", h.resolve)
}

// status handles GET /
// Plain liveness probe; does not touch any dependency.
func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"message": "url shortener gateway is running",
	})
}

// healthCheck handles GET /health
// Returns the health status of the service and all dependencies.
// Response codes:
//   - 200 OK: All dependencies are healthy
//   - 503 Service Unavailable: One or more dependencies are down
func (h *Handler) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	cacheErr := h.cache.Ping(ctx)
	dbErr := h.db.Ping(ctx)

	status := "ok"
	code := http.StatusOK
	deps := gin.H{"cache": "up", "database": "up"}

	if cacheErr != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		deps["cache"] = "down"
	}
	if dbErr != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		deps["database"] = "down"
	}

	c.JSON(code, gin.H{"status": status, "dependencies": deps})
}

// shorten handles POST /shorten
// Creates a short code for the submitted URL, or returns the existing
// one with existed=true. The url field is required but its contents are
// deliberately not validated.
// Response codes:
//   - 200 OK: Shorten result (new or existing)
//   - 400 Bad Request: Missing or malformed request body
//   - 500 Internal Server Error: Store failure
func (h *Handler) shorten(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.ShortenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path))
		h.errorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.urlService.Shorten(ctx, req.URL)
	if err != nil {
		h.logger.ErrorContext(ctx, "unexpected error shortening URL",
			slog.String("error", err.Error()))
		h.errorResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, result)
}

// resolve handles GET /:code
// Resolves the short code to its target URL and schedules asynchronous
// click recording. The 302 is conveyed in the response body rather than
// as an HTTP redirect; the caller performs the navigation.
// Response codes:
//   - 200 OK: body {"status": "302 Found", "location": target}
//   - 404 Not Found: Short code does not exist
//   - 500 Internal Server Error: Store failure
func (h *Handler) resolve(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	country := c.GetHeader(countryHeader)
	if country == "" {
		country = unknownCountry
	}

	target, err := h.urlService.Resolve(ctx, code, country)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrURLNotFound):
			h.errorResponse(c, http.StatusNotFound, "URL not found")
		default:
			h.logger.ErrorContext(ctx, "unexpected error resolving short code",
				slog.String("error", err.Error()),
				slog.String("code", code))
			h.errorResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, model.RedirectResponse{
		Status:   "302 Found",
		Location: target,
	})
}

// listURLs handles GET /api/urls
// Returns up to 50 URL records, most recent first.
func (h *Handler) listURLs(c *gin.Context) {
	ctx := c.Request.Context()

	urls, err := h.urlService.ListURLs(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "unexpected error listing URLs",
			slog.String("error", err.Error()))
		h.errorResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, urls)
}

// countryStats handles GET /api/analytics
// Returns click counts aggregated by country across all entries.
func (h *Handler) countryStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.urlService.CountryStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "unexpected error aggregating analytics",
			slog.String("error", err.Error()))
		h.errorResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// errorResponse sends a standardized JSON error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, model.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

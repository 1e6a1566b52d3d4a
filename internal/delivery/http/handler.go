package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

const (
	serviceName    = "trendlens-backend"
	serviceVersion = "1.0.0"
)

// TrendRunner is the pipeline surface the HTTP layer drives
type TrendRunner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
	ListProducts(ctx context.Context) ([]domain.StoredProduct, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	trends TrendRunner
	log    *logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(trends TrendRunner, log *logger.Logger) *Handler {
	return &Handler{
		trends: trends,
		log:    log.With("component", "HTTPHandler"),
	}
}

// InvokeResponse is the reply envelope the Azure Functions host expects from a custom handler
type InvokeResponse struct {
	Outputs     map[string]interface{} `json:"Outputs"`
	Logs        []string               `json:"Logs"`
	ReturnValue interface{}            `json:"ReturnValue"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// TimerTrigger handles the Functions host invocation of the daily timer.
// Any abort is reported as a 500 so the host records the invocation as failed.
func (h *Handler) TimerTrigger(c *gin.Context) {
	if h.trends == nil {
		c.JSON(http.StatusServiceUnavailable, InvokeResponse{
			Outputs: map[string]interface{}{},
			Logs:    []string{"trend pipeline not configured"},
		})
		return
	}

	report, err := h.trends.Run(c.Request.Context())
	logs := invocationLogs(report, err)
	if err != nil {
		h.log.Error("timer invocation failed", "error", err)
		c.JSON(http.StatusInternalServerError, InvokeResponse{
			Outputs: map[string]interface{}{},
			Logs:    logs,
		})
		return
	}

	c.JSON(http.StatusOK, InvokeResponse{
		Outputs:     map[string]interface{}{},
		Logs:        logs,
		ReturnValue: report,
	})
}

// TriggerRun starts a pipeline run on demand and returns its report
func (h *Handler) TriggerRun(c *gin.Context) {
	if h.trends == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trend pipeline not configured"})
		return
	}

	report, err := h.trends.Run(c.Request.Context())
	if err != nil {
		h.log.Warn("manual run failed", "error", err)
		c.JSON(statusForError(err), gin.H{
			"error":  err.Error(),
			"report": report,
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListProducts returns the stored product catalog
func (h *Handler) ListProducts(c *gin.Context) {
	if h.trends == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trend pipeline not configured"})
		return
	}

	products, err := h.trends.ListProducts(c.Request.Context())
	if err != nil {
		h.log.Error("listing products failed", "error", err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrClassifierFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// invocationLogs renders the run outcome as host log lines
func invocationLogs(report *domain.RunReport, err error) []string {
	logs := []string{}
	if report != nil {
		logs = append(logs, fmt.Sprintf("fetched %d titles", report.TitlesFetched))
		for _, source := range report.FailedSources {
			logs = append(logs, fmt.Sprintf("source %s failed", source))
		}
		logs = append(logs,
			fmt.Sprintf("%d candidates, %d validated", len(report.Candidates), len(report.Validated)),
			fmt.Sprintf("created %d, updated %d, failed %d", report.Sync.Created, report.Sync.Updated, report.Sync.Failed),
		)
	}
	if err != nil {
		logs = append(logs, "run aborted: "+err.Error())
	}
	return logs
}
